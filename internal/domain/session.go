package domain

import "time"

// SessionStatus is a point-in-time view of the connection slot.
type SessionStatus struct {
	Connected   bool      `json:"connected"`
	Address     string    `json:"address,omitempty"`
	Username    string    `json:"username,omitempty"`
	ConnectedAt time.Time `json:"connected_at,omitzero"`
}

// CommandResult carries the complete output of one remote command. Output is
// collected in full, never streamed. Stderr is empty when the command wrote
// nothing to stderr.
type CommandResult struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr,omitempty"`
}

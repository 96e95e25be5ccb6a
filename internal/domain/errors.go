package domain

import (
	"errors"
	"fmt"
)

// Sentinel results of the connection slot state machine.
var (
	// ErrAlreadyConnected is returned by connect while a session is live.
	// The live session is never replaced implicitly.
	ErrAlreadyConnected = errors.New("already connected to a server, disconnect first")

	// ErrNotConnected is returned by operations that need a live session.
	ErrNotConnected = errors.New("not connected to any server")
)

// ValidationError reports malformed operator input, rejected before any
// network or store activity.
type ValidationError struct {
	Field  string // ex: "address", "position"
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthError reports a credential failure against a remote machine. The
// remote machine was reachable, it refused the login.
type AuthError struct {
	Address string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %v", e.Address, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransportError reports a network or protocol level failure talking to a
// remote machine.
type TransportError struct {
	Op      string // "dial", "exec", "keepalive"
	Address string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Address, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PolicyError subjects.
const (
	SubjectRequester = "requester"
	SubjectCommand   = "command"
)

// PolicyError reports a rejection by the access policy or the command
// filter. Subject says which rule family fired, Reason is safe to show the
// requester.
type PolicyError struct {
	Subject string // SubjectRequester or SubjectCommand
	Reason  string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Subject, e.Reason)
}

// StoreError wraps a failed durable-store operation. A failed read falls
// back to an empty view, a failed rewrite leaves the previous file content.
type StoreError struct {
	Op   string // "read", "append", "rewrite"
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

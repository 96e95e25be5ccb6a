package remote

import (
	"context"
	"time"
)

// Conn is one live, authenticated connection to a remote machine.
type Conn interface {
	// Run executes a command and collects its complete output. A non-zero
	// exit status is not an error, the command's stderr speaks for itself.
	// Run returns a transport error when the command cannot be delivered or
	// does not finish within the timeout.
	Run(command string, timeout time.Duration) (stdout, stderr string, err error)

	// Ping probes the transport without running a command.
	Ping() error

	Close() error
}

// Dialer opens connections to remote machines. Implementations classify
// failures: a refused login surfaces as *domain.AuthError, anything
// network or protocol level as *domain.TransportError.
type Dialer interface {
	Dial(ctx context.Context, address, username, password string, timeout time.Duration) (Conn, error)
}

package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/shellgate/shellgate/internal/domain"
	"github.com/shellgate/shellgate/internal/logger"
	"github.com/shellgate/shellgate/internal/utils"
)

// sshPort is fixed, inventory addresses carry no port.
const sshPort = "22"

// SSHDialer opens password-authenticated SSH connections. Host keys go
// through the trust-and-remember recorder shared by all dials, so a key
// change on a known host is spotted across probe and session connections
// alike.
type SSHDialer struct {
	log  logger.Logger
	keys *hostKeyRecorder
}

func NewSSHDialer(log logger.Logger) *SSHDialer {
	return &SSHDialer{
		log:  log,
		keys: newHostKeyRecorder(log),
	}
}

func (d *SSHDialer) Dial(ctx context.Context, address, username, password string, timeout time.Duration) (Conn, error) {
	cfg := &ssh.ClientConfig{
		User:            username,
		Auth:            []ssh.AuthMethod{ssh.Password(password)},
		HostKeyCallback: d.keys.check,
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(address, sshPort)

	dialer := net.Dialer{Timeout: timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &domain.TransportError{Op: "dial", Address: address, Err: err}
	}

	// The deadline bounds the handshake including authentication, it is
	// cleared once the connection is established.
	if timeout > 0 {
		_ = netConn.SetDeadline(time.Now().Add(timeout))
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, cfg)
	if err != nil {
		utils.Close(netConn)
		if isAuthFailure(err) {
			return nil, &domain.AuthError{Address: address, Err: err}
		}
		return nil, &domain.TransportError{Op: "dial", Address: address, Err: err}
	}
	_ = netConn.SetDeadline(time.Time{})

	d.log.Debug("ssh connection established",
		logger.String("address", address),
		logger.String("username", username))

	return &sshConn{
		client:  ssh.NewClient(clientConn, chans, reqs),
		address: address,
	}, nil
}

// isAuthFailure spots a refused login in the handshake error. The ssh
// package reports it as a plain wrapped string, there is no typed error to
// match on from the client side.
func isAuthFailure(err error) bool {
	return err != nil && strings.Contains(err.Error(), "unable to authenticate")
}

// sshConn adapts an *ssh.Client to the Conn interface.
type sshConn struct {
	client  *ssh.Client
	address string
}

func (c *sshConn) Run(command string, timeout time.Duration) (string, string, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return "", "", &domain.TransportError{Op: "exec", Address: c.address, Err: err}
	}
	defer utils.Close(session)

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(command)
	}()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case err := <-done:
		if err != nil {
			var exitErr *ssh.ExitError
			if errors.As(err, &exitErr) {
				// The command ran and exited non-zero, that is output, not
				// a transport failure.
				return stdout.String(), stderr.String(), nil
			}
			return stdout.String(), stderr.String(), &domain.TransportError{Op: "exec", Address: c.address, Err: err}
		}
		return stdout.String(), stderr.String(), nil

	case <-expired:
		// The deferred close tears down the channel, the goroutine still
		// owns the buffers so their contents are not safe to return here.
		return "", "", &domain.TransportError{
			Op:      "exec",
			Address: c.address,
			Err:     fmt.Errorf("command timed out after %v", timeout),
		}
	}
}

func (c *sshConn) Ping() error {
	if _, _, err := c.client.SendRequest("keepalive@openssh.com", true, nil); err != nil {
		return &domain.TransportError{Op: "keepalive", Address: c.address, Err: err}
	}
	return nil
}

func (c *sshConn) Close() error {
	return c.client.Close()
}

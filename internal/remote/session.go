package remote

import (
	"context"
	"sync"
	"time"

	"github.com/shellgate/shellgate/internal/domain"
	"github.com/shellgate/shellgate/internal/logger"
)

// Session is the process-wide connection slot. One mutex serializes
// connect, disconnect, execute and keepalive: at most one transport can
// ever be live, and a running command holds the slot until it completes or
// times out. There is no mid-command cancellation, the command timeout is
// the only bound.
type Session struct {
	mu     sync.Mutex
	dialer Dialer
	log    logger.Logger

	conn        Conn
	address     string
	username    string
	connectedAt time.Time
}

func NewSession(dialer Dialer, log logger.Logger) *Session {
	return &Session{
		dialer: dialer,
		log:    log,
	}
}

// Connect claims the slot and opens a transport. While a session is live,
// Connect returns domain.ErrAlreadyConnected without any network activity.
// A failed dial leaves the slot idle.
func (s *Session) Connect(ctx context.Context, srv domain.Server, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return domain.ErrAlreadyConnected
	}

	conn, err := s.dialer.Dial(ctx, srv.Address, srv.Username, srv.Password, timeout)
	if err != nil {
		return err // classified by the dialer
	}

	s.conn = conn
	s.address = srv.Address
	s.username = srv.Username
	s.connectedAt = time.Now()

	s.log.Info("connected to server",
		logger.String("address", s.address),
		logger.String("username", s.username))
	return nil
}

// Disconnect releases the slot. It returns false when the slot was already
// idle. The state is cleared even when closing the transport errors, a
// half-dead transport must never pin the slot.
func (s *Session) Disconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return false
	}

	if err := s.conn.Close(); err != nil {
		s.log.Warnf("error closing connection to %s: %v", s.address, err)
	}
	address := s.address
	s.clearLocked()

	s.log.Info("disconnected from server", logger.String("address", address))
	return true
}

// Execute runs a command on the live transport, holding the slot for the
// whole run. From an idle slot it returns domain.ErrNotConnected. A failed
// execute leaves the session as-is, the caller decides whether to
// disconnect.
func (s *Session) Execute(command string, timeout time.Duration) (domain.CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return domain.CommandResult{}, domain.ErrNotConnected
	}

	stdout, stderr, err := s.conn.Run(command, timeout)
	if err != nil {
		return domain.CommandResult{}, err
	}
	return domain.CommandResult{Stdout: stdout, Stderr: stderr}, nil
}

// Keepalive probes the live transport. A dead transport tears the slot down
// to idle and returns the probe error. An idle slot is a no-op.
func (s *Session) Keepalive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	err := s.conn.Ping()
	if err == nil {
		return nil
	}

	address := s.address
	if cerr := s.conn.Close(); cerr != nil {
		s.log.Debugf("error closing dead connection to %s: %v", address, cerr)
	}
	s.clearLocked()

	s.log.Warn("session dropped after failed keepalive",
		logger.String("address", address),
		logger.Error(err))
	return err
}

// Status reports the slot. It shares the session mutex, so a status read
// issued during a long command blocks until the command finishes.
func (s *Session) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return domain.SessionStatus{}
	}
	return domain.SessionStatus{
		Connected:   true,
		Address:     s.address,
		Username:    s.username,
		ConnectedAt: s.connectedAt,
	}
}

// Connected reports whether the slot is live.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *Session) clearLocked() {
	s.conn = nil
	s.address = ""
	s.username = ""
	s.connectedAt = time.Time{}
}

package scheduler

import (
	"context"
	"time"

	"github.com/shellgate/shellgate/internal/audit"
	"github.com/shellgate/shellgate/internal/domain"
	"github.com/shellgate/shellgate/internal/logger"
)

// Pinger is the slice of the session the monitor drives.
type Pinger interface {
	Connected() bool
	Status() domain.SessionStatus
	Keepalive() error
}

// SessionMonitor probes the live session periodically so a silently dead
// transport is torn down instead of lingering until the next command
// fails. The teardown itself happens inside Keepalive, the monitor only
// schedules it and records the drop.
type SessionMonitor struct {
	session  Pinger
	audit    audit.Recorder
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewSessionMonitor(session Pinger, recorder audit.Recorder, log logger.Logger, interval time.Duration) *SessionMonitor {
	return &SessionMonitor{
		session:  session,
		audit:    recorder,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the probe loop. A non-positive interval disables the
// monitor entirely.
func (sm *SessionMonitor) Start(ctx context.Context) error {
	if sm.interval <= 0 {
		sm.logger.Info("session keepalive disabled")
		return nil
	}

	ticker := time.NewTicker(sm.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sm.check(ctx)
			case <-sm.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the monitor.
func (sm *SessionMonitor) Stop() {
	close(sm.stopCh)
}

func (sm *SessionMonitor) check(ctx context.Context) {
	if !sm.session.Connected() {
		return
	}

	status := sm.session.Status()
	if err := sm.session.Keepalive(); err != nil {
		sm.audit.Record(ctx, audit.Event{
			Requester: "system",
			Action:    audit.ActionSessionDrop,
			Target:    status.Address,
			OK:        false,
			Detail:    err.Error(),
		})
	}
}

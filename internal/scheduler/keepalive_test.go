package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shellgate/shellgate/internal/audit"
	"github.com/shellgate/shellgate/internal/domain"
	"github.com/shellgate/shellgate/internal/logger"
)

type fakeSession struct {
	connected bool
	pingErr   error
	pings     int
}

func (s *fakeSession) Connected() bool { return s.connected }

func (s *fakeSession) Status() domain.SessionStatus {
	if !s.connected {
		return domain.SessionStatus{}
	}
	return domain.SessionStatus{Connected: true, Address: "10.0.0.5", Username: "bob"}
}

func (s *fakeSession) Keepalive() error {
	s.pings++
	if s.pingErr != nil {
		s.connected = false
		return s.pingErr
	}
	return nil
}

type captureRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *captureRecorder) Record(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestSessionMonitorIdleSession(t *testing.T) {
	session := &fakeSession{connected: false}
	recorder := &captureRecorder{}
	sm := NewSessionMonitor(session, recorder, logger.New("error", false), 0)

	sm.check(context.Background())

	if session.pings != 0 {
		t.Errorf("pings = %v, want 0 for an idle session", session.pings)
	}
	if len(recorder.events) != 0 {
		t.Errorf("recorded %v events, want 0", len(recorder.events))
	}
}

func TestSessionMonitorHealthySession(t *testing.T) {
	session := &fakeSession{connected: true}
	recorder := &captureRecorder{}
	sm := NewSessionMonitor(session, recorder, logger.New("error", false), 0)

	sm.check(context.Background())

	if session.pings != 1 {
		t.Errorf("pings = %v, want 1", session.pings)
	}
	if len(recorder.events) != 0 {
		t.Errorf("healthy probe recorded %v events, want 0", len(recorder.events))
	}
}

func TestSessionMonitorRecordsDrop(t *testing.T) {
	session := &fakeSession{connected: true, pingErr: errors.New("connection reset")}
	recorder := &captureRecorder{}
	sm := NewSessionMonitor(session, recorder, logger.New("error", false), 0)

	sm.check(context.Background())

	if len(recorder.events) != 1 {
		t.Fatalf("recorded %v events, want 1", len(recorder.events))
	}
	event := recorder.events[0]
	if event.Action != audit.ActionSessionDrop {
		t.Errorf("event action = %q, want %q", event.Action, audit.ActionSessionDrop)
	}
	if event.Target != "10.0.0.5" {
		t.Errorf("event target = %q, want the dropped address", event.Target)
	}
	if event.OK {
		t.Error("drop event has OK = true")
	}
}

func TestSessionMonitorDisabled(t *testing.T) {
	session := &fakeSession{connected: true}
	sm := NewSessionMonitor(session, &captureRecorder{}, logger.New("error", false), 0)

	// Interval 0 turns the loop off, Start must return without error.
	if err := sm.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if session.pings != 0 {
		t.Errorf("pings = %v, want 0 when disabled", session.pings)
	}
}

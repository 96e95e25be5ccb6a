package audit

import (
	"context"
	"time"

	"github.com/shellgate/shellgate/internal/domain"
	"github.com/shellgate/shellgate/internal/logger"
)

// Actions recorded in the trail.
const (
	ActionServerAdd     = "server.add"
	ActionServerDelete  = "server.delete"
	ActionConnect       = "session.connect"
	ActionDisconnect    = "session.disconnect"
	ActionSessionDrop   = "session.drop"
	ActionRun           = "command.run"
	ActionCommandAdd    = "book.add"
	ActionCommandRemove = "book.remove"
	ActionAdminAdd      = "admin.add"
	ActionAdminRemove   = "admin.remove"
	ActionPolicyReload  = "policy.reload"
)

// Event is one entry of the trail. Target names what the action touched
// (an address, an identity, a command), Detail carries the human-readable
// outcome. Commands appear sanitized, passwords never appear at all.
type Event struct {
	Time      string `json:"time"`
	Requester string `json:"requester"`
	Action    string `json:"action"`
	Target    string `json:"target,omitempty"`
	OK        bool   `json:"ok"`
	Detail    string `json:"detail,omitempty"`
}

// Recorder accepts events. Recording is best effort, a failed append must
// never fail the operation being audited.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Sink is a durable destination for events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// LogRecorder writes events to the log and nowhere else. It is the
// fallback when no durable sink is configured.
type LogRecorder struct {
	log logger.Logger
}

func NewLogRecorder(log logger.Logger) *LogRecorder {
	return &LogRecorder{log: log}
}

func (r *LogRecorder) Record(_ context.Context, event Event) {
	logEvent(r.log, stamped(event))
}

// SinkRecorder writes events to a durable sink and mirrors them to the
// log. A sink failure is logged and swallowed.
type SinkRecorder struct {
	sink Sink
	log  logger.Logger
}

func NewSinkRecorder(sink Sink, log logger.Logger) *SinkRecorder {
	return &SinkRecorder{
		sink: sink,
		log:  log,
	}
}

func (r *SinkRecorder) Record(ctx context.Context, event Event) {
	event = stamped(event)
	logEvent(r.log, event)
	if err := r.sink.Append(ctx, event); err != nil {
		r.log.Warn("audit trail append failed",
			logger.String("action", event.Action),
			logger.Error(err))
	}
}

func stamped(event Event) Event {
	if event.Time == "" {
		event.Time = domain.Timestamp(time.Now())
	}
	return event
}

func logEvent(log logger.Logger, event Event) {
	log.Info("audit",
		logger.String("requester", event.Requester),
		logger.String("action", event.Action),
		logger.String("target", event.Target),
		logger.Bool("ok", event.OK),
		logger.String("detail", event.Detail))
}

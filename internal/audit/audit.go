// Package audit records the outcome of every gated tool invocation.
//
// The recorder's failure path is deliberately non-propagating: an audit sink
// outage is an observability problem, not a user-visible one, so Record logs
// failures operationally and never returns an error to the caller. Callers in
// turn must call Record exactly once per gated invocation, whatever the
// outcome of the call itself.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/librarium-ai/librarium/internal/model"
)

// Sink is an external append-only destination for access events.
type Sink interface {
	InsertAccessEvent(ctx context.Context, e model.AccessEvent) error
}

// Recorder appends access events to a sink.
type Recorder struct {
	sink   Sink
	logger *slog.Logger
}

// NewRecorder creates a Recorder writing to the given sink.
func NewRecorder(sink Sink, logger *slog.Logger) *Recorder {
	return &Recorder{sink: sink, logger: logger}
}

// writeTimeout bounds the sink append so a hung audit store cannot stall the
// tool response it trails.
const writeTimeout = 5 * time.Second

// Record appends one access event. Never returns an error: failures are
// logged and dropped.
func (r *Recorder) Record(ctx context.Context, e model.AccessEvent) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	// Detach from the request context so a cancelled call still gets its
	// audit record written.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := r.sink.InsertAccessEvent(writeCtx, e); err != nil {
		r.logger.Error("audit: access event write failed",
			"error", err,
			"source", e.Source,
			"requester_type", e.RequesterType,
			"requester_id", e.RequesterID,
			"session_id", e.SessionID,
			"ok", e.OK,
		)
	}
}

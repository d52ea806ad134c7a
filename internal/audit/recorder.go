// internal/audit/recorder.go
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Event is one security-relevant occurrence. Durable persistence is an
// external collaborator; this package only defines the sink contract and a
// structured-log implementation.
type Event struct {
	Action    string `json:"action"`
	UserID    int64  `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Success   bool   `json:"success"`
	Detail    string `json:"detail,omitempty"`
	At        time.Time
}

// Recorder receives audit events. Implementations must not block request
// handling on slow sinks.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// ZapRecorder writes events to the structured log.
type ZapRecorder struct {
	logger *zap.Logger
}

func NewZapRecorder(logger *zap.Logger) *ZapRecorder {
	return &ZapRecorder{logger: logger.Named("audit")}
}

func (r *ZapRecorder) Record(_ context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	r.logger.Info("audit event",
		zap.String("action", e.Action),
		zap.Int64("user_id", e.UserID),
		zap.String("email", e.Email),
		zap.String("ip", e.IPAddress),
		zap.String("user_agent", e.UserAgent),
		zap.Bool("success", e.Success),
		zap.String("detail", e.Detail),
		zap.Time("at", e.At),
	)
}

// NopRecorder discards events; used in tests.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}

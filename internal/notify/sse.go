package notify

import (
	"context"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/infrastructure/sse"
	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
	"github.com/jonesrussell/north-cloud/formfill/internal/telemetry"
)

const sinkSSE = "sse"

// SSE publishes notifications on the broker, one topic per work id.
type SSE struct {
	publisher sse.Publisher
	logger    infralogger.Logger
	telemetry *telemetry.Provider
}

// NewSSE creates an SSE sink. tp may be nil.
func NewSSE(publisher sse.Publisher, logger infralogger.Logger, tp *telemetry.Provider) *SSE {
	return &SSE{publisher: publisher, logger: logger, telemetry: tp}
}

// Notify implements Notifier. A full broker buffer drops the event.
func (s *SSE) Notify(ctx context.Context, n domain.Notification) {
	event := sse.Event{
		Type:  string(n.Type),
		Topic: n.WorkID,
		Data:  n.Payload,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.telemetry.RecordDropped(sinkSSE)
		s.logger.Warn("Dropped SSE notification",
			infralogger.WorkID(n.WorkID),
			infralogger.String("event_type", string(n.Type)),
			infralogger.Error(err),
		)
	}
}

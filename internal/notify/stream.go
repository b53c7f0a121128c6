package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	infraevents "github.com/jonesrussell/north-cloud/formfill/infrastructure/events"
	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
	"github.com/jonesrussell/north-cloud/formfill/internal/telemetry"
)

const (
	sinkStream = "redis_stream"

	// asyncPublishTimeout bounds each background XADD.
	asyncPublishTimeout = 5 * time.Second
)

// Stream appends notifications to a Redis stream as JSON envelopes.
type Stream struct {
	client    *redis.Client
	stream    string
	maxLen    int64
	logger    infralogger.Logger
	telemetry *telemetry.Provider
	wg        sync.WaitGroup
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithStreamName overrides infraevents.StreamName.
func WithStreamName(name string) StreamOption {
	return func(s *Stream) {
		if name != "" {
			s.stream = name
		}
	}
}

// WithMaxLen caps the stream length approximately. Zero means unbounded.
func WithMaxLen(n int64) StreamOption {
	return func(s *Stream) { s.maxLen = n }
}

// NewStream creates a stream sink. It returns nil if client is nil; a nil
// *Stream is a valid no-op sink.
func NewStream(client *redis.Client, logger infralogger.Logger, tp *telemetry.Provider, opts ...StreamOption) *Stream {
	if client == nil {
		return nil
	}
	s := &Stream{
		client:    client,
		stream:    infraevents.StreamName,
		logger:    logger,
		telemetry: tp,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish appends one notification and returns the stream entry id.
func (s *Stream) Publish(ctx context.Context, n domain.Notification) (string, error) {
	if s == nil {
		return "", nil
	}

	envelope := infraevents.NewEnvelope(string(n.Type), n.WorkID, n.Payload)
	payload, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{"event": string(payload)},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("publish to stream: %w", err)
	}
	return id, nil
}

// Notify implements Notifier. The XADD runs in the background with its own
// timeout so a slow Redis never stalls planning.
func (s *Stream) Notify(_ context.Context, n domain.Notification) {
	if s == nil {
		return
	}

	s.wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		defer cancel()

		if _, err := s.Publish(ctx, n); err != nil {
			s.telemetry.RecordDropped(sinkStream)
			s.logger.Error("Async publish failed",
				infralogger.WorkID(n.WorkID),
				infralogger.String("event_type", string(n.Type)),
				infralogger.Error(err),
			)
		}
	})
}

// Wait blocks until every background publish has finished.
func (s *Stream) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

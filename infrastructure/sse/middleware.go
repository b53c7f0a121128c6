package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
)

const sseContentType = "text/event-stream"

// Handler streams broker events to the client until it disconnects or the
// subscription ends. opts are applied to every subscription; use
// HandlerWithOptions to derive them from the request.
func Handler(broker Broker, logger infralogger.Logger, opts ...ClientOption) gin.HandlerFunc {
	return HandlerWithOptions(broker, logger, func(*gin.Context) []ClientOption { return opts })
}

// HandlerWithOptions is Handler with per-request subscription options.
func HandlerWithOptions(
	broker Broker,
	logger infralogger.Logger,
	optsFn func(c *gin.Context) []ClientOption,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventChan, cleanup := broker.Subscribe(c.Request.Context(), optsFn(c)...)
		defer cleanup()

		first, open := peek(eventChan)
		if !open {
			logger.Warn("SSE subscription rejected (max clients reached)")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many connections"})
			return
		}

		// Streams outlive the server write timeout.
		rc := http.NewResponseController(c.Writer)
		if err := rc.SetWriteDeadline(time.Time{}); err != nil {
			logger.Debug("SSE write deadline not cleared", infralogger.Error(err))
		}

		SetSSEHeaders(c.Writer)
		c.Writer.WriteHeader(http.StatusOK)

		if err := writeEvent(c.Writer, Event{
			Type: eventTypeConnected,
			Data: map[string]any{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		}); err != nil {
			logger.Error("Failed to write connection event", infralogger.Error(err))
			return
		}
		if first != nil {
			if err := writeEvent(c.Writer, *first); err != nil {
				return
			}
		}

		logger.Debug("SSE client connected", infralogger.String("remote_addr", c.ClientIP()))
		streamEvents(c, eventChan, logger)
	}
}

// peek reads one event if one is immediately available. open is false when
// the channel was already closed.
func peek(ch <-chan Event) (*Event, bool) {
	select {
	case ev, ok := <-ch:
		if !ok {
			return nil, false
		}
		return &ev, true
	default:
		return nil, true
	}
}

func streamEvents(c *gin.Context, eventChan <-chan Event, logger infralogger.Logger) {
	ticker := time.NewTicker(DefaultHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				logger.Debug("SSE event channel closed")
				return
			}
			if err := writeEvent(c.Writer, event); err != nil {
				logger.Debug("SSE write failed",
					infralogger.Error(err),
					infralogger.String("event_type", event.Type),
				)
				return
			}
		case <-ticker.C:
			if err := writeHeartbeat(c.Writer); err != nil {
				logger.Debug("SSE heartbeat failed", infralogger.Error(err))
				return
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}

func writeEventToWriter(w io.Writer, event Event) error {
	if event.Type != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event.Type); err != nil {
			return fmt.Errorf("write event type: %w", err)
		}
	}
	if event.ID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", event.ID); err != nil {
			return fmt.Errorf("write event id: %w", err)
		}
	}
	if event.Retry > 0 {
		if _, err := fmt.Fprintf(w, "retry: %d\n", event.Retry); err != nil {
			return fmt.Errorf("write retry: %w", err)
		}
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	if _, err = fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write event data: %w", err)
	}
	return nil
}

func writeEvent(w gin.ResponseWriter, event Event) error {
	if err := writeEventToWriter(w, event); err != nil {
		return err
	}
	w.Flush()
	return nil
}

func writeHeartbeat(w gin.ResponseWriter) error {
	if _, err := fmt.Fprintf(w, ": heartbeat %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("write heartbeat: %w", err)
	}
	w.Flush()
	return nil
}

// WriteEventDirect writes one event to a plain http.ResponseWriter and flushes.
func WriteEventDirect(w http.ResponseWriter, event Event) error {
	if err := writeEventToWriter(w, event); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// SetSSEHeaders sets the event-stream response headers.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", sseContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

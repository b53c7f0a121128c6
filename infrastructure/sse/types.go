// Package sse fans events out to Server-Sent Events subscribers. The formfill
// service publishes one event per planned action; browser clients subscribe
// to the topic of their own work session.
package sse

import "context"

// Event is one SSE message. On the wire: "event: <Type>\nid: <ID>\ndata: <JSON>\n\n".
type Event struct {
	Type string `json:"type"`
	// Topic scopes delivery; it is not written to the stream.
	Topic string `json:"-"`
	Data  any    `json:"data"`
	ID    string `json:"id,omitempty"`
	// Retry is the client reconnect delay in milliseconds.
	Retry int `json:"retry,omitempty"`
}

// Publisher accepts events for fan-out.
type Publisher interface {
	// Publish never blocks; it fails when the broker buffer is full.
	Publish(ctx context.Context, event Event) error
}

// Subscriber hands out event channels.
type Subscriber interface {
	// Subscribe returns a channel closed when the subscription ends, and a
	// cleanup func the caller must run when done.
	Subscribe(ctx context.Context, opts ...ClientOption) (<-chan Event, func())
}

// Broker manages subscriptions and distribution.
type Broker interface {
	Publisher
	Subscriber
	Start(ctx context.Context) error
	Stop() error
	ClientCount() int
}

// EventFilter reports whether a subscriber wants event.
type EventFilter func(event Event) bool

// TopicFilter accepts events for topic. An empty topic accepts everything.
func TopicFilter(topic string) EventFilter {
	return func(event Event) bool {
		return topic == "" || event.Topic == topic
	}
}

const eventTypeConnected = "connected"

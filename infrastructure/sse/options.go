package sse

import "time"

// Defaults.
const (
	DefaultEventBufferSize   = 1000
	DefaultClientBufferSize  = 100
	DefaultHeartbeatInterval = 15 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
	DefaultMaxClients        = 1000
)

// BrokerOption configures a broker.
type BrokerOption func(*broker)

func WithEventBufferSize(size int) BrokerOption {
	return func(b *broker) {
		if size > 0 {
			b.eventBufferSize = size
		}
	}
}

func WithClientBufferSize(size int) BrokerOption {
	return func(b *broker) {
		if size > 0 {
			b.clientBufferSize = size
		}
	}
}

// WithMaxClients caps concurrent subscribers. Zero means unlimited.
func WithMaxClients(n int) BrokerOption {
	return func(b *broker) {
		if n >= 0 {
			b.maxClients = n
		}
	}
}

func WithShutdownTimeout(d time.Duration) BrokerOption {
	return func(b *broker) {
		if d > 0 {
			b.shutdownTimeout = d
		}
	}
}

// ClientOptions configures one subscription.
type ClientOptions struct {
	Filter     EventFilter
	BufferSize int
}

// ClientOption configures a subscription.
type ClientOption func(*ClientOptions)

func WithFilter(filter EventFilter) ClientOption {
	return func(o *ClientOptions) { o.Filter = filter }
}

// WithTopic restricts a subscription to one topic.
func WithTopic(topic string) ClientOption {
	return WithFilter(TopicFilter(topic))
}

func WithBufferSize(size int) ClientOption {
	return func(o *ClientOptions) {
		if size > 0 {
			o.BufferSize = size
		}
	}
}

package sse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
)

// ErrBufferFull is returned by Publish when the broker cannot accept more events.
var ErrBufferFull = errors.New("sse publish buffer full")

type broker struct {
	logger  infralogger.Logger
	mu      sync.RWMutex
	clients map[string]*client
	publish chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	eventBufferSize  int
	clientBufferSize int
	shutdownTimeout  time.Duration
	maxClients       int
}

// NewBroker creates a broker. Call Start before publishing.
func NewBroker(logger infralogger.Logger, opts ...BrokerOption) Broker {
	b := &broker{
		logger:           logger,
		clients:          make(map[string]*client),
		eventBufferSize:  DefaultEventBufferSize,
		clientBufferSize: DefaultClientBufferSize,
		shutdownTimeout:  DefaultShutdownTimeout,
		maxClients:       DefaultMaxClients,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.publish = make(chan Event, b.eventBufferSize)
	return b
}

func (b *broker) Start(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)

	b.wg.Add(1)
	go b.broadcastLoop()

	b.logger.Info("SSE broker started",
		infralogger.Int("event_buffer_size", b.eventBufferSize),
		infralogger.Int("client_buffer_size", b.clientBufferSize),
		infralogger.Int("max_clients", b.maxClients),
	)
	return nil
}

// Stop disconnects all clients and waits up to the shutdown timeout for
// background goroutines.
func (b *broker) Stop() error {
	if b.cancel != nil {
		b.cancel()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("SSE broker stopped")
	case <-time.After(b.shutdownTimeout):
		b.logger.Warn("SSE broker shutdown timeout exceeded")
	}
	return nil
}

func (b *broker) Publish(ctx context.Context, event Event) error {
	select {
	case b.publish <- event:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish cancelled: %w", ctx.Err())
	default:
		return fmt.Errorf("%w: dropped %s", ErrBufferFull, event.Type)
	}
}

func (b *broker) Subscribe(ctx context.Context, opts ...ClientOption) (<-chan Event, func()) {
	clientOpts := ClientOptions{BufferSize: b.clientBufferSize}
	for _, opt := range opts {
		opt(&clientOpts)
	}

	b.mu.Lock()
	if b.maxClients > 0 && len(b.clients) >= b.maxClients {
		b.mu.Unlock()
		b.logger.Warn("Max SSE clients reached, rejecting subscription",
			infralogger.Int("max_clients", b.maxClients),
		)
		rejected := make(chan Event)
		close(rejected)
		return rejected, func() {}
	}

	c := newClient(ctx, clientOpts.BufferSize, clientOpts.Filter)
	b.clients[c.id] = c
	total := len(b.clients)
	b.mu.Unlock()

	b.logger.Debug("SSE client subscribed",
		infralogger.String("client_id", c.id),
		infralogger.Int("total_clients", total),
	)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		<-c.ctx.Done()
		b.removeClient(c.id)
	}()

	return c.events, func() { b.removeClient(c.id) }
}

func (b *broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *broker) broadcastLoop() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.publish:
			b.broadcast(event)
		case <-b.ctx.Done():
			b.disconnectAll()
			return
		}
	}
}

// broadcast delivers event to every matching client and drops clients whose
// buffers are full.
func (b *broker) broadcast(event Event) {
	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, c := range clients {
		if c.send(event) {
			continue
		}
		b.logger.Warn("SSE client buffer full, closing slow connection",
			infralogger.String("client_id", c.id),
			infralogger.String("event_type", event.Type),
		)
		b.removeClient(c.id)
	}
}

func (b *broker) removeClient(id string) {
	b.mu.Lock()
	c, ok := b.clients[id]
	delete(b.clients, id)
	b.mu.Unlock()

	if ok {
		c.close()
	}
}

func (b *broker) disconnectAll() {
	b.mu.Lock()
	clients := b.clients
	b.clients = make(map[string]*client)
	b.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	b.logger.Info("All SSE clients disconnected", infralogger.Int("count", len(clients)))
}

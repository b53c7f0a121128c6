package sse

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type client struct {
	id     string
	events chan Event
	filter EventFilter
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func newClient(ctx context.Context, bufferSize int, filter EventFilter) *client {
	clientCtx, cancel := context.WithCancel(ctx)
	return &client{
		id:     "sse-" + uuid.NewString(),
		events: make(chan Event, bufferSize),
		filter: filter,
		ctx:    clientCtx,
		cancel: cancel,
	}
}

// send reports false only when the client buffer is full. Filtered events
// and closed clients report true so they are not treated as slow.
func (c *client) send(event Event) bool {
	if c.filter != nil && !c.filter(event) {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return true
	}

	select {
	case c.events <- event:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	close(c.events)
}

// Package notify delivers action notifications to connected clients. Every
// sink is fire-and-forget: Notify never waits for a consumer.
package notify

import (
	"context"

	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
)

// Notifier delivers one notification without blocking on the consumer.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// Multi fans a notification out to every non-nil sink in order.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n domain.Notification) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(ctx, n)
		}
	}
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, n domain.Notification)

// Notify implements Notifier.
func (f Func) Notify(ctx context.Context, n domain.Notification) { f(ctx, n) }

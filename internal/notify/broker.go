// Package notify fans table-change signals out to dashboard subscribers.
// Signals carry the table name only; subscribers always re-query, never
// trust a push payload.
package notify

import (
	"context"
	"sync"

	"github.com/lactaria/produccion/backend/pkg/logger"
	"github.com/lactaria/produccion/backend/pkg/redis"
)

// Signal names a table that changed.
type Signal struct {
	Table string `json:"table"`
}

// Broker distributes change signals. With Redis enabled, signals travel
// through pub/sub so every service instance (and thus every connected
// dashboard) sees changes made through any instance. Without Redis it
// degrades to in-process fan-out.
type Broker struct {
	mu     sync.RWMutex
	subs   map[chan Signal]struct{}
	pubsub *redis.PubSub
	logger *logger.Logger
}

// NewBroker creates a broker. pubsub may wrap a disabled Redis client.
func NewBroker(pubsub *redis.PubSub, log *logger.Logger) *Broker {
	return &Broker{
		subs:   make(map[chan Signal]struct{}),
		pubsub: pubsub,
		logger: log,
	}
}

// Publish emits a change signal for a table. When Redis is enabled the
// signal goes through pub/sub only and comes back via Run, so local
// subscribers see it exactly once.
func (b *Broker) Publish(ctx context.Context, table string) {
	if b.pubsub != nil {
		if err := b.pubsub.Publish(ctx, table); err != nil {
			b.logger.WithError(err).WithField("table", table).
				Warn("Pub/sub publish failed, falling back to local fan-out")
			b.fanOut(Signal{Table: table})
			return
		}
		// Enabled pub/sub delivers back through Run. A disabled client
		// published nothing, so fan out locally.
		if b.pubsubActive() {
			return
		}
	}
	b.fanOut(Signal{Table: table})
}

// Run forwards pub/sub messages to local subscribers until ctx is
// cancelled. Call it once per instance; it returns immediately when Redis
// is disabled.
func (b *Broker) Run(ctx context.Context) {
	if b.pubsub == nil {
		return
	}
	if err := b.pubsub.Subscribe(ctx, func(payload string) {
		b.fanOut(Signal{Table: payload})
	}); err != nil && err != context.Canceled {
		b.logger.WithError(err).Warn("Pub/sub subscription ended")
	}
}

// Subscribe registers a signal channel. The returned func unsubscribes.
func (b *Broker) Subscribe() (<-chan Signal, func()) {
	ch := make(chan Signal, 8)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}

	return ch, cancel
}

func (b *Broker) fanOut(sig Signal) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- sig:
		default:
			// Slow subscriber; dropping is fine, the next signal
			// triggers the same re-fetch.
		}
	}
}

func (b *Broker) pubsubActive() bool {
	return b.pubsub != nil && b.pubsub.Enabled()
}

package redis

import (
	"context"
	"fmt"
)

// PubSub fans change signals out across service instances. Each instance
// subscribes once and forwards received signals to its local WebSocket hub,
// so dashboards connected to any instance see every change.
type PubSub struct {
	client  *Client
	channel string
}

// NewPubSub creates a pub/sub helper on a fixed channel.
func NewPubSub(client *Client, channel string) *PubSub {
	return &PubSub{
		client:  client,
		channel: channel,
	}
}

// Enabled reports whether the underlying Redis client is enabled.
func (p *PubSub) Enabled() bool {
	return p.client.Enabled()
}

// Publish sends a message to the channel. No-op when Redis is disabled.
func (p *PubSub) Publish(ctx context.Context, payload string) error {
	if !p.client.Enabled() {
		return nil
	}

	if err := p.client.Redis().Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	return nil
}

// Subscribe delivers channel messages to fn until ctx is cancelled.
// Returns immediately when Redis is disabled.
func (p *PubSub) Subscribe(ctx context.Context, fn func(payload string)) error {
	if !p.client.Enabled() {
		return nil
	}

	sub := p.client.Redis().Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			fn(msg.Payload)
		}
	}
}

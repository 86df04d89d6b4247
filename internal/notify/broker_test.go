package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lactaria/produccion/backend/pkg/config"
	"github.com/lactaria/produccion/backend/pkg/logger"
	"github.com/lactaria/produccion/backend/pkg/redis"
)

func newLocalBroker(t *testing.T) *Broker {
	t.Helper()

	// Disabled Redis client: the broker must fall back to in-process
	// fan-out.
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)

	log := logger.New(&config.Config{Env: "test", LogLevel: "error"})
	return NewBroker(redis.NewPubSub(client, "test:changes"), log)
}

func TestBrokerLocalFanOut(t *testing.T) {
	b := newLocalBroker(t)

	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish(context.Background(), "production_data")

	select {
	case sig := <-ch:
		assert.Equal(t, "production_data", sig.Table)
	case <-time.After(time.Second):
		t.Fatal("no signal delivered")
	}
}

func TestBrokerDeliversToAllSubscribers(t *testing.T) {
	b := newLocalBroker(t)

	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Publish(context.Background(), "aggregated_production_data")

	for _, ch := range []<-chan Signal{ch1, ch2} {
		select {
		case sig := <-ch:
			assert.Equal(t, "aggregated_production_data", sig.Table)
		case <-time.After(time.Second):
			t.Fatal("no signal delivered")
		}
	}
}

func TestBrokerUnsubscribeStopsDelivery(t *testing.T) {
	b := newLocalBroker(t)

	ch, cancel := b.Subscribe()
	cancel()

	b.Publish(context.Background(), "production_data")

	select {
	case sig := <-ch:
		t.Fatalf("unexpected signal after unsubscribe: %v", sig)
	default:
	}
}

func TestBrokerDropsWhenSubscriberFull(t *testing.T) {
	b := newLocalBroker(t)

	ch, cancel := b.Subscribe()
	defer cancel()

	// Fill the buffer and then some; Publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			b.Publish(context.Background(), "production_data")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.NotEmpty(t, ch)
}

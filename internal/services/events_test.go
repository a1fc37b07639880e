package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vaartalab/newsroom-backend/internal/realtime"
)

type stubBus struct {
	fail      bool
	published []realtime.Message
}

func (b *stubBus) Publish(ctx context.Context, msg realtime.Message) error {
	if b.fail {
		return errors.New("bus down")
	}
	b.published = append(b.published, msg)
	return nil
}

func (b *stubBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	return nil
}

func (b *stubBus) Close() error { return nil }

func TestRealtimeEventPublisher(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("hub_only_broadcasts_locally", func(t *testing.T) {
		log := testLogger(t)
		hub := realtime.NewHub(log)
		client := hub.NewClient(uuid.New())
		hub.Subscribe(client, realtime.TenantChannel(tenantID))

		pub := NewRealtimeEventPublisher(log, hub, nil)
		pub.Publish(ctx, tenantID, EventArticleQueued, map[string]any{"articleId": "a"})

		select {
		case msg := <-client.Outbound:
			if msg.Event != EventArticleQueued {
				t.Fatalf("event = %s, want %s", msg.Event, EventArticleQueued)
			}
		case <-time.After(time.Second):
			t.Fatalf("no message delivered")
		}
	})

	t.Run("bus_takes_precedence", func(t *testing.T) {
		log := testLogger(t)
		hub := realtime.NewHub(log)
		client := hub.NewClient(uuid.New())
		hub.Subscribe(client, realtime.TenantChannel(tenantID))

		b := &stubBus{}
		pub := NewRealtimeEventPublisher(log, hub, b)
		pub.Publish(ctx, tenantID, EventArticleAIDone, nil)

		if len(b.published) != 1 || b.published[0].Event != EventArticleAIDone {
			t.Fatalf("bus saw %v, want one ai_done event", b.published)
		}
		// Local delivery is the forwarder's job when a bus is wired.
		select {
		case msg := <-client.Outbound:
			t.Fatalf("hub received directly despite bus: %+v", msg)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("bus_failure_falls_back_to_hub", func(t *testing.T) {
		log := testLogger(t)
		hub := realtime.NewHub(log)
		client := hub.NewClient(uuid.New())
		hub.Subscribe(client, realtime.TenantChannel(tenantID))

		pub := NewRealtimeEventPublisher(log, hub, &stubBus{fail: true})
		pub.Publish(ctx, tenantID, EventArticleAIFailed, nil)

		select {
		case msg := <-client.Outbound:
			if msg.Event != EventArticleAIFailed {
				t.Fatalf("event = %s, want %s", msg.Event, EventArticleAIFailed)
			}
		case <-time.After(time.Second):
			t.Fatalf("no fallback delivery")
		}
	})

	t.Run("nil_tenant_is_a_noop", func(t *testing.T) {
		log := testLogger(t)
		b := &stubBus{}
		pub := NewRealtimeEventPublisher(log, realtime.NewHub(log), b)
		pub.Publish(ctx, uuid.Nil, EventArticleQueued, nil)
		if len(b.published) != 0 {
			t.Fatalf("published %v for nil tenant", b.published)
		}
	})
}

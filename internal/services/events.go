package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/realtime"
	"github.com/vaartalab/newsroom-backend/internal/realtime/bus"
)

// realtimeEventPublisher fans composition events into the realtime
// layer. With a bus configured the event goes to redis and comes back
// through the forwarder, reaching subscribers on every replica; without
// one it is broadcast straight to the local hub.
type realtimeEventPublisher struct {
	log *logger.Logger
	hub *realtime.Hub
	bus bus.Bus // nil when redis is not configured
}

func NewRealtimeEventPublisher(baseLog *logger.Logger, hub *realtime.Hub, b bus.Bus) EventPublisher {
	return &realtimeEventPublisher{
		log: baseLog.With("service", "RealtimeEventPublisher"),
		hub: hub,
		bus: b,
	}
}

func (p *realtimeEventPublisher) Publish(ctx context.Context, tenantID uuid.UUID, event string, payload any) {
	if tenantID == uuid.Nil {
		return
	}
	msg := realtime.Message{
		Channel: realtime.TenantChannel(tenantID),
		Event:   event,
		Data:    payload,
	}

	if p.bus != nil {
		err := p.bus.Publish(ctx, msg)
		if err == nil {
			return
		}
		p.log.Warn("event bus publish failed, falling back to local hub", "event", event, "error", err)
	}
	if p.hub != nil {
		p.hub.Broadcast(msg)
	}
}

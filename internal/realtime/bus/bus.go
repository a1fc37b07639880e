// Package bus carries realtime messages between API replicas. Events
// published on one instance reach hub subscribers on every instance.
package bus

import (
	"context"

	"github.com/vaartalab/newsroom-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}

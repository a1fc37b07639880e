package realtime

import (
	"github.com/google/uuid"
)

// Client is one open event-stream connection. Outbound is buffered; the
// hub drops messages for connections that stop draining rather than
// blocking the broadcaster.
type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan Message
	done     chan struct{}
}

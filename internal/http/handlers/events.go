package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vaartalab/newsroom-backend/internal/http/response"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/realtime"
)

type EventStreamHandler struct {
	log *logger.Logger
	hub *realtime.Hub
}

func NewEventStreamHandler(log *logger.Logger, hub *realtime.Hub) *EventStreamHandler {
	return &EventStreamHandler{log: log.With("handler", "EventStreamHandler"), hub: hub}
}

// GET /api/events/stream
//
// Staff connections are pinned to their own desk's channel. Platform
// admins must name the tenant they want to watch.
func (h *EventStreamHandler) Stream(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}

	var tenantID uuid.UUID
	if raw := strings.TrimSpace(c.Query("tenantId")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_tenant_id", err)
			return
		}
		tenantID = parsed
	}
	if rd.IsSuperAdmin() {
		if tenantID == uuid.Nil {
			response.RespondError(c, http.StatusUnprocessableEntity, "tenant_scope_required", nil)
			return
		}
	} else {
		if rd.TenantID == nil {
			response.RespondError(c, http.StatusForbidden, "forbidden", nil)
			return
		}
		tenantID = *rd.TenantID
	}

	client := h.hub.NewClient(rd.UserID)
	h.hub.Subscribe(client, realtime.TenantChannel(tenantID))
	h.log.Info("Event stream open", "user_id", rd.UserID.String(), "tenant_id", tenantID.String())

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Info("Event stream closed", "user_id", rd.UserID.String())
}

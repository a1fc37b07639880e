package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaartalab/newsroom-backend/internal/http/response"
	"github.com/vaartalab/newsroom-backend/internal/services"
)

type ShortNewsHandler struct {
	content services.ContentService
}

func NewShortNewsHandler(content services.ContentService) *ShortNewsHandler {
	return &ShortNewsHandler{content: content}
}

// GET /public/tenants/:tenantId/short-news
func (h *ShortNewsHandler) Feed(c *gin.Context) {
	tenantID, ok := pathID(c, "tenantId")
	if !ok {
		return
	}
	limit, offset := pagination(c)
	rows, err := h.content.ListPublicShortNews(c.Request.Context(), tenantID, limit, offset)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"shortNews": rows})
}

// PATCH /api/short-news/:id/status
func (h *ShortNewsHandler) SetStatus(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := h.content.SetShortNewsStatus(c.Request.Context(), rd, id, req.Status); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "status": req.Status})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaartalab/newsroom-backend/internal/http/response"
	"github.com/vaartalab/newsroom-backend/internal/services"
)

type NewspaperHandler struct {
	content services.ContentService
}

func NewNewspaperHandler(content services.ContentService) *NewspaperHandler {
	return &NewspaperHandler{content: content}
}

// PATCH /api/newspaper-articles/:id
func (h *NewspaperHandler) Update(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in services.NewspaperUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	row, err := h.content.UpdateNewspaperArticle(c.Request.Context(), rd, id, &in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"newspaperArticle": row})
}

type statusPatchRequest struct {
	Status string `json:"status"`
}

// PATCH /api/newspaper-articles/:id/status
func (h *NewspaperHandler) SetStatus(c *gin.Context) {
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
	if err := h.content.SetNewspaperStatus(c.Request.Context(), rd, id, req.Status); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "status": req.Status})
}

// GET /public/newspaper-articles/:id
func (h *NewspaperHandler) GetPublic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	row, err := h.content.GetPublicNewspaperArticle(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"newspaperArticle": row})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaartalab/newsroom-backend/internal/http/response"
	"github.com/vaartalab/newsroom-backend/internal/services"
)

type EngagementHandler struct {
	engagement services.EngagementService
}

func NewEngagementHandler(engagement services.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagement: engagement}
}

type addCommentRequest struct {
	Body string `json:"body"`
}

// POST /api/articles/:id/comments
func (h *EngagementHandler) AddComment(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	articleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	comment, err := h.engagement.AddComment(c.Request.Context(), rd, articleID, req.Body)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"comment": comment})
}

// GET /api/articles/:id/comments
func (h *EngagementHandler) ListComments(c *gin.Context) {
	if _, ok := actor(c); !ok {
		return
	}
	articleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, offset := pagination(c)
	comments, err := h.engagement.ListComments(c.Request.Context(), articleID, limit, offset)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"comments": comments})
}

// POST /api/comments/:id/hide
func (h *EngagementHandler) HideComment(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.engagement.HideComment(c.Request.Context(), rd, commentID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/articles/:id/like
func (h *EngagementHandler) Like(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	articleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	likes, err := h.engagement.Like(c.Request.Context(), rd, articleID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"likes": likes})
}

// DELETE /api/articles/:id/like
func (h *EngagementHandler) Unlike(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	articleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	likes, err := h.engagement.Unlike(c.Request.Context(), rd, articleID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"likes": likes})
}

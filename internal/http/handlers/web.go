package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaartalab/newsroom-backend/internal/http/response"
	"github.com/vaartalab/newsroom-backend/internal/services"
)

type WebHandler struct {
	content services.ContentService
	cards   services.ShareCardService
}

func NewWebHandler(content services.ContentService, cards services.ShareCardService) *WebHandler {
	return &WebHandler{content: content, cards: cards}
}

// GET /public/tenants/:tenantId/web-articles
func (h *WebHandler) ListPublic(c *gin.Context) {
	tenantID, ok := pathID(c, "tenantId")
	if !ok {
		return
	}
	limit, offset := pagination(c)
	rows, err := h.content.ListPublicWebArticles(c.Request.Context(), tenantID, limit, offset)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"webArticles": rows})
}

// GET /public/tenants/:tenantId/web-articles/:slug
func (h *WebHandler) GetPublicBySlug(c *gin.Context) {
	tenantID, ok := pathID(c, "tenantId")
	if !ok {
		return
	}
	row, err := h.content.GetPublicWebArticleBySlug(c.Request.Context(), tenantID, c.Param("slug"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"webArticle": row})
}

// PATCH /api/web-articles/:id/status
func (h *WebHandler) SetStatus(c *gin.Context) {
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
	if err := h.content.SetWebArticleStatus(c.Request.Context(), rd, id, req.Status); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "status": req.Status})
}

// GET /public/web-articles/:id/card.png
//
// The render is deterministic per article, so shared-link crawlers can
// cache it hard.
func (h *WebHandler) ShareCard(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	png, err := h.cards.RenderWebCard(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

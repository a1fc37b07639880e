package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaartalab/newsroom-backend/internal/http/response"
	"github.com/vaartalab/newsroom-backend/internal/services"
)

type PromptHandler struct {
	prompts services.PromptAdminService
}

func NewPromptHandler(prompts services.PromptAdminService) *PromptHandler {
	return &PromptHandler{prompts: prompts}
}

// GET /api/prompt-templates
func (h *PromptHandler) List(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	views, err := h.prompts.List(c.Request.Context(), rd)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"templates": views})
}

// GET /api/prompt-templates/:key
func (h *PromptHandler) Get(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	view, err := h.prompts.Get(c.Request.Context(), rd, c.Param("key"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

type putPromptRequest struct {
	Body string `json:"body"`
}

// PUT /api/prompt-templates/:key
func (h *PromptHandler) Put(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	var req putPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	view, err := h.prompts.Put(c.Request.Context(), rd, c.Param("key"), req.Body)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

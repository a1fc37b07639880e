package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaartalab/newsroom-backend/internal/http/response"
	"github.com/vaartalab/newsroom-backend/internal/services"
)

type ProgressHandler struct {
	progress services.ReadProgressService
}

func NewProgressHandler(progress services.ReadProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

type progressBatchRequest struct {
	Events []services.ProgressInput `json:"events"`
}

// POST /api/progress/batch
//
// Accepts either the {"events":[...]} envelope or a bare array, so old
// reader builds keep working.
func (h *ProgressHandler) Batch(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if len(raw) == 0 {
		response.RespondError(c, http.StatusBadRequest, "empty_body", nil)
		return
	}

	var items []services.ProgressInput
	var env progressBatchRequest
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Events) > 0 {
		items = env.Events
	} else {
		var arr []services.ProgressInput
		if err2 := json.Unmarshal(raw, &arr); err2 != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_json", err2)
			return
		}
		items = arr
	}

	report, err := h.progress.Record(c.Request.Context(), rd, items)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, report)
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vaartalab/newsroom-backend/internal/http/response"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/services"
)

type ArticleHandler struct {
	log     *logger.Logger
	compose services.CompositionService
	status  services.CompositionStatusService
	content services.ContentService
}

func NewArticleHandler(
	log *logger.Logger,
	compose services.CompositionService,
	status services.CompositionStatusService,
	content services.ContentService,
) *ArticleHandler {
	return &ArticleHandler{
		log:     log.With("handler", "ArticleHandler"),
		compose: compose,
		status:  status,
		content: content,
	}
}

// submissionView is the submit/retry response: the base record's state
// plus links to whatever derived artifacts the run produced.
type submissionView struct {
	ArticleID uuid.UUID            `json:"articleId"`
	TenantID  uuid.UUID            `json:"tenantId"`
	Status    string               `json:"status"`
	AIStatus  string               `json:"aiStatus"`
	Codes     []string             `json:"codes,omitempty"`
	Outputs   services.OutputLinks `json:"outputs"`
}

func newSubmissionView(res *services.CompositionResult) submissionView {
	view := submissionView{Codes: res.Codes}
	if res.Article != nil {
		view.ArticleID = res.Article.ID
		view.TenantID = res.Article.TenantID
		view.Status = res.Article.Status
		view.AIStatus = res.Article.AIStatus
	}
	if res.Newspaper != nil {
		id := res.Newspaper.ID
		view.Outputs.NewspaperArticleID = &id
	}
	if res.Web != nil {
		id := res.Web.ID
		view.Outputs.WebArticleID = &id
	}
	if res.Short != nil {
		id := res.Short.ID
		view.Outputs.ShortNewsID = &id
	}
	return view
}

// POST /api/articles
func (h *ArticleHandler) Submit(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	var in services.SubmissionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	res, err := h.compose.Submit(c.Request.Context(), rd, &in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, newSubmissionView(res))
}

// GET /api/articles
func (h *ArticleHandler) List(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	tenantID := uuid.Nil
	if raw := strings.TrimSpace(c.Query("tenantId")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_tenant_id", err)
			return
		}
		tenantID = parsed
	}
	limit, offset := pagination(c)

	rows, err := h.content.ListArticles(c.Request.Context(), rd, tenantID, c.Query("status"), limit, offset)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"articles": rows})
}

// GET /api/categories
func (h *ArticleHandler) Categories(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	tenantID := uuid.Nil
	if raw := strings.TrimSpace(c.Query("tenantId")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_tenant_id", err)
			return
		}
		tenantID = parsed
	}
	rows, err := h.content.ListCategories(c.Request.Context(), rd, tenantID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": rows})
}

// GET /api/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	row, err := h.content.GetArticle(c.Request.Context(), rd, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"article": row})
}

// GET /api/articles/:id/ai-status
func (h *ArticleHandler) AIStatus(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	st, err := h.status.GetStatus(c.Request.Context(), rd, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, st)
}

// POST /api/articles/:id/ai-retry
func (h *ArticleHandler) AIRetry(c *gin.Context) {
	rd, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.compose.RetryProcessing(c.Request.Context(), rd, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, newSubmissionView(res))
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/apierr"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/repos"
	"github.com/vaartalab/newsroom-backend/internal/requestdata"
	"github.com/vaartalab/newsroom-backend/internal/sanitize"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

// NewspaperUpdateInput carries a desk-editor patch. Nil pointer or nil
// slice means "leave the column alone"; present values replace.
type NewspaperUpdateInput struct {
	Headline   *string  `json:"headline,omitempty"`
	Subtitle   *string  `json:"subtitle,omitempty"`
	Dateline   *string  `json:"dateline,omitempty"`
	Body       []string `json:"body,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
}

type ContentService interface {
	ListArticles(ctx context.Context, rd requestdata.RequestData, tenantID uuid.UUID, status string, limit, offset int) ([]*types.Article, error)
	GetArticle(ctx context.Context, rd requestdata.RequestData, id uuid.UUID) (*types.Article, error)
	ListCategories(ctx context.Context, rd requestdata.RequestData, tenantID uuid.UUID) ([]*types.Category, error)

	UpdateNewspaperArticle(ctx context.Context, rd requestdata.RequestData, id uuid.UUID, in *NewspaperUpdateInput) (*types.NewspaperArticle, error)
	SetNewspaperStatus(ctx context.Context, rd requestdata.RequestData, id uuid.UUID, status string) error
	GetPublicNewspaperArticle(ctx context.Context, id uuid.UUID) (*types.NewspaperArticle, error)

	ListPublicWebArticles(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*types.WebArticle, error)
	GetPublicWebArticleBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*types.WebArticle, error)
	SetWebArticleStatus(ctx context.Context, rd requestdata.RequestData, id uuid.UUID, status string) error

	ListPublicShortNews(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*types.ShortNews, error)
	SetShortNewsStatus(ctx context.Context, rd requestdata.RequestData, id uuid.UUID, status string) error
}

type contentService struct {
	db        *gorm.DB
	log       *logger.Logger
	sanitizer *sanitize.Sanitizer
	maxField  int

	articleRepo   repos.ArticleRepo
	newspaperRepo repos.NewspaperArticleRepo
	webRepo       repos.WebArticleRepo
	shortRepo     repos.ShortNewsRepo
	categoryRepo  repos.CategoryRepo
}

func NewContentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sanitizer *sanitize.Sanitizer,
	maxFieldLen int,
	articleRepo repos.ArticleRepo,
	newspaperRepo repos.NewspaperArticleRepo,
	webRepo repos.WebArticleRepo,
	shortRepo repos.ShortNewsRepo,
	categoryRepo repos.CategoryRepo,
) ContentService {
	return &contentService{
		db:            db,
		log:           baseLog.With("service", "ContentService"),
		sanitizer:     sanitizer,
		maxField:      maxFieldLen,
		articleRepo:   articleRepo,
		newspaperRepo: newspaperRepo,
		webRepo:       webRepo,
		shortRepo:     shortRepo,
		categoryRepo:  categoryRepo,
	}
}

func validStatus(status string) bool {
	switch status {
	case types.StatusPending, types.StatusPublished, types.StatusRejected:
		return true
	}
	return false
}

// listTenant resolves which tenant a staffer listing runs against.
// Platform admins must name one; everyone else is pinned to their own.
func listTenant(rd requestdata.RequestData, tenantID uuid.UUID) (uuid.UUID, error) {
	if rd.IsSuperAdmin() {
		if tenantID == uuid.Nil {
			return uuid.Nil, apierr.Validation("tenant_scope_required", errors.New("platform admins must name a tenant"))
		}
		return tenantID, nil
	}
	if rd.TenantID == nil {
		return uuid.Nil, apierr.Validation("tenant_scope_required", errors.New("caller has no tenant"))
	}
	return *rd.TenantID, nil
}

func (s *contentService) ListArticles(ctx context.Context, rd requestdata.RequestData, tenantID uuid.UUID, status string, limit, offset int) ([]*types.Article, error) {
	scope, err := listTenant(rd, tenantID)
	if err != nil {
		return nil, err
	}
	if status != "" && !validStatus(status) {
		return nil, apierr.Validation("invalid_status", errors.New("unknown status filter"))
	}
	rows, err := s.articleRepo.ListByTenant(ctx, nil, scope, status, limit, offset)
	if err != nil {
		return nil, apierr.Persistence(err)
	}
	return rows, nil
}

func (s *contentService) GetArticle(ctx context.Context, rd requestdata.RequestData, id uuid.UUID) (*types.Article, error) {
	row, err := s.articleRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("article_not_found")
		}
		return nil, apierr.Persistence(err)
	}
	if !rd.SameTenant(row.TenantID) {
		return nil, apierr.NotFound("article_not_found")
	}
	return row, nil
}

// ListCategories returns the tags a staffer can put on a submission:
// the tenant's own categories plus the shared global set.
func (s *contentService) ListCategories(ctx context.Context, rd requestdata.RequestData, tenantID uuid.UUID) ([]*types.Category, error) {
	scope, err := listTenant(rd, tenantID)
	if err != nil {
		return nil, err
	}
	rows, err := s.categoryRepo.ListByTenant(ctx, nil, scope)
	if err != nil {
		return nil, apierr.Persistence(err)
	}
	return rows, nil
}

func (s *contentService) UpdateNewspaperArticle(ctx context.Context, rd requestdata.RequestData, id uuid.UUID, in *NewspaperUpdateInput) (*types.NewspaperArticle, error) {
	if !rd.IsEditorial() {
		return nil, apierr.Validation("editorial_role_required", errors.New("only editorial roles edit the print desk"))
	}
	if in == nil {
		return nil, apierr.Validation("empty_update", errors.New("no fields to update"))
	}

	row, err := s.newspaperRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("newspaper_article_not_found")
		}
		return nil, apierr.Persistence(err)
	}
	if !rd.SameTenant(row.TenantID) {
		return nil, apierr.NotFound("newspaper_article_not_found")
	}

	if in.Headline != nil {
		clean := s.cleanField(*in.Headline)
		if clean == "" {
			return nil, apierr.Validation("empty_headline", errors.New("headline cannot be blanked"))
		}
		row.Headline = clean
	}
	if in.Subtitle != nil {
		row.Subtitle = s.cleanField(*in.Subtitle)
	}
	if in.Dateline != nil {
		row.Dateline = s.cleanField(*in.Dateline)
	}
	if in.Body != nil {
		paras := s.cleanList(in.Body)
		if len(paras) == 0 {
			return nil, apierr.Validation("empty_body", errors.New("body cannot be blanked"))
		}
		b, err := json.Marshal(paras)
		if err != nil {
			return nil, apierr.Persistence(err)
		}
		row.Body = datatypes.JSON(b)
	}
	if in.Highlights != nil {
		b, err := json.Marshal(s.cleanList(in.Highlights))
		if err != nil {
			return nil, apierr.Persistence(err)
		}
		row.Highlights = datatypes.JSON(b)
	}

	if err := s.newspaperRepo.Update(ctx, nil, row); err != nil {
		return nil, apierr.Persistence(err)
	}
	return row, nil
}

func (s *contentService) SetNewspaperStatus(ctx context.Context, rd requestdata.RequestData, id uuid.UUID, status string) error {
	return s.patchStatus(ctx, rd, status, func() (uuid.UUID, error) {
		row, err := s.newspaperRepo.GetByID(ctx, nil, id)
		if err != nil {
			return uuid.Nil, err
		}
		return row.TenantID, nil
	}, "newspaper_article_not_found", func() error {
		return s.newspaperRepo.SetStatus(ctx, nil, id, status)
	})
}

// GetPublicNewspaperArticle serves the reader path: published rows
// only, and every successful read bumps the view counter.
func (s *contentService) GetPublicNewspaperArticle(ctx context.Context, id uuid.UUID) (*types.NewspaperArticle, error) {
	row, err := s.newspaperRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("newspaper_article_not_found")
		}
		return nil, apierr.Persistence(err)
	}
	if row.Status != types.StatusPublished {
		return nil, apierr.NotFound("newspaper_article_not_found")
	}
	if err := s.newspaperRepo.IncrementViewCount(ctx, nil, row.ID); err != nil {
		s.log.Warn("view count bump failed", "newspaperArticleID", row.ID, "error", err)
	} else {
		row.ViewCount++
	}
	return row, nil
}

func (s *contentService) ListPublicWebArticles(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*types.WebArticle, error) {
	if tenantID == uuid.Nil {
		return nil, apierr.Validation("tenant_scope_required", errors.New("public listings are per tenant"))
	}
	rows, err := s.webRepo.ListPublished(ctx, nil, tenantID, limit, offset)
	if err != nil {
		return nil, apierr.Persistence(err)
	}
	return rows, nil
}

func (s *contentService) GetPublicWebArticleBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*types.WebArticle, error) {
	slug = strings.TrimSpace(slug)
	if tenantID == uuid.Nil || slug == "" {
		return nil, apierr.Validation("missing_slug", errors.New("tenant and slug required"))
	}
	row, err := s.webRepo.GetPublishedBySlug(ctx, nil, tenantID, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("web_article_not_found")
		}
		return nil, apierr.Persistence(err)
	}
	if err := s.webRepo.IncrementViewCount(ctx, nil, row.ID); err != nil {
		s.log.Warn("view count bump failed", "webArticleID", row.ID, "error", err)
	} else {
		row.ViewCount++
	}
	return row, nil
}

func (s *contentService) SetWebArticleStatus(ctx context.Context, rd requestdata.RequestData, id uuid.UUID, status string) error {
	return s.patchStatus(ctx, rd, status, func() (uuid.UUID, error) {
		row, err := s.webRepo.GetByID(ctx, nil, id)
		if err != nil {
			return uuid.Nil, err
		}
		return row.TenantID, nil
	}, "web_article_not_found", func() error {
		return s.webRepo.SetStatus(ctx, nil, id, status)
	})
}

func (s *contentService) ListPublicShortNews(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*types.ShortNews, error) {
	if tenantID == uuid.Nil {
		return nil, apierr.Validation("tenant_scope_required", errors.New("public listings are per tenant"))
	}
	rows, err := s.shortRepo.ListPublished(ctx, nil, tenantID, limit, offset)
	if err != nil {
		return nil, apierr.Persistence(err)
	}
	return rows, nil
}

func (s *contentService) SetShortNewsStatus(ctx context.Context, rd requestdata.RequestData, id uuid.UUID, status string) error {
	return s.patchStatus(ctx, rd, status, func() (uuid.UUID, error) {
		row, err := s.shortRepo.GetByID(ctx, nil, id)
		if err != nil {
			return uuid.Nil, err
		}
		return row.TenantID, nil
	}, "short_news_not_found", func() error {
		return s.shortRepo.SetStatus(ctx, nil, id, status)
	})
}

// patchStatus runs the shared moderation gauntlet: editorial role,
// valid target status, tenant scope, then the row-specific update.
func (s *contentService) patchStatus(ctx context.Context, rd requestdata.RequestData, status string, loadTenant func() (uuid.UUID, error), missCode string, apply func() error) error {
	if !rd.IsEditorial() {
		return apierr.Validation("editorial_role_required", errors.New("only editorial roles moderate artifacts"))
	}
	if !validStatus(status) {
		return apierr.Validation("invalid_status", errors.New("status must be PENDING, PUBLISHED or REJECTED"))
	}
	tenantID, err := loadTenant()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound(missCode)
		}
		return apierr.Persistence(err)
	}
	if !rd.SameTenant(tenantID) {
		return apierr.NotFound(missCode)
	}
	if err := apply(); err != nil {
		return apierr.Persistence(err)
	}
	return nil
}

func (s *contentService) cleanField(v string) string {
	return sanitize.Truncate(strings.TrimSpace(s.sanitizer.PlainText(v)), s.maxField)
}

func (s *contentService) cleanList(vs []string) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if clean := s.cleanField(v); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

type WebArticleRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.WebArticle) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.WebArticle, error)
	GetPublishedBySlug(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) (*types.WebArticle, error)
	ListPublished(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, limit, offset int) ([]*types.WebArticle, error)
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
	IncrementViewCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CountByScopeKey(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, domainID, languageID *uuid.UUID, slug string) (int64, error)
}

type webArticleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWebArticleRepo(db *gorm.DB, baseLog *logger.Logger) WebArticleRepo {
	return &webArticleRepo{db: db, log: baseLog.With("repo", "WebArticleRepo")}
}

func scopeKeyQuery(q *gorm.DB, tenantID uuid.UUID, domainID, languageID *uuid.UUID, slug string) *gorm.DB {
	q = q.Where("tenant_id = ? AND slug = ?", tenantID, slug)
	if domainID != nil {
		q = q.Where("domain_id = ?", *domainID)
	} else {
		q = q.Where("domain_id IS NULL")
	}
	if languageID != nil {
		q = q.Where("language_id = ?", *languageID)
	} else {
		q = q.Where("language_id IS NULL")
	}
	return q
}

// Upsert creates or updates on the (tenant, domain-or-null,
// language-or-null, slug) key. A hit keeps the existing row id and view
// count; the content columns and the base-article link move to the new
// submission.
func (r *webArticleRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.WebArticle) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := scopeKeyQuery(transaction.WithContext(ctx), row.TenantID, row.DomainID, row.LanguageID, row.Slug)
	return q.Assign(row).FirstOrCreate(row).Error
}

func (r *webArticleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.WebArticle, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.WebArticle
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *webArticleRepo) GetPublishedBySlug(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) (*types.WebArticle, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.WebArticle
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ? AND slug = ? AND status = ?", tenantID, slug, types.StatusPublished).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *webArticleRepo) ListPublished(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, limit, offset int) ([]*types.WebArticle, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []*types.WebArticle
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, types.StatusPublished).
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SetStatus updates the row status. The first transition to PUBLISHED
// stamps published_at; later republishes keep the original timestamp.
func (r *webArticleRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates := map[string]interface{}{"status": status}
	if status == types.StatusPublished {
		updates["published_at"] = gorm.Expr("COALESCE(published_at, ?)", time.Now().UTC())
	}
	return transaction.WithContext(ctx).
		Model(&types.WebArticle{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *webArticleRepo) IncrementViewCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.WebArticle{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *webArticleRepo) CountByScopeKey(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, domainID, languageID *uuid.UUID, slug string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	q := scopeKeyQuery(transaction.WithContext(ctx).Model(&types.WebArticle{}), tenantID, domainID, languageID, slug)
	err := q.Count(&n).Error
	return n, err
}

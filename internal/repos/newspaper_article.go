package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

type NewspaperArticleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.NewspaperArticle) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.NewspaperArticle, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.NewspaperArticle) error
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
	IncrementViewCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CountByAuthorBetween(ctx context.Context, tx *gorm.DB, authorID uuid.UUID, from, to time.Time) (int64, error)
	ListByTenant(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, status string, limit, offset int) ([]*types.NewspaperArticle, error)
}

type newspaperArticleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNewspaperArticleRepo(db *gorm.DB, baseLog *logger.Logger) NewspaperArticleRepo {
	return &newspaperArticleRepo{db: db, log: baseLog.With("repo", "NewspaperArticleRepo")}
}

func (r *newspaperArticleRepo) Create(ctx context.Context, tx *gorm.DB, row *types.NewspaperArticle) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *newspaperArticleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.NewspaperArticle, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.NewspaperArticle
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *newspaperArticleRepo) Update(ctx context.Context, tx *gorm.DB, row *types.NewspaperArticle) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *newspaperArticleRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.NewspaperArticle{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *newspaperArticleRepo) IncrementViewCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.NewspaperArticle{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

// CountByAuthorBetween counts print pieces attributed to one reporter
// inside [from, to), used by the daily cap check.
func (r *newspaperArticleRepo) CountByAuthorBetween(ctx context.Context, tx *gorm.DB, authorID uuid.UUID, from, to time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.NewspaperArticle{}).
		Joins("JOIN article ON article.id = newspaper_article.article_id").
		Where("article.author_id = ?", authorID).
		Where("newspaper_article.created_at >= ? AND newspaper_article.created_at < ?", from, to).
		Count(&n).Error
	return n, err
}

func (r *newspaperArticleRepo) ListByTenant(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, status string, limit, offset int) ([]*types.NewspaperArticle, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := transaction.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []*types.NewspaperArticle
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

type ArticleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Article) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Article, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.Article) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	ListByTenant(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, status string, limit, offset int) ([]*types.Article, error)
	FailStaleProcessing(ctx context.Context, tx *gorm.DB, olderThan time.Time, reason string) (int64, error)
}

type articleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArticleRepo(db *gorm.DB, baseLog *logger.Logger) ArticleRepo {
	return &articleRepo{db: db, log: baseLog.With("repo", "ArticleRepo")}
}

func (r *articleRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Article) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *articleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Article
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *articleRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Article) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *articleRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Article{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// FailStaleProcessing closes out runs orphaned by a crash mid-flight.
// FAILED is terminal; the submission must be re-sent as a new article.
func (r *articleRepo) FailStaleProcessing(ctx context.Context, tx *gorm.DB, olderThan time.Time, reason string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Article{}).
		Where("ai_status = ? AND ai_started_at IS NOT NULL AND ai_started_at < ?", types.AIStatusProcessing, olderThan).
		Updates(map[string]interface{}{
			"ai_status":          types.AIStatusFailed,
			"ai_error":           reason,
			"ai_finished_at":     time.Now().UTC(),
			"ai_queue_web":       false,
			"ai_queue_short":     false,
			"ai_queue_newspaper": false,
		})
	return res.RowsAffected, res.Error
}

func (r *articleRepo) ListByTenant(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, status string, limit, offset int) ([]*types.Article, error) {
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
	var rows []*types.Article
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

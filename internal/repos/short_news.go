package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

type ShortNewsRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.ShortNews) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ShortNews, error)
	ListPublished(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, limit, offset int) ([]*types.ShortNews, error)
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
}

type shortNewsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShortNewsRepo(db *gorm.DB, baseLog *logger.Logger) ShortNewsRepo {
	return &shortNewsRepo{db: db, log: baseLog.With("repo", "ShortNewsRepo")}
}

func (r *shortNewsRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ShortNews) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *shortNewsRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ShortNews, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.ShortNews
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *shortNewsRepo) ListPublished(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, limit, offset int) ([]*types.ShortNews, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []*types.ShortNews
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, types.StatusPublished).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *shortNewsRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ShortNews{}).
		Where("id = ?", id).
		Update("status", status).Error
}

package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

type PromptTemplateRepo interface {
	GetByKey(ctx context.Context, tx *gorm.DB, key string) (*types.PromptTemplate, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.PromptTemplate) error
	List(ctx context.Context, tx *gorm.DB) ([]*types.PromptTemplate, error)

	// TemplateBody satisfies prompts.Store.
	TemplateBody(ctx context.Context, key string) (string, error)
}

type promptTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromptTemplateRepo(db *gorm.DB, baseLog *logger.Logger) PromptTemplateRepo {
	return &promptTemplateRepo{db: db, log: baseLog.With("repo", "PromptTemplateRepo")}
}

func (r *promptTemplateRepo) GetByKey(ctx context.Context, tx *gorm.DB, key string) (*types.PromptTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.PromptTemplate
	if err := transaction.WithContext(ctx).Where("key = ?", key).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *promptTemplateRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.PromptTemplate) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("key = ?", row.Key).
		Assign(row).
		FirstOrCreate(row).Error
}

func (r *promptTemplateRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.PromptTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.PromptTemplate
	if err := transaction.WithContext(ctx).Order("key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *promptTemplateRepo) TemplateBody(ctx context.Context, key string) (string, error) {
	row, err := r.GetByKey(ctx, nil, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return row.Body, nil
}

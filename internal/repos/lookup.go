package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

type LanguageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Language) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Language, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Language, error)
}

type languageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLanguageRepo(db *gorm.DB, baseLog *logger.Logger) LanguageRepo {
	return &languageRepo{db: db, log: baseLog.With("repo", "LanguageRepo")}
}

func (r *languageRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Language) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *languageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Language, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Language
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *languageRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Language, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Language
	if err := transaction.WithContext(ctx).Where("code = ?", code).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

type CategoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Category) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Category, error)
	ListByTenant(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) ([]*types.Category, error)
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Category) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *categoryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Category
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *categoryRepo) ListByTenant(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) ([]*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.Category
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ? OR tenant_id IS NULL", tenantID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type StafferRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Staffer) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Staffer, error)
}

type stafferRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStafferRepo(db *gorm.DB, baseLog *logger.Logger) StafferRepo {
	return &stafferRepo{db: db, log: baseLog.With("repo", "StafferRepo")}
}

func (r *stafferRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Staffer) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *stafferRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Staffer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Staffer
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

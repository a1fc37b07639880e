package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

type TenantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Tenant) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tenant, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Tenant, error)
}

type tenantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTenantRepo(db *gorm.DB, baseLog *logger.Logger) TenantRepo {
	return &tenantRepo{db: db, log: baseLog.With("repo", "TenantRepo")}
}

func (r *tenantRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Tenant) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *tenantRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tenant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Tenant
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *tenantRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Tenant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Tenant
	if err := transaction.WithContext(ctx).Where("slug = ?", slug).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

type DomainRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Domain) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Domain, error)
	GetByHostname(ctx context.Context, tx *gorm.DB, hostname string) (*types.Domain, error)
}

type domainRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDomainRepo(db *gorm.DB, baseLog *logger.Logger) DomainRepo {
	return &domainRepo{db: db, log: baseLog.With("repo", "DomainRepo")}
}

func (r *domainRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Domain) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *domainRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Domain, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Domain
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *domainRepo) GetByHostname(ctx context.Context, tx *gorm.DB, hostname string) (*types.Domain, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Domain
	if err := transaction.WithContext(ctx).Where("hostname = ?", hostname).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

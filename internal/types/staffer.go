package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleSuperAdmin  = "SUPER_ADMIN"
	RoleTenantAdmin = "TENANT_ADMIN"
	RoleEditor      = "EDITOR"
	RoleReporter    = "REPORTER"
)

// IsEditorialRole reports whether role bypasses the reporter
// auto-publish gate.
func IsEditorialRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleTenantAdmin, RoleEditor:
		return true
	default:
		return false
	}
}

// Staffer is the newsroom-side profile of a caller: reporters, desk
// editors, tenant admins. Readers are not staffers.
type Staffer struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    *uuid.UUID     `gorm:"type:uuid;index" json:"tenant_id,omitempty"` // nil only for SUPER_ADMIN
	Tenant      *Tenant        `gorm:"constraint:OnDelete:SET NULL;foreignKey:TenantID;references:ID" json:"tenant,omitempty"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Role        string         `gorm:"column:role;not null;index" json:"role"` // SUPER_ADMIN|TENANT_ADMIN|EDITOR|REPORTER
	AutoPublish bool           `gorm:"column:auto_publish;not null;default:false" json:"auto_publish"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Staffer) TableName() string { return "staffer" }

func (s *Staffer) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

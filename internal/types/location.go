package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Location hierarchy for print datelines: state > district > mandal > village.
// Rows are created lazily the first time a dateline references them.

type State struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (State) TableName() string { return "state" }

func (s *State) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type District struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StateID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_district_state_name,unique" json:"state_id"`
	Name      string         `gorm:"column:name;not null;index:idx_district_state_name,unique" json:"name"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (District) TableName() string { return "district" }

func (d *District) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type Mandal struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DistrictID uuid.UUID      `gorm:"type:uuid;not null;index:idx_mandal_district_name,unique" json:"district_id"`
	Name       string         `gorm:"column:name;not null;index:idx_mandal_district_name,unique" json:"name"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Mandal) TableName() string { return "mandal" }

func (m *Mandal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type Village struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	MandalID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_village_mandal_name,unique" json:"mandal_id"`
	Name      string         `gorm:"column:name;not null;index:idx_village_mandal_name,unique" json:"name"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Village) TableName() string { return "village" }

func (v *Village) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromptTemplate struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Key       string         `gorm:"column:key;not null;uniqueIndex" json:"key"`
	Body      string         `gorm:"column:body;type:text;not null" json:"body"`
	UpdatedBy *uuid.UUID     `gorm:"type:uuid" json:"updated_by,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PromptTemplate) TableName() string { return "prompt_template" }

func (p *PromptTemplate) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShortNews struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ArticleID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"article_id"`
	Article    *Article       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ArticleID;references:ID" json:"article,omitempty"`
	TenantID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	LanguageID *uuid.UUID     `gorm:"type:uuid;index" json:"language_id,omitempty"`
	CategoryID *uuid.UUID     `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Headline   string         `gorm:"column:headline;not null" json:"headline"` // h1
	Subtitle   string         `gorm:"column:subtitle" json:"subtitle"`          // h2
	Content    string         `gorm:"column:content;type:text;not null" json:"content"`
	Status     string         `gorm:"column:status;not null;index" json:"status"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ShortNews) TableName() string { return "short_news" }

func (s *ShortNews) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

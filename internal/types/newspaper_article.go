package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NewspaperArticle struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ArticleID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"article_id"`
	Article    *Article       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ArticleID;references:ID" json:"article,omitempty"`
	TenantID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	LanguageID *uuid.UUID     `gorm:"type:uuid;index" json:"language_id,omitempty"`
	Headline   string         `gorm:"column:headline;not null" json:"headline"`
	Subtitle   string         `gorm:"column:subtitle" json:"subtitle"`
	Dateline   string         `gorm:"column:dateline" json:"dateline"`
	Body       datatypes.JSON `gorm:"type:jsonb;column:body" json:"body"`             // paragraphs, []string
	Highlights datatypes.JSON `gorm:"type:jsonb;column:highlights" json:"highlights"` // []string
	StateID    *uuid.UUID     `gorm:"type:uuid;index" json:"state_id,omitempty"`
	DistrictID *uuid.UUID     `gorm:"type:uuid;index" json:"district_id,omitempty"`
	MandalID   *uuid.UUID     `gorm:"type:uuid" json:"mandal_id,omitempty"`
	VillageID  *uuid.UUID     `gorm:"type:uuid" json:"village_id,omitempty"`
	Status     string         `gorm:"column:status;not null;index" json:"status"`
	ViewCount  int64          `gorm:"column:view_count;not null;default:0" json:"view_count"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (NewspaperArticle) TableName() string { return "newspaper_article" }

func (n *NewspaperArticle) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SEOBlock is the seo jsonb column of a web article.
type SEOBlock struct {
	Slug            string   `json:"slug"`
	MetaTitle       string   `json:"metaTitle,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

// WebArticle is upserted, not created: the logical key is
// (tenant, domain-or-null, language-or-null, slug), so resubmitting the
// same story updates in place instead of duplicating.
type WebArticle struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ArticleID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"article_id"`
	Article     *Article       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ArticleID;references:ID" json:"article,omitempty"`
	TenantID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_web_slug_scope" json:"tenant_id"`
	DomainID    *uuid.UUID     `gorm:"type:uuid;index:idx_web_slug_scope" json:"domain_id,omitempty"`
	LanguageID  *uuid.UUID     `gorm:"type:uuid;index:idx_web_slug_scope" json:"language_id,omitempty"`
	Slug        string         `gorm:"column:slug;not null;index:idx_web_slug_scope" json:"slug"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	SEO         datatypes.JSON `gorm:"type:jsonb;column:seo" json:"seo"`
	ContentHTML string         `gorm:"column:content_html;type:text" json:"content_html"`
	Blocks      datatypes.JSON `gorm:"type:jsonb;column:blocks" json:"blocks"` // parallel block-structured content
	PlainText   string         `gorm:"column:plain_text;type:text" json:"plain_text"`
	JSONLD      datatypes.JSON `gorm:"type:jsonb;column:json_ld" json:"json_ld"`
	PublishedAt *time.Time     `gorm:"column:published_at;index" json:"published_at,omitempty"`
	Status      string         `gorm:"column:status;not null;index" json:"status"`
	ViewCount   int64          `gorm:"column:view_count;not null;default:0" json:"view_count"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (WebArticle) TableName() string { return "web_article" }

func (w *WebArticle) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

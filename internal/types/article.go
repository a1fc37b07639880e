package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusPublished = "PUBLISHED"
	StatusRejected  = "REJECTED"
)

const (
	AIStatusPending    = "PENDING"
	AIStatusProcessing = "PROCESSING"
	AIStatusDone       = "DONE"
	AIStatusFailed     = "FAILED"
)

const (
	AIModeFull    = "FULL"
	AIModeLimited = "LIMITED"
)

const (
	SkipReasonAIDisabled = "AI_DISABLED_FOR_TENANT"
	SkipReasonNoProvider = "NO_PROVIDER_CONFIGURED"
)

// ArticleImage is one entry of the images jsonb column.
type ArticleImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
	Alt     string `json:"alt,omitempty"`
}

// Article is the base record: the reporter's raw submission plus the
// enrichment bookkeeping folded onto it. The raw fields never change
// after creation; only status, queue flags, diagnostics, and the output
// links do.
type Article struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant     *Tenant        `gorm:"constraint:OnDelete:CASCADE;foreignKey:TenantID;references:ID" json:"tenant,omitempty"`
	DomainID   *uuid.UUID     `gorm:"type:uuid;index" json:"domain_id,omitempty"`
	Domain     *Domain        `gorm:"constraint:OnDelete:SET NULL;foreignKey:DomainID;references:ID" json:"domain,omitempty"`
	LanguageID *uuid.UUID     `gorm:"type:uuid;index" json:"language_id,omitempty"`
	Language   *Language      `gorm:"constraint:OnDelete:SET NULL;foreignKey:LanguageID;references:ID" json:"language,omitempty"`
	AuthorID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Author     *Staffer       `gorm:"constraint:OnDelete:CASCADE;foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	Title      string         `gorm:"column:title;not null" json:"title"`
	RawBody    string         `gorm:"column:raw_body;type:text;not null" json:"raw_body"`
	RawPayload datatypes.JSON `gorm:"type:jsonb;column:raw_payload" json:"raw_payload"` // normalized submission, provenance for re-runs
	Categories datatypes.JSON `gorm:"type:jsonb;column:categories" json:"categories"`   // uuid strings
	Images     datatypes.JSON `gorm:"type:jsonb;column:images" json:"images"`           // []ArticleImage

	PublishReady bool   `gorm:"column:publish_ready;not null;default:false" json:"publish_ready"`
	Status       string `gorm:"column:status;not null;index" json:"status"` // PENDING|PUBLISHED|REJECTED

	AIStatus         string     `gorm:"column:ai_status;not null;index" json:"ai_status"` // PENDING|PROCESSING|DONE|FAILED
	AIMode           string     `gorm:"column:ai_mode;not null" json:"ai_mode"`           // FULL|LIMITED
	AIQueueWeb       bool       `gorm:"column:ai_queue_web;not null;default:false" json:"ai_queue_web"`
	AIQueueShort     bool       `gorm:"column:ai_queue_short;not null;default:false" json:"ai_queue_short"`
	AIQueueNewspaper bool       `gorm:"column:ai_queue_newspaper;not null;default:false" json:"ai_queue_newspaper"`
	AIStartedAt      *time.Time `gorm:"column:ai_started_at" json:"ai_started_at,omitempty"`
	AIFinishedAt     *time.Time `gorm:"column:ai_finished_at" json:"ai_finished_at,omitempty"`
	AIError          string     `gorm:"column:ai_error" json:"ai_error"`
	AISkipReason     string     `gorm:"column:ai_skip_reason" json:"ai_skip_reason"`
	AIRawResponse    string     `gorm:"column:ai_raw_response;type:text" json:"ai_raw_response,omitempty"` // diagnostic, set when extraction failed

	WebArticleID       *uuid.UUID `gorm:"type:uuid" json:"web_article_id,omitempty"`
	ShortNewsID        *uuid.UUID `gorm:"type:uuid" json:"short_news_id,omitempty"`
	NewspaperArticleID *uuid.UUID `gorm:"type:uuid" json:"newspaper_article_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Article) TableName() string { return "article" }

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArticleReadProgress accumulates one reader's engagement with one
// article. TotalTimeMs only grows, MaxScrollPercent is a running max,
// and Completed is a one-way latch.
type ArticleReadProgress struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_article,unique" json:"user_id"`
	ArticleID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_article,unique" json:"article_id"`
	TotalTimeMs      int64          `gorm:"column:total_time_ms;not null;default:0" json:"total_time_ms"`
	MaxScrollPercent int            `gorm:"column:max_scroll_percent;not null;default:0" json:"max_scroll_percent"`
	Completed        bool           `gorm:"column:completed;not null;default:false" json:"completed"`
	SessionsCount    int            `gorm:"column:sessions_count;not null;default:0" json:"sessions_count"`
	LastEventAt      *time.Time     `gorm:"column:last_event_at" json:"last_event_at,omitempty"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ArticleReadProgress) TableName() string { return "article_read_progress" }

func (p *ArticleReadProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ShortNewsReadProgress mirrors ArticleReadProgress for the short-news
// feed; short-news IDs sent to the article endpoint land here via the
// compatibility shim.
type ShortNewsReadProgress struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_shortnews,unique" json:"user_id"`
	ShortNewsID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_shortnews,unique" json:"short_news_id"`
	TotalTimeMs      int64          `gorm:"column:total_time_ms;not null;default:0" json:"total_time_ms"`
	MaxScrollPercent int            `gorm:"column:max_scroll_percent;not null;default:0" json:"max_scroll_percent"`
	Completed        bool           `gorm:"column:completed;not null;default:false" json:"completed"`
	SessionsCount    int            `gorm:"column:sessions_count;not null;default:0" json:"sessions_count"`
	LastEventAt      *time.Time     `gorm:"column:last_event_at" json:"last_event_at,omitempty"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ShortNewsReadProgress) TableName() string { return "short_news_read_progress" }

func (p *ShortNewsReadProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/apierr"
	"github.com/vaartalab/newsroom-backend/internal/repos"
	"github.com/vaartalab/newsroom-backend/internal/requestdata"
)

// QueueStatus mirrors the per-kind outstanding-work flags.
type QueueStatus struct {
	Web       bool `json:"web"`
	Short     bool `json:"short"`
	Newspaper bool `json:"newspaper"`
}

type OutputLinks struct {
	WebArticleID       *uuid.UUID `json:"webArticleId,omitempty"`
	ShortNewsID        *uuid.UUID `json:"shortNewsId,omitempty"`
	NewspaperArticleID *uuid.UUID `json:"newspaperArticleId,omitempty"`
}

type AIStatusView struct {
	AIStatus     string      `json:"aiStatus"`
	AIMode       string      `json:"aiMode"`
	AIStartedAt  *time.Time  `json:"aiStartedAt,omitempty"`
	AIFinishedAt *time.Time  `json:"aiFinishedAt,omitempty"`
	AIError      string      `json:"aiError,omitempty"`
	AISkipReason string      `json:"aiSkipReason,omitempty"`
	Queue        QueueStatus `json:"queue"`
	Outputs      OutputLinks `json:"outputs"`
}

// CompositionStatus is the polling projection for one submission: the
// editorial status plus everything the enrichment run recorded.
type CompositionStatus struct {
	ArticleID uuid.UUID    `json:"articleId"`
	TenantID  uuid.UUID    `json:"tenantId"`
	Status    string       `json:"status"`
	AI        AIStatusView `json:"ai"`
}

type CompositionStatusService interface {
	GetStatus(ctx context.Context, rd requestdata.RequestData, articleID uuid.UUID) (*CompositionStatus, error)
}

type compositionStatusService struct {
	db          *gorm.DB
	articleRepo repos.ArticleRepo
}

func NewCompositionStatusService(db *gorm.DB, articleRepo repos.ArticleRepo) CompositionStatusService {
	return &compositionStatusService{db: db, articleRepo: articleRepo}
}

func (s *compositionStatusService) GetStatus(ctx context.Context, rd requestdata.RequestData, articleID uuid.UUID) (*CompositionStatus, error) {
	if articleID == uuid.Nil {
		return nil, apierr.Validation("missing_article_id", errors.New("article id required"))
	}

	art, err := s.articleRepo.GetByID(ctx, nil, articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("article_not_found")
		}
		return nil, apierr.Persistence(err)
	}
	// Out-of-scope reads as absent, same as a true miss.
	if !rd.SameTenant(art.TenantID) {
		return nil, apierr.NotFound("article_not_found")
	}

	return &CompositionStatus{
		ArticleID: art.ID,
		TenantID:  art.TenantID,
		Status:    art.Status,
		AI: AIStatusView{
			AIStatus:     art.AIStatus,
			AIMode:       art.AIMode,
			AIStartedAt:  art.AIStartedAt,
			AIFinishedAt: art.AIFinishedAt,
			AIError:      art.AIError,
			AISkipReason: art.AISkipReason,
			Queue: QueueStatus{
				Web:       art.AIQueueWeb,
				Short:     art.AIQueueShort,
				Newspaper: art.AIQueueNewspaper,
			},
			Outputs: OutputLinks{
				WebArticleID:       art.WebArticleID,
				ShortNewsID:        art.ShortNewsID,
				NewspaperArticleID: art.NewspaperArticleID,
			},
		},
	}, nil
}

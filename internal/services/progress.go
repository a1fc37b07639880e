package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/config"
	"github.com/vaartalab/newsroom-backend/internal/platform/apierr"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/repos"
	"github.com/vaartalab/newsroom-backend/internal/requestdata"
)

// maxProgressDeltaMs caps a single report at five minutes of reading
// time; clients batching longer sessions must split them.
const maxProgressDeltaMs = 5 * 60 * 1000

// ProgressInput is one reader report. ArticleID is accepted as a string
// so a malformed id degrades to a missing entry instead of failing the
// whole batch.
type ProgressInput struct {
	ArticleID        string `json:"articleId"`
	DeltaTimeMs      int64  `json:"deltaTimeMs"`
	MaxScrollPercent int    `json:"maxScrollPercent"`
	Ended            bool   `json:"ended"`
}

type ProgressItemResult struct {
	ArticleID        uuid.UUID `json:"articleId"`
	Kind             string    `json:"kind"` // article | shortNews
	TotalTimeMs      int64     `json:"totalTimeMs"`
	MaxScrollPercent int       `json:"maxScrollPercent"`
	Completed        bool      `json:"completed"`
	SessionsCount    int       `json:"sessionsCount"`
}

// ProgressReport is a partial-success batch result: items that resolved
// to a known record are folded and returned, the rest are listed under
// Missing exactly as submitted.
type ProgressReport struct {
	Updated []ProgressItemResult `json:"updated"`
	Missing []string             `json:"missing"`
}

type ReadProgressService interface {
	Record(ctx context.Context, rd requestdata.RequestData, items []ProgressInput) (*ProgressReport, error)
}

type readProgressService struct {
	db  *gorm.DB
	log *logger.Logger
	cfg config.ProgressConfig

	articleRepo     repos.ArticleRepo
	shortRepo       repos.ShortNewsRepo
	articleProgress repos.ArticleReadProgressRepo
	shortProgress   repos.ShortNewsReadProgressRepo
}

func NewReadProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg config.ProgressConfig,
	articleRepo repos.ArticleRepo,
	shortRepo repos.ShortNewsRepo,
	articleProgress repos.ArticleReadProgressRepo,
	shortProgress repos.ShortNewsReadProgressRepo,
) ReadProgressService {
	return &readProgressService{
		db:              db,
		log:             baseLog.With("service", "ReadProgressService"),
		cfg:             cfg,
		articleRepo:     articleRepo,
		shortRepo:       shortRepo,
		articleProgress: articleProgress,
		shortProgress:   shortProgress,
	}
}

func (s *readProgressService) Record(ctx context.Context, rd requestdata.RequestData, items []ProgressInput) (*ProgressReport, error) {
	if rd.UserID == uuid.Nil {
		return nil, apierr.Validation("missing_user", errors.New("authenticated user required"))
	}
	if len(items) == 0 {
		return nil, apierr.Validation("empty_batch", errors.New("at least one progress item required"))
	}

	report := &ProgressReport{}
	for _, item := range items {
		id, err := uuid.Parse(item.ArticleID)
		if err != nil || id == uuid.Nil {
			report.Missing = append(report.Missing, item.ArticleID)
			continue
		}

		delta := repos.ProgressDelta{
			DeltaTimeMs:     clampInt64(item.DeltaTimeMs, 0, maxProgressDeltaMs),
			ScrollPercent:   clampInt(item.MaxScrollPercent, 0, 100),
			Ended:           item.Ended,
			TimeThresholdMs: s.cfg.CompletionTimeMs,
			ScrollThreshold: s.cfg.CompletionScrollPct,
		}

		if _, err := s.articleRepo.GetByID(ctx, nil, id); err == nil {
			row, applyErr := s.articleProgress.ApplyDelta(ctx, nil, rd.UserID, id, delta)
			if applyErr != nil {
				return nil, apierr.Persistence(applyErr)
			}
			report.Updated = append(report.Updated, ProgressItemResult{
				ArticleID:        id,
				Kind:             "article",
				TotalTimeMs:      row.TotalTimeMs,
				MaxScrollPercent: row.MaxScrollPercent,
				Completed:        row.Completed,
				SessionsCount:    row.SessionsCount,
			})
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Persistence(err)
		}

		// Compatibility shim: feed clients send short-news ids through
		// the same endpoint; route them to the short-news store instead
		// of bouncing the item.
		if _, err := s.shortRepo.GetByID(ctx, nil, id); err == nil {
			row, applyErr := s.shortProgress.ApplyDelta(ctx, nil, rd.UserID, id, delta)
			if applyErr != nil {
				return nil, apierr.Persistence(applyErr)
			}
			report.Updated = append(report.Updated, ProgressItemResult{
				ArticleID:        id,
				Kind:             "shortNews",
				TotalTimeMs:      row.TotalTimeMs,
				MaxScrollPercent: row.MaxScrollPercent,
				Completed:        row.Completed,
				SessionsCount:    row.SessionsCount,
			})
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Persistence(err)
		}

		report.Missing = append(report.Missing, item.ArticleID)
	}

	return report, nil
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

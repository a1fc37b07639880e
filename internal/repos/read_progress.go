package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/db"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

// ProgressDelta is one clamped progress report plus the completion
// thresholds in force when it was recorded.
type ProgressDelta struct {
	DeltaTimeMs     int64
	ScrollPercent   int
	Ended           bool
	TimeThresholdMs int64
	ScrollThreshold int
}

type ArticleReadProgressRepo interface {
	ApplyDelta(ctx context.Context, tx *gorm.DB, userID, articleID uuid.UUID, d ProgressDelta) (*types.ArticleReadProgress, error)
	Get(ctx context.Context, tx *gorm.DB, userID, articleID uuid.UUID) (*types.ArticleReadProgress, error)
}

type articleReadProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArticleReadProgressRepo(gdb *gorm.DB, baseLog *logger.Logger) ArticleReadProgressRepo {
	return &articleReadProgressRepo{db: gdb, log: baseLog.With("repo", "ArticleReadProgressRepo")}
}

// ApplyDelta folds one report into the accumulator as a single UPDATE
// so two concurrent reports both land: time is added, scroll is a max,
// completed latches, and the session counter moves only on ended. The
// expressions read the pre-update row, so the threshold test uses the
// post-fold values computed in SQL, not in Go.
func (r *articleReadProgressRepo) ApplyDelta(ctx context.Context, tx *gorm.DB, userID, articleID uuid.UUID, d ProgressDelta) (*types.ArticleReadProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	updated, err := applyProgressUpdate(transaction.WithContext(ctx).Model(&types.ArticleReadProgress{}).
		Where("user_id = ? AND article_id = ?", userID, articleID), d)
	if err != nil {
		return nil, err
	}
	if !updated {
		row := seedArticleProgress(userID, articleID, d)
		if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
			if !db.IsUniqueViolation(err) {
				return nil, err
			}
			// Lost the insert race; the other writer's row exists now.
			if _, err := applyProgressUpdate(transaction.WithContext(ctx).Model(&types.ArticleReadProgress{}).
				Where("user_id = ? AND article_id = ?", userID, articleID), d); err != nil {
				return nil, err
			}
		}
	}
	return r.Get(ctx, tx, userID, articleID)
}

func (r *articleReadProgressRepo) Get(ctx context.Context, tx *gorm.DB, userID, articleID uuid.UUID) (*types.ArticleReadProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.ArticleReadProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

type ShortNewsReadProgressRepo interface {
	ApplyDelta(ctx context.Context, tx *gorm.DB, userID, shortNewsID uuid.UUID, d ProgressDelta) (*types.ShortNewsReadProgress, error)
	Get(ctx context.Context, tx *gorm.DB, userID, shortNewsID uuid.UUID) (*types.ShortNewsReadProgress, error)
}

type shortNewsReadProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShortNewsReadProgressRepo(gdb *gorm.DB, baseLog *logger.Logger) ShortNewsReadProgressRepo {
	return &shortNewsReadProgressRepo{db: gdb, log: baseLog.With("repo", "ShortNewsReadProgressRepo")}
}

func (r *shortNewsReadProgressRepo) ApplyDelta(ctx context.Context, tx *gorm.DB, userID, shortNewsID uuid.UUID, d ProgressDelta) (*types.ShortNewsReadProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	updated, err := applyProgressUpdate(transaction.WithContext(ctx).Model(&types.ShortNewsReadProgress{}).
		Where("user_id = ? AND short_news_id = ?", userID, shortNewsID), d)
	if err != nil {
		return nil, err
	}
	if !updated {
		now := time.Now().UTC()
		row := &types.ShortNewsReadProgress{
			UserID:           userID,
			ShortNewsID:      shortNewsID,
			TotalTimeMs:      d.DeltaTimeMs,
			MaxScrollPercent: d.ScrollPercent,
			Completed:        meetsThreshold(d.DeltaTimeMs, d.ScrollPercent, d),
			SessionsCount:    sessionIncrement(d),
			LastEventAt:      &now,
		}
		if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
			if !db.IsUniqueViolation(err) {
				return nil, err
			}
			if _, err := applyProgressUpdate(transaction.WithContext(ctx).Model(&types.ShortNewsReadProgress{}).
				Where("user_id = ? AND short_news_id = ?", userID, shortNewsID), d); err != nil {
				return nil, err
			}
		}
	}
	return r.Get(ctx, tx, userID, shortNewsID)
}

func (r *shortNewsReadProgressRepo) Get(ctx context.Context, tx *gorm.DB, userID, shortNewsID uuid.UUID) (*types.ShortNewsReadProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.ShortNewsReadProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND short_news_id = ?", userID, shortNewsID).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// applyProgressUpdate runs the shared atomic fold; both progress tables
// carry identical accumulator columns. CASE WHEN stands in for
// GREATEST, which sqlite does not have.
func applyProgressUpdate(q *gorm.DB, d ProgressDelta) (bool, error) {
	res := q.Updates(map[string]interface{}{
		"total_time_ms":      gorm.Expr("total_time_ms + ?", d.DeltaTimeMs),
		"max_scroll_percent": gorm.Expr("CASE WHEN max_scroll_percent > ? THEN max_scroll_percent ELSE ? END", d.ScrollPercent, d.ScrollPercent),
		"completed": gorm.Expr(
			"completed OR (total_time_ms + ? >= ? AND (CASE WHEN max_scroll_percent > ? THEN max_scroll_percent ELSE ? END) >= ?)",
			d.DeltaTimeMs, d.TimeThresholdMs, d.ScrollPercent, d.ScrollPercent, d.ScrollThreshold,
		),
		"sessions_count": gorm.Expr("sessions_count + ?", sessionIncrement(d)),
		"last_event_at":  time.Now().UTC(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func seedArticleProgress(userID, articleID uuid.UUID, d ProgressDelta) *types.ArticleReadProgress {
	now := time.Now().UTC()
	return &types.ArticleReadProgress{
		UserID:           userID,
		ArticleID:        articleID,
		TotalTimeMs:      d.DeltaTimeMs,
		MaxScrollPercent: d.ScrollPercent,
		Completed:        meetsThreshold(d.DeltaTimeMs, d.ScrollPercent, d),
		SessionsCount:    sessionIncrement(d),
		LastEventAt:      &now,
	}
}

func meetsThreshold(totalMs int64, scroll int, d ProgressDelta) bool {
	return totalMs >= d.TimeThresholdMs && scroll >= d.ScrollThreshold
}

func sessionIncrement(d ProgressDelta) int {
	if d.Ended {
		return 1
	}
	return 0
}

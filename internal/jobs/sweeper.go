package jobs

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/repos"
)

// staleReason is recorded on runs the sweep closes out.
const staleReason = "PROCESSING_TIMEOUT"

// Sweeper closes out enrichment runs orphaned by a crash or redeploy. A run
// still in PROCESSING past the cutoff has lost its goroutine, so the sweep
// marks it FAILED; FAILED is terminal and the desk re-submits the piece.
type Sweeper struct {
	db       *gorm.DB
	log      *logger.Logger
	articles repos.ArticleRepo
	interval time.Duration
	cutoff   time.Duration
}

func NewSweeper(db *gorm.DB, baseLog *logger.Logger, articles repos.ArticleRepo) *Sweeper {
	return &Sweeper{
		db:       db,
		log:      baseLog.With("component", "Sweeper"),
		articles: articles,
		interval: 1 * time.Minute,
		cutoff:   10 * time.Minute,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.articles.FailStaleProcessing(ctx, s.db, time.Now().UTC().Add(-s.cutoff), staleReason)
	if err != nil {
		s.log.Warn("Stale-run sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("Closed out stale enrichment runs", "count", n)
	}
}

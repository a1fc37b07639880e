package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/db"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/repos"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

type sweeperTestEnv struct {
	t       *testing.T
	gdb     *gorm.DB
	sweeper *Sweeper
	tenant  *types.Tenant
	author  *types.Staffer
}

func newSweeperTestEnv(t *testing.T) *sweeperTestEnv {
	t.Helper()
	log := testLogger(t)

	store, err := db.NewSQLiteMemoryService(log)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	gdb := store.DB()

	tenant := &types.Tenant{ID: uuid.New(), Name: "Vaarta Daily", Slug: "vaarta-daily"}
	if err := gdb.Create(tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	author := &types.Staffer{ID: uuid.New(), Name: "Reporter", Role: types.RoleReporter, TenantID: &tenant.ID}
	if err := gdb.Create(author).Error; err != nil {
		t.Fatalf("seed staffer: %v", err)
	}

	return &sweeperTestEnv{
		t:       t,
		gdb:     gdb,
		sweeper: NewSweeper(gdb, log, repos.NewArticleRepo(gdb, log)),
		tenant:  tenant,
		author:  author,
	}
}

func (e *sweeperTestEnv) addRun(aiStatus string, startedAgo time.Duration) *types.Article {
	e.t.Helper()
	art := &types.Article{
		ID:           uuid.New(),
		TenantID:     e.tenant.ID,
		AuthorID:     e.author.ID,
		Title:        "Piece " + uuid.NewString()[:8],
		RawBody:      "body",
		Status:       types.StatusPending,
		AIStatus:     aiStatus,
		AIMode:       types.AIModeFull,
		AIQueueWeb:   true,
		AIQueueShort: true,
	}
	if startedAgo > 0 {
		at := time.Now().UTC().Add(-startedAgo)
		art.AIStartedAt = &at
	}
	if err := e.gdb.Create(art).Error; err != nil {
		e.t.Fatalf("seed article: %v", err)
	}
	return art
}

func (e *sweeperTestEnv) reload(id uuid.UUID) *types.Article {
	e.t.Helper()
	var art types.Article
	if err := e.gdb.First(&art, "id = ?", id).Error; err != nil {
		e.t.Fatalf("reload article: %v", err)
	}
	return &art
}

func TestSweepFailsOnlyStaleRuns(t *testing.T) {
	e := newSweeperTestEnv(t)

	stale := e.addRun(types.AIStatusProcessing, 30*time.Minute)
	fresh := e.addRun(types.AIStatusProcessing, 1*time.Minute)
	done := e.addRun(types.AIStatusDone, 30*time.Minute)
	// No started-at means the run never actually dispatched; the reaper
	// leaves it for the submit path to resolve.
	never := e.addRun(types.AIStatusProcessing, 0)

	e.sweeper.sweep(context.Background())

	got := e.reload(stale.ID)
	if got.AIStatus != types.AIStatusFailed {
		t.Fatalf("stale run ai_status = %q, want FAILED", got.AIStatus)
	}
	if got.AIError != staleReason {
		t.Fatalf("stale run ai_error = %q, want %q", got.AIError, staleReason)
	}
	if got.AIFinishedAt == nil {
		t.Fatal("stale run ai_finished_at not stamped")
	}
	if got.AIQueueWeb || got.AIQueueShort || got.AIQueueNewspaper {
		t.Fatalf("stale run queue flags not cleared: %+v", got)
	}

	for name, art := range map[string]*types.Article{"fresh": fresh, "done": done, "never_started": never} {
		got := e.reload(art.ID)
		if got.AIStatus != art.AIStatus {
			t.Fatalf("%s run ai_status changed to %q", name, got.AIStatus)
		}
		if got.AIError != "" {
			t.Fatalf("%s run picked up ai_error %q", name, got.AIError)
		}
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	e := newSweeperTestEnv(t)
	stale := e.addRun(types.AIStatusProcessing, 30*time.Minute)

	e.sweeper.sweep(context.Background())
	e.sweeper.sweep(context.Background())

	got := e.reload(stale.ID)
	if got.AIStatus != types.AIStatusFailed || got.AIError != staleReason {
		t.Fatalf("run after double sweep = %q/%q", got.AIStatus, got.AIError)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e := newSweeperTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doneCh := make(chan error, 1)
	go func() { doneCh <- e.sweeper.Run(ctx) }()

	select {
	case err := <-doneCh:
		if err != nil {
			t.Fatalf("Run returned %v on cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

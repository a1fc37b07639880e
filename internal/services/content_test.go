package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vaartalab/newsroom-backend/internal/platform/apierr"
	"github.com/vaartalab/newsroom-backend/internal/repos"
	"github.com/vaartalab/newsroom-backend/internal/requestdata"
	"github.com/vaartalab/newsroom-backend/internal/sanitize"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

type contentTestEnv struct {
	*compTestEnv
	svc     ContentService
	article *types.Article
	paper   *types.NewspaperArticle
	web     *types.WebArticle
	short   *types.ShortNews
}

func newContentTestEnv(t *testing.T) *contentTestEnv {
	t.Helper()
	base := newCompTestEnv(t, nil)

	art := &types.Article{
		ID:       uuid.New(),
		TenantID: base.tenant.ID,
		AuthorID: base.reporter.ID,
		Title:    "Market road repairs",
		RawBody:  "body",
		Status:   types.StatusPublished,
		AIStatus: types.AIStatusDone,
		AIMode:   types.AIModeFull,
	}
	if err := base.gdb.Create(art).Error; err != nil {
		t.Fatalf("seed article: %v", err)
	}

	body, _ := json.Marshal([]string{"First paragraph.", "Second paragraph."})
	paper := &types.NewspaperArticle{
		ID:        uuid.New(),
		ArticleID: art.ID,
		TenantID:  base.tenant.ID,
		Headline:  "Market road repairs begin",
		Subtitle:  "Crews on site from Monday",
		Dateline:  "Warangal, Aug 22",
		Body:      body,
		Status:    types.StatusPending,
	}
	if err := base.gdb.Create(paper).Error; err != nil {
		t.Fatalf("seed newspaper article: %v", err)
	}

	publishedAt := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	web := &types.WebArticle{
		ID:          uuid.New(),
		ArticleID:   art.ID,
		TenantID:    base.tenant.ID,
		Slug:        "market-road-repairs",
		Title:       "Market road repairs begin",
		ContentHTML: "<p>Crews on site.</p>",
		PlainText:   "Crews on site.",
		PublishedAt: &publishedAt,
		Status:      types.StatusPublished,
	}
	if err := base.gdb.Create(web).Error; err != nil {
		t.Fatalf("seed web article: %v", err)
	}

	short := &types.ShortNews{
		ID:        uuid.New(),
		ArticleID: art.ID,
		TenantID:  base.tenant.ID,
		Headline:  "Road repairs begin",
		Content:   "Crews started repairing Market Road on Monday.",
		Status:    types.StatusPublished,
	}
	if err := base.gdb.Create(short).Error; err != nil {
		t.Fatalf("seed short news: %v", err)
	}

	svc := NewContentService(
		base.gdb, base.log, sanitize.New(), 4000,
		repos.NewArticleRepo(base.gdb, base.log),
		repos.NewNewspaperArticleRepo(base.gdb, base.log),
		repos.NewWebArticleRepo(base.gdb, base.log),
		repos.NewShortNewsRepo(base.gdb, base.log),
		repos.NewCategoryRepo(base.gdb, base.log),
	)
	return &contentTestEnv{
		compTestEnv: base,
		svc:         svc,
		article:     art,
		paper:       paper,
		web:         web,
		short:       short,
	}
}

func superAdminRD() requestdata.RequestData {
	return requestdata.RequestData{UserID: uuid.New(), Role: types.RoleSuperAdmin}
}

func TestListArticles(t *testing.T) {
	e := newContentTestEnv(t)
	ctx := context.Background()

	rows, err := e.svc.ListArticles(ctx, e.rd(e.reporter), uuid.Nil, "", 10, 0)
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != e.article.ID {
		t.Fatalf("rows = %v, want the seeded article", rows)
	}

	t.Run("status_filter", func(t *testing.T) {
		rows, err := e.svc.ListArticles(ctx, e.rd(e.reporter), uuid.Nil, types.StatusRejected, 10, 0)
		if err != nil {
			t.Fatalf("ListArticles: %v", err)
		}
		if len(rows) != 0 {
			t.Fatalf("rows = %d, want 0 rejected", len(rows))
		}
	})

	t.Run("invalid_status_filter", func(t *testing.T) {
		_, err := e.svc.ListArticles(ctx, e.rd(e.reporter), uuid.Nil, "LIVE", 10, 0)
		if got, ok := apierr.As(err); !ok || got.Code != "invalid_status" {
			t.Fatalf("err = %v, want invalid_status", err)
		}
	})

	t.Run("super_admin_needs_explicit_tenant", func(t *testing.T) {
		_, err := e.svc.ListArticles(ctx, superAdminRD(), uuid.Nil, "", 10, 0)
		if got, ok := apierr.As(err); !ok || got.Code != "tenant_scope_required" {
			t.Fatalf("err = %v, want tenant_scope_required", err)
		}
		rows, err := e.svc.ListArticles(ctx, superAdminRD(), e.tenant.ID, "", 10, 0)
		if err != nil {
			t.Fatalf("ListArticles with tenant: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("rows = %d, want 1", len(rows))
		}
	})

	t.Run("other_tenant_sees_nothing", func(t *testing.T) {
		other := e.addTenant("Other Paper", false)
		outsider := e.addStaffer(other, types.RoleReporter, false)
		rows, err := e.svc.ListArticles(ctx, e.rd(outsider), uuid.Nil, "", 10, 0)
		if err != nil {
			t.Fatalf("ListArticles: %v", err)
		}
		if len(rows) != 0 {
			t.Fatalf("rows = %d, want 0 across tenants", len(rows))
		}
	})
}

func TestListCategories(t *testing.T) {
	e := newContentTestEnv(t)
	ctx := context.Background()

	shared := &types.Category{ID: uuid.New(), Name: "Politics", Slug: "politics"}
	own := &types.Category{ID: uuid.New(), TenantID: &e.tenant.ID, Name: "Local Crime", Slug: "local-crime"}
	other := e.addTenant("Other Paper", false)
	foreign := &types.Category{ID: uuid.New(), TenantID: &other.ID, Name: "Foreign Desk", Slug: "foreign-desk"}
	for _, row := range []*types.Category{shared, own, foreign} {
		if err := e.gdb.Create(row).Error; err != nil {
			t.Fatalf("seed category: %v", err)
		}
	}

	rows, err := e.svc.ListCategories(ctx, e.rd(e.reporter), uuid.Nil)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want own plus shared", len(rows))
	}
	seen := map[uuid.UUID]bool{}
	for _, row := range rows {
		seen[row.ID] = true
	}
	if !seen[shared.ID] || !seen[own.ID] || seen[foreign.ID] {
		t.Fatalf("rows = %v, want shared and own only", rows)
	}

	t.Run("super_admin_needs_explicit_tenant", func(t *testing.T) {
		_, err := e.svc.ListCategories(ctx, superAdminRD(), uuid.Nil)
		if got, ok := apierr.As(err); !ok || got.Code != "tenant_scope_required" {
			t.Fatalf("err = %v, want tenant_scope_required", err)
		}
	})
}

func TestGetArticle(t *testing.T) {
	e := newContentTestEnv(t)
	ctx := context.Background()

	row, err := e.svc.GetArticle(ctx, e.rd(e.reporter), e.article.ID)
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if row.ID != e.article.ID {
		t.Fatalf("id = %s, want %s", row.ID, e.article.ID)
	}

	other := e.addTenant("Other Paper", false)
	outsider := e.addStaffer(other, types.RoleEditor, false)
	if _, err := e.svc.GetArticle(ctx, e.rd(outsider), e.article.ID); apierr.KindOf(err) != apierr.KindNotFound {
		t.Fatalf("cross-tenant err = %v, want not found", err)
	}
}

func TestUpdateNewspaperArticle(t *testing.T) {
	e := newContentTestEnv(t)
	ctx := context.Background()

	headline := " <b>Repairs resume</b> "
	newBody := []string{"Rewritten paragraph.", "  ", "<i>Second</i> rewritten."}
	row, err := e.svc.UpdateNewspaperArticle(ctx, e.rd(e.editor), e.paper.ID, &NewspaperUpdateInput{
		Headline: &headline,
		Body:     newBody,
	})
	if err != nil {
		t.Fatalf("UpdateNewspaperArticle: %v", err)
	}
	if row.Headline != "Repairs resume" {
		t.Fatalf("headline = %q, want sanitized text", row.Headline)
	}
	if row.Subtitle != e.paper.Subtitle {
		t.Fatalf("subtitle changed despite absent field")
	}
	var paras []string
	if err := json.Unmarshal(row.Body, &paras); err != nil {
		t.Fatalf("body column: %v", err)
	}
	if len(paras) != 2 || paras[0] != "Rewritten paragraph." || paras[1] != "Second rewritten." {
		t.Fatalf("body = %v, want blank entries dropped and tags stripped", paras)
	}

	t.Run("reporter_cannot_edit_desk", func(t *testing.T) {
		h := "x"
		_, err := e.svc.UpdateNewspaperArticle(ctx, e.rd(e.reporter), e.paper.ID, &NewspaperUpdateInput{Headline: &h})
		if got, ok := apierr.As(err); !ok || got.Code != "editorial_role_required" {
			t.Fatalf("err = %v, want editorial_role_required", err)
		}
	})

	t.Run("blank_headline_rejected", func(t *testing.T) {
		h := "   "
		_, err := e.svc.UpdateNewspaperArticle(ctx, e.rd(e.editor), e.paper.ID, &NewspaperUpdateInput{Headline: &h})
		if got, ok := apierr.As(err); !ok || got.Code != "empty_headline" {
			t.Fatalf("err = %v, want empty_headline", err)
		}
	})

	t.Run("blank_body_rejected", func(t *testing.T) {
		_, err := e.svc.UpdateNewspaperArticle(ctx, e.rd(e.editor), e.paper.ID, &NewspaperUpdateInput{Body: []string{" ", ""}})
		if got, ok := apierr.As(err); !ok || got.Code != "empty_body" {
			t.Fatalf("err = %v, want empty_body", err)
		}
	})

	t.Run("cross_tenant_reads_as_not_found", func(t *testing.T) {
		other := e.addTenant("Other Paper", false)
		outsider := e.addStaffer(other, types.RoleEditor, false)
		h := "x"
		_, err := e.svc.UpdateNewspaperArticle(ctx, e.rd(outsider), e.paper.ID, &NewspaperUpdateInput{Headline: &h})
		if apierr.KindOf(err) != apierr.KindNotFound {
			t.Fatalf("err = %v, want not found", err)
		}
	})
}

func TestNewspaperModerationAndPublicGet(t *testing.T) {
	e := newContentTestEnv(t)
	ctx := context.Background()

	// Pending rows are invisible to readers.
	if _, err := e.svc.GetPublicNewspaperArticle(ctx, e.paper.ID); apierr.KindOf(err) != apierr.KindNotFound {
		t.Fatalf("pending row err = %v, want not found", err)
	}

	if err := e.svc.SetNewspaperStatus(ctx, e.rd(e.editor), e.paper.ID, types.StatusPublished); err != nil {
		t.Fatalf("SetNewspaperStatus: %v", err)
	}

	row, err := e.svc.GetPublicNewspaperArticle(ctx, e.paper.ID)
	if err != nil {
		t.Fatalf("GetPublicNewspaperArticle: %v", err)
	}
	if row.ViewCount != 1 {
		t.Fatalf("view count = %d, want 1 after first read", row.ViewCount)
	}
	row, err = e.svc.GetPublicNewspaperArticle(ctx, e.paper.ID)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if row.ViewCount != 2 {
		t.Fatalf("view count = %d, want 2 after second read", row.ViewCount)
	}

	t.Run("invalid_status_value", func(t *testing.T) {
		err := e.svc.SetNewspaperStatus(ctx, e.rd(e.editor), e.paper.ID, "LIVE")
		if got, ok := apierr.As(err); !ok || got.Code != "invalid_status" {
			t.Fatalf("err = %v, want invalid_status", err)
		}
	})

	t.Run("reporter_cannot_moderate", func(t *testing.T) {
		err := e.svc.SetNewspaperStatus(ctx, e.rd(e.reporter), e.paper.ID, types.StatusRejected)
		if got, ok := apierr.As(err); !ok || got.Code != "editorial_role_required" {
			t.Fatalf("err = %v, want editorial_role_required", err)
		}
	})

	t.Run("unknown_row", func(t *testing.T) {
		err := e.svc.SetNewspaperStatus(ctx, e.rd(e.editor), uuid.New(), types.StatusPublished)
		if apierr.KindOf(err) != apierr.KindNotFound {
			t.Fatalf("err = %v, want not found", err)
		}
	})
}

func TestWebPublicSurface(t *testing.T) {
	e := newContentTestEnv(t)
	ctx := context.Background()

	// A second, unpublished row must stay out of the public list.
	pending := &types.WebArticle{
		ID:        uuid.New(),
		ArticleID: e.article.ID,
		TenantID:  e.tenant.ID,
		Slug:      "pending-story",
		Title:     "Pending story",
		Status:    types.StatusPending,
	}
	if err := e.gdb.Create(pending).Error; err != nil {
		t.Fatalf("seed pending web article: %v", err)
	}

	rows, err := e.svc.ListPublicWebArticles(ctx, e.tenant.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListPublicWebArticles: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != e.web.ID {
		t.Fatalf("rows = %v, want only the published row", rows)
	}

	got, err := e.svc.GetPublicWebArticleBySlug(ctx, e.tenant.ID, "market-road-repairs")
	if err != nil {
		t.Fatalf("GetPublicWebArticleBySlug: %v", err)
	}
	if got.ID != e.web.ID || got.ViewCount != 1 {
		t.Fatalf("got id=%s views=%d, want seeded row with bumped count", got.ID, got.ViewCount)
	}

	t.Run("pending_slug_hidden", func(t *testing.T) {
		_, err := e.svc.GetPublicWebArticleBySlug(ctx, e.tenant.ID, "pending-story")
		if apierr.KindOf(err) != apierr.KindNotFound {
			t.Fatalf("err = %v, want not found", err)
		}
	})

	t.Run("publish_stamps_published_at", func(t *testing.T) {
		if err := e.svc.SetWebArticleStatus(ctx, e.rd(e.editor), pending.ID, types.StatusPublished); err != nil {
			t.Fatalf("SetWebArticleStatus: %v", err)
		}
		var after types.WebArticle
		if err := e.gdb.Where("id = ?", pending.ID).First(&after).Error; err != nil {
			t.Fatalf("reload: %v", err)
		}
		if after.Status != types.StatusPublished || after.PublishedAt == nil {
			t.Fatalf("status=%s publishedAt=%v, want published with timestamp", after.Status, after.PublishedAt)
		}
	})

	t.Run("missing_slug", func(t *testing.T) {
		_, err := e.svc.GetPublicWebArticleBySlug(ctx, e.tenant.ID, "  ")
		if apierr.KindOf(err) != apierr.KindValidation {
			t.Fatalf("err = %v, want validation", err)
		}
	})
}

func TestShortNewsFeed(t *testing.T) {
	e := newContentTestEnv(t)
	ctx := context.Background()

	rows, err := e.svc.ListPublicShortNews(ctx, e.tenant.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListPublicShortNews: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != e.short.ID {
		t.Fatalf("rows = %v, want the published short", rows)
	}

	if err := e.svc.SetShortNewsStatus(ctx, e.rd(e.editor), e.short.ID, types.StatusRejected); err != nil {
		t.Fatalf("SetShortNewsStatus: %v", err)
	}
	rows, err = e.svc.ListPublicShortNews(ctx, e.tenant.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListPublicShortNews after reject: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %d, want rejected short out of the feed", len(rows))
	}

	t.Run("cross_tenant_moderation_reads_as_not_found", func(t *testing.T) {
		other := e.addTenant("Other Paper", false)
		outsider := e.addStaffer(other, types.RoleEditor, false)
		err := e.svc.SetShortNewsStatus(ctx, e.rd(outsider), e.short.ID, types.StatusPublished)
		if apierr.KindOf(err) != apierr.KindNotFound {
			t.Fatalf("err = %v, want not found", err)
		}
	})

	t.Run("nil_tenant_rejected", func(t *testing.T) {
		_, err := e.svc.ListPublicShortNews(ctx, uuid.Nil, 10, 0)
		if apierr.KindOf(err) != apierr.KindValidation {
			t.Fatalf("err = %v, want validation", err)
		}
	})
}

package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/vaartalab/newsroom-backend/internal/db"
	"github.com/vaartalab/newsroom-backend/internal/platform/apierr"
	"github.com/vaartalab/newsroom-backend/internal/prompts"
	"github.com/vaartalab/newsroom-backend/internal/repos"
	"github.com/vaartalab/newsroom-backend/internal/requestdata"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

func newPromptAdminForTest(t *testing.T) PromptAdminService {
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
	return NewPromptAdminService(gdb, log, repos.NewPromptTemplateRepo(gdb, log))
}

func adminRD() requestdata.RequestData {
	return requestdata.RequestData{UserID: uuid.New(), Role: types.RoleSuperAdmin}
}

func TestPromptAdminOverrideRoundTrip(t *testing.T) {
	svc := newPromptAdminForTest(t)
	rd := adminRD()
	ctx := context.Background()

	views, err := svc.List(ctx, rd)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != len(prompts.Keys()) {
		t.Fatalf("listed %d templates, want %d", len(views), len(prompts.Keys()))
	}
	for _, v := range views {
		if v.Overridden {
			t.Fatalf("fresh table reports %q overridden", v.Key)
		}
		if v.Body == "" {
			t.Fatalf("template %q has empty default", v.Key)
		}
	}

	put, err := svc.Put(ctx, rd, prompts.KeyArticleCompose, "Compose differently.\n")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !put.Overridden || put.Body != "Compose differently." {
		t.Fatalf("after Put: %+v", put)
	}
	if put.UpdatedBy == nil || *put.UpdatedBy != rd.UserID {
		t.Fatalf("UpdatedBy = %v, want admin", put.UpdatedBy)
	}

	got, err := svc.Get(ctx, rd, prompts.KeyArticleCompose)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Overridden || got.Body != "Compose differently." {
		t.Fatalf("Get after Put: %+v", got)
	}

	// Untouched keys still read the embedded default.
	other, err := svc.Get(ctx, rd, prompts.KeyLengthExpand)
	if err != nil {
		t.Fatalf("Get untouched: %v", err)
	}
	if other.Overridden || other.Body != prompts.Default(prompts.KeyLengthExpand) {
		t.Fatalf("untouched key drifted: %+v", other)
	}
}

func TestPromptAdminRejections(t *testing.T) {
	svc := newPromptAdminForTest(t)
	ctx := context.Background()
	tenantID := uuid.New()
	editor := requestdata.RequestData{UserID: uuid.New(), Role: types.RoleEditor, TenantID: &tenantID}

	expectCode := func(t *testing.T, err error, code string) {
		t.Helper()
		e, ok := apierr.As(err)
		if !ok {
			t.Fatalf("error = %v, want typed", err)
		}
		if e.Code != code {
			t.Fatalf("code = %q, want %q", e.Code, code)
		}
	}

	if _, err := svc.List(ctx, editor); err == nil {
		t.Fatal("List allowed for editor")
	} else {
		expectCode(t, err, "admin_role_required")
	}
	if _, err := svc.Put(ctx, editor, prompts.KeyArticleCompose, "x"); err == nil {
		t.Fatal("Put allowed for editor")
	} else {
		expectCode(t, err, "admin_role_required")
	}

	rd := adminRD()
	if _, err := svc.Put(ctx, rd, "no_such_template", "x"); err == nil {
		t.Fatal("Put accepted unknown key")
	} else {
		expectCode(t, err, "unknown_prompt_key")
	}
	if _, err := svc.Put(ctx, rd, prompts.KeyArticleCompose, "   "); err == nil {
		t.Fatal("Put accepted blank body")
	} else {
		expectCode(t, err, "empty_prompt_body")
	}
}

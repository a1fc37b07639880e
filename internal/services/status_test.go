package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/vaartalab/newsroom-backend/internal/platform/ai"
	"github.com/vaartalab/newsroom-backend/internal/platform/apierr"
	"github.com/vaartalab/newsroom-backend/internal/repos"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

func TestGetStatus_ProjectsCompositionOutcome(t *testing.T) {
	scripted := &scriptedAI{responses: []ai.GenerateResult{{Text: composedJSON(t, 700, true)}}}
	e := newCompTestEnv(t, scripted)
	statusSvc := NewCompositionStatusService(e.gdb, repos.NewArticleRepo(e.gdb, e.log))

	res, err := e.svc.Submit(context.Background(), e.rd(e.reporter), e.rawSubmission())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	got, err := statusSvc.GetStatus(context.Background(), e.rd(e.reporter), res.Article.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if got.ArticleID != res.Article.ID || got.TenantID != e.tenant.ID {
		t.Fatalf("identity fields: %+v", got)
	}
	if got.Status != types.StatusPending {
		t.Fatalf("status = %q", got.Status)
	}
	if got.AI.AIStatus != types.AIStatusDone || got.AI.AIMode != types.AIModeFull {
		t.Fatalf("ai view = %+v", got.AI)
	}
	if got.AI.Queue.Web || got.AI.Queue.Short || got.AI.Queue.Newspaper {
		t.Fatalf("queue should be drained: %+v", got.AI.Queue)
	}
	if got.AI.Outputs.WebArticleID == nil || got.AI.Outputs.ShortNewsID == nil || got.AI.Outputs.NewspaperArticleID == nil {
		t.Fatalf("outputs incomplete: %+v", got.AI.Outputs)
	}
	if got.AI.AIStartedAt == nil || got.AI.AIFinishedAt == nil {
		t.Fatal("timestamps missing from projection")
	}
}

func TestGetStatus_ScopeAndMisses(t *testing.T) {
	scripted := &scriptedAI{errs: []error{errors.New("provider down")}}
	e := newCompTestEnv(t, scripted)
	statusSvc := NewCompositionStatusService(e.gdb, repos.NewArticleRepo(e.gdb, e.log))

	res, err := e.svc.Submit(context.Background(), e.rd(e.reporter), e.rawSubmission())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	t.Run("failed_run_is_visible", func(t *testing.T) {
		got, err := statusSvc.GetStatus(context.Background(), e.rd(e.reporter), res.Article.ID)
		if err != nil {
			t.Fatalf("GetStatus: %v", err)
		}
		if got.AI.AIStatus != types.AIStatusFailed {
			t.Fatalf("ai status = %q, want FAILED", got.AI.AIStatus)
		}
		if got.AI.AIError == "" {
			t.Fatal("failure code should be projected")
		}
		if !got.AI.Queue.Web || !got.AI.Queue.Short || !got.AI.Queue.Newspaper {
			t.Fatalf("outstanding queue should be projected: %+v", got.AI.Queue)
		}
	})

	t.Run("other_tenant_reads_as_not_found", func(t *testing.T) {
		other := e.addTenant("Rival Press", true)
		outsider := e.addStaffer(other, types.RoleEditor, false)
		_, err := statusSvc.GetStatus(context.Background(), e.rd(outsider), res.Article.ID)
		if apierr.KindOf(err) != apierr.KindNotFound {
			t.Fatalf("err = %v, want not-found", err)
		}
	})

	t.Run("super_admin_crosses_tenants", func(t *testing.T) {
		super := e.addStaffer(nil, types.RoleSuperAdmin, false)
		got, err := statusSvc.GetStatus(context.Background(), e.rd(super), res.Article.ID)
		if err != nil {
			t.Fatalf("GetStatus: %v", err)
		}
		if got.ArticleID != res.Article.ID {
			t.Fatalf("projection identity: %+v", got)
		}
	})

	t.Run("unknown_id", func(t *testing.T) {
		_, err := statusSvc.GetStatus(context.Background(), e.rd(e.reporter), uuid.New())
		if apierr.KindOf(err) != apierr.KindNotFound {
			t.Fatalf("err = %v, want not-found", err)
		}
	})

	t.Run("nil_id", func(t *testing.T) {
		_, err := statusSvc.GetStatus(context.Background(), e.rd(e.reporter), uuid.Nil)
		if apierr.KindOf(err) != apierr.KindValidation {
			t.Fatalf("err = %v, want validation", err)
		}
	})
}

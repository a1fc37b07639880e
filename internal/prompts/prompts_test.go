package prompts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
)

type fakeStore struct {
	bodies map[string]string
	err    error
}

func (f *fakeStore) TemplateBody(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.bodies[key], nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

func TestRender_BothDelimiterStyles(t *testing.T) {
	got := Render("Hello {{name}}, welcome to {place}.", map[string]string{
		"name":  "Asha",
		"place": "the desk",
	})
	if got != "Hello Asha, welcome to the desk." {
		t.Fatalf("got %q", got)
	}
}

func TestRender_UnresolvedPlaceholderLeftVerbatim(t *testing.T) {
	got := Render("Value: {{missing}} and {also_missing}", map[string]string{"other": "x"})
	if got != "Value: {{missing}} and {also_missing}" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_DoubleDelimiterNotMangledBySingle(t *testing.T) {
	// {{k}} must be replaced before {k} so the braces do not nest wrong.
	got := Render("A={{k}} B={k}", map[string]string{"k": "v"})
	if got != "A=v B=v" {
		t.Fatalf("got %q", got)
	}
}

func TestResolve_StoredBodyWins(t *testing.T) {
	r := NewResolver(&fakeStore{bodies: map[string]string{KeyArticleCompose: "custom body"}}, testLogger(t))
	if got := r.Resolve(context.Background(), KeyArticleCompose); got != "custom body" {
		t.Fatalf("got %q", got)
	}
}

func TestResolve_BlankRowFallsBackToDefault(t *testing.T) {
	r := NewResolver(&fakeStore{bodies: map[string]string{KeyArticleCompose: "   "}}, testLogger(t))
	got := r.Resolve(context.Background(), KeyArticleCompose)
	if !strings.Contains(got, "printArticle") {
		t.Fatalf("expected embedded default, got %q", got)
	}
}

func TestResolve_StoreErrorFallsBackToDefault(t *testing.T) {
	r := NewResolver(&fakeStore{err: errors.New("db down")}, testLogger(t))
	got := r.Resolve(context.Background(), KeyJSONRetrySuffix)
	if !strings.Contains(got, "ONLY the JSON object") {
		t.Fatalf("expected embedded default, got %q", got)
	}
}

func TestDefaults_AllKeysPresent(t *testing.T) {
	for _, key := range []string{KeyArticleCompose, KeyJSONRetrySuffix, KeyLengthExpand, KeyLengthCondense} {
		if strings.TrimSpace(Default(key)) == "" {
			t.Fatalf("embedded default missing for %s", key)
		}
	}
}

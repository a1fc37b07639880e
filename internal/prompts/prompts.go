// Package prompts resolves named prompt templates. Templates live in
// the database so editors can tune wording without a deploy; the
// embedded defaults keep the system working from an empty table.
package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
)

const (
	KeyArticleCompose  = "article_compose"
	KeyJSONRetrySuffix = "json_retry_suffix"
	KeyLengthExpand    = "length_expand"
	KeyLengthCondense  = "length_condense"
)

//go:embed defaults.yaml
var defaultsRaw []byte

var defaults = mustParseDefaults()

func mustParseDefaults() map[string]string {
	out := map[string]string{}
	if err := yaml.Unmarshal(defaultsRaw, &out); err != nil {
		panic(fmt.Sprintf("prompts: embedded defaults.yaml invalid: %v", err))
	}
	return out
}

// Store is the persistence seam; the prompt template repo satisfies it.
type Store interface {
	TemplateBody(ctx context.Context, key string) (string, error)
}

type Resolver struct {
	store Store
	log   *logger.Logger
}

func NewResolver(store Store, log *logger.Logger) *Resolver {
	return &Resolver{store: store, log: log.With("service", "PromptResolver")}
}

// Resolve returns the stored template for key, falling back to the
// embedded default when the row is absent or blank. An unknown key
// yields the empty string.
func (r *Resolver) Resolve(ctx context.Context, key string) string {
	if r.store != nil {
		body, err := r.store.TemplateBody(ctx, key)
		if err == nil && strings.TrimSpace(body) != "" {
			return body
		}
		if err != nil {
			r.log.Warn("prompt template lookup failed, using default", "key", key, "error", err)
		}
	}
	return defaults[key]
}

// Default exposes the embedded template for key.
func Default(key string) string { return defaults[key] }

// Keys lists every template key shipped in the embedded defaults,
// sorted for stable admin listings.
func Keys() []string {
	out := make([]string, 0, len(defaults))
	for k := range defaults {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Render substitutes vars into template. Both {{name}} and {name}
// delimiters are honored; unresolved placeholders stay verbatim.
func Render(template string, vars map[string]string) string {
	out := template
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

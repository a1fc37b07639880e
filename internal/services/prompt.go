package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/apierr"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/prompts"
	"github.com/vaartalab/newsroom-backend/internal/repos"
	"github.com/vaartalab/newsroom-backend/internal/requestdata"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

// PromptView is the admin projection of one template: the effective
// body plus whether a stored override is shadowing the embedded default.
type PromptView struct {
	Key        string     `json:"key"`
	Body       string     `json:"body"`
	Overridden bool       `json:"overridden"`
	UpdatedBy  *uuid.UUID `json:"updatedBy,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

type PromptAdminService interface {
	List(ctx context.Context, rd requestdata.RequestData) ([]PromptView, error)
	Get(ctx context.Context, rd requestdata.RequestData, key string) (*PromptView, error)
	Put(ctx context.Context, rd requestdata.RequestData, key, body string) (*PromptView, error)
}

type promptAdminService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.PromptTemplateRepo
}

func NewPromptAdminService(db *gorm.DB, baseLog *logger.Logger, repo repos.PromptTemplateRepo) PromptAdminService {
	return &promptAdminService{
		db:   db,
		log:  baseLog.With("service", "PromptAdminService"),
		repo: repo,
	}
}

func (s *promptAdminService) List(ctx context.Context, rd requestdata.RequestData) ([]PromptView, error) {
	if !rd.IsSuperAdmin() {
		return nil, apierr.Validation("admin_role_required", errors.New("prompt templates are platform-wide"))
	}

	stored, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, apierr.Persistence(err)
	}
	byKey := make(map[string]*types.PromptTemplate, len(stored))
	for _, row := range stored {
		byKey[row.Key] = row
	}

	keys := prompts.Keys()
	out := make([]PromptView, 0, len(keys))
	for _, key := range keys {
		view := PromptView{Key: key, Body: prompts.Default(key)}
		if row, ok := byKey[key]; ok && strings.TrimSpace(row.Body) != "" {
			view.Body = row.Body
			view.Overridden = true
			view.UpdatedBy = row.UpdatedBy
			t := row.UpdatedAt
			view.UpdatedAt = &t
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *promptAdminService) Get(ctx context.Context, rd requestdata.RequestData, key string) (*PromptView, error) {
	if !rd.IsSuperAdmin() {
		return nil, apierr.Validation("admin_role_required", errors.New("prompt templates are platform-wide"))
	}
	if prompts.Default(key) == "" {
		return nil, apierr.NotFound("unknown_prompt_key")
	}

	view := &PromptView{Key: key, Body: prompts.Default(key)}
	row, err := s.repo.GetByKey(ctx, nil, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return view, nil
		}
		return nil, apierr.Persistence(err)
	}
	if strings.TrimSpace(row.Body) != "" {
		view.Body = row.Body
		view.Overridden = true
		view.UpdatedBy = row.UpdatedBy
		t := row.UpdatedAt
		view.UpdatedAt = &t
	}
	return view, nil
}

// Put stores an override for key. Only keys shipped in the embedded
// defaults may be overridden; arbitrary new keys would never be read.
func (s *promptAdminService) Put(ctx context.Context, rd requestdata.RequestData, key, body string) (*PromptView, error) {
	if !rd.IsSuperAdmin() {
		return nil, apierr.Validation("admin_role_required", errors.New("prompt templates are platform-wide"))
	}
	if prompts.Default(key) == "" {
		return nil, apierr.NotFound("unknown_prompt_key")
	}
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, apierr.Validation("empty_prompt_body", errors.New("template body required"))
	}

	row := &types.PromptTemplate{Key: key, Body: trimmed}
	if rd.UserID != uuid.Nil {
		id := rd.UserID
		row.UpdatedBy = &id
	}
	if err := s.repo.Upsert(ctx, nil, row); err != nil {
		return nil, apierr.Persistence(err)
	}

	s.log.Info("prompt template overridden", "key", key)
	return s.Get(ctx, rd, key)
}

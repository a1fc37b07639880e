package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/apierr"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/repos"
	"github.com/vaartalab/newsroom-backend/internal/requestdata"
	"github.com/vaartalab/newsroom-backend/internal/sanitize"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

// maxCommentLen caps a single comment body after sanitation.
const maxCommentLen = 2000

type EngagementService interface {
	AddComment(ctx context.Context, rd requestdata.RequestData, articleID uuid.UUID, body string) (*types.Comment, error)
	ListComments(ctx context.Context, articleID uuid.UUID, limit, offset int) ([]*types.Comment, error)
	HideComment(ctx context.Context, rd requestdata.RequestData, commentID uuid.UUID) error
	Like(ctx context.Context, rd requestdata.RequestData, articleID uuid.UUID) (int64, error)
	Unlike(ctx context.Context, rd requestdata.RequestData, articleID uuid.UUID) (int64, error)
}

type engagementService struct {
	db        *gorm.DB
	log       *logger.Logger
	sanitizer *sanitize.Sanitizer

	articleRepo  repos.ArticleRepo
	commentRepo  repos.CommentRepo
	reactionRepo repos.ReactionRepo
}

func NewEngagementService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sanitizer *sanitize.Sanitizer,
	articleRepo repos.ArticleRepo,
	commentRepo repos.CommentRepo,
	reactionRepo repos.ReactionRepo,
) EngagementService {
	return &engagementService{
		db:           db,
		log:          baseLog.With("service", "EngagementService"),
		sanitizer:    sanitizer,
		articleRepo:  articleRepo,
		commentRepo:  commentRepo,
		reactionRepo: reactionRepo,
	}
}

func (s *engagementService) AddComment(ctx context.Context, rd requestdata.RequestData, articleID uuid.UUID, body string) (*types.Comment, error) {
	if rd.UserID == uuid.Nil {
		return nil, apierr.Validation("missing_user", errors.New("authenticated user required"))
	}

	clean := sanitize.Truncate(strings.TrimSpace(s.sanitizer.PlainText(body)), maxCommentLen)
	if clean == "" {
		return nil, apierr.Validation("empty_comment", errors.New("comment body required"))
	}

	if err := s.articleExists(ctx, articleID); err != nil {
		return nil, err
	}

	row := &types.Comment{
		ArticleID: articleID,
		UserID:    rd.UserID,
		Body:      clean,
		Status:    types.CommentVisible,
	}
	if err := s.commentRepo.Create(ctx, nil, row); err != nil {
		return nil, apierr.Persistence(err)
	}
	return row, nil
}

func (s *engagementService) ListComments(ctx context.Context, articleID uuid.UUID, limit, offset int) ([]*types.Comment, error) {
	if err := s.articleExists(ctx, articleID); err != nil {
		return nil, err
	}
	rows, err := s.commentRepo.ListVisibleByArticle(ctx, nil, articleID, limit, offset)
	if err != nil {
		return nil, apierr.Persistence(err)
	}
	return rows, nil
}

// HideComment is a moderation action: editorial roles only, scoped to
// the tenant owning the commented article.
func (s *engagementService) HideComment(ctx context.Context, rd requestdata.RequestData, commentID uuid.UUID) error {
	if !rd.IsEditorial() {
		return apierr.Validation("editorial_role_required", errors.New("only editorial roles moderate comments"))
	}

	comment, err := s.commentRepo.GetByID(ctx, nil, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("comment_not_found")
		}
		return apierr.Persistence(err)
	}

	art, err := s.articleRepo.GetByID(ctx, nil, comment.ArticleID)
	if err != nil {
		return apierr.Persistence(err)
	}
	if !rd.SameTenant(art.TenantID) {
		return apierr.NotFound("comment_not_found")
	}

	if err := s.commentRepo.SetStatus(ctx, nil, commentID, types.CommentHidden); err != nil {
		return apierr.Persistence(err)
	}
	return nil
}

func (s *engagementService) Like(ctx context.Context, rd requestdata.RequestData, articleID uuid.UUID) (int64, error) {
	if rd.UserID == uuid.Nil {
		return 0, apierr.Validation("missing_user", errors.New("authenticated user required"))
	}
	if err := s.articleExists(ctx, articleID); err != nil {
		return 0, err
	}
	if err := s.reactionRepo.Add(ctx, nil, articleID, rd.UserID, types.ReactionLike); err != nil {
		return 0, apierr.Persistence(err)
	}
	return s.likeCount(ctx, articleID)
}

func (s *engagementService) Unlike(ctx context.Context, rd requestdata.RequestData, articleID uuid.UUID) (int64, error) {
	if rd.UserID == uuid.Nil {
		return 0, apierr.Validation("missing_user", errors.New("authenticated user required"))
	}
	if err := s.articleExists(ctx, articleID); err != nil {
		return 0, err
	}
	if err := s.reactionRepo.Remove(ctx, nil, articleID, rd.UserID, types.ReactionLike); err != nil {
		return 0, apierr.Persistence(err)
	}
	return s.likeCount(ctx, articleID)
}

func (s *engagementService) likeCount(ctx context.Context, articleID uuid.UUID) (int64, error) {
	n, err := s.reactionRepo.CountByArticle(ctx, nil, articleID, types.ReactionLike)
	if err != nil {
		return 0, apierr.Persistence(err)
	}
	return n, nil
}

func (s *engagementService) articleExists(ctx context.Context, articleID uuid.UUID) error {
	if articleID == uuid.Nil {
		return apierr.Validation("missing_article_id", errors.New("article id required"))
	}
	if _, err := s.articleRepo.GetByID(ctx, nil, articleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("article_not_found")
		}
		return apierr.Persistence(err)
	}
	return nil
}

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

type CommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Comment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Comment, error)
	ListVisibleByArticle(ctx context.Context, tx *gorm.DB, articleID uuid.UUID, limit, offset int) ([]*types.Comment, error)
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	return &commentRepo{db: db, log: baseLog.With("repo", "CommentRepo")}
}

func (r *commentRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Comment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *commentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Comment
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *commentRepo) ListVisibleByArticle(ctx context.Context, tx *gorm.DB, articleID uuid.UUID, limit, offset int) ([]*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var rows []*types.Comment
	if err := transaction.WithContext(ctx).
		Where("article_id = ? AND status = ?", articleID, types.CommentVisible).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *commentRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Comment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

type ReactionRepo interface {
	Add(ctx context.Context, tx *gorm.DB, articleID, userID uuid.UUID, kind string) error
	Remove(ctx context.Context, tx *gorm.DB, articleID, userID uuid.UUID, kind string) error
	CountByArticle(ctx context.Context, tx *gorm.DB, articleID uuid.UUID, kind string) (int64, error)
}

type reactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReactionRepo(db *gorm.DB, baseLog *logger.Logger) ReactionRepo {
	return &reactionRepo{db: db, log: baseLog.With("repo", "ReactionRepo")}
}

// Add is idempotent: re-liking an already-liked article is a no-op.
func (r *reactionRepo) Add(ctx context.Context, tx *gorm.DB, articleID, userID uuid.UUID, kind string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.Reaction{ArticleID: articleID, UserID: userID, Kind: kind}
	return transaction.WithContext(ctx).
		Where("article_id = ? AND user_id = ? AND kind = ?", articleID, userID, kind).
		FirstOrCreate(row).Error
}

func (r *reactionRepo) Remove(ctx context.Context, tx *gorm.DB, articleID, userID uuid.UUID, kind string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("article_id = ? AND user_id = ? AND kind = ?", articleID, userID, kind).
		Delete(&types.Reaction{}).Error
}

func (r *reactionRepo) CountByArticle(ctx context.Context, tx *gorm.DB, articleID uuid.UUID, kind string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.Reaction{}).
		Where("article_id = ? AND kind = ?", articleID, kind).
		Count(&n).Error
	return n, err
}

package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"threadsnet/model"
	"threadsnet/repository"
)

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.Visibility == "" {
		post.Visibility = model.VisibilityPublic
	}
	if err := s.conn(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (s *Store) GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	if err := s.conn(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *Store) UpdatePost(ctx context.Context, id uuid.UUID, update model.PostUpdate) (*model.Post, error) {
	updates := make(map[string]interface{})
	if update.Text != nil {
		updates["text"] = *update.Text
	}
	if update.Image != nil {
		updates["image"] = *update.Image
	}
	if update.Visibility != nil {
		updates["visibility"] = *update.Visibility
	}
	if len(updates) > 0 {
		result := s.conn(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update post: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, repository.ErrNotFound
		}
	}
	return s.GetPost(ctx, id)
}

// DeletePost 级联删除评论、回复和相关点赞/收藏
func (s *Store) DeletePost(ctx context.Context, id uuid.UUID) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&model.Post{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete post: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}

		commentIDs := tx.Model(&model.Comment{}).Select("id").Where("post_id = ?", id)
		replyIDs := tx.Model(&model.Reply{}).Select("id").Where("comment_id IN (?)", commentIDs)

		if err := tx.Where("kind = ? AND target_id IN (?)", model.ReactionReplyLike, replyIDs).Delete(&model.Reaction{}).Error; err != nil {
			return fmt.Errorf("failed to delete reply likes: %w", err)
		}
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&model.Reply{}).Error; err != nil {
			return fmt.Errorf("failed to delete replies: %w", err)
		}
		if err := tx.Where("kind = ? AND target_id IN (?)", model.ReactionCommentLike, commentIDs).Delete(&model.Reaction{}).Error; err != nil {
			return fmt.Errorf("failed to delete comment likes: %w", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		err := tx.Where("kind IN ? AND target_id = ?",
			[]model.ReactionKind{model.ReactionPostLike, model.ReactionPostSave}, id).
			Delete(&model.Reaction{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete post reactions: %w", err)
		}
		return nil
	})
}

func (s *Store) IncrementPostCounter(ctx context.Context, id uuid.UUID, counter model.PostCounter) (*model.Post, error) {
	column := string(counter)
	var post model.Post
	result := s.conn(ctx).Model(&post).Clauses(clause.Returning{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to increment %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return &post, nil
}

func (s *Store) ListPosts(ctx context.Context, query model.PostQuery) ([]model.Post, error) {
	db := s.conn(ctx).Model(&model.Post{})
	if len(query.AuthorIDs) > 0 {
		db = db.Where("posted_by IN ?", query.AuthorIDs)
	}
	if len(query.ExcludeAuthorIDs) > 0 {
		db = db.Where("posted_by NOT IN ?", query.ExcludeAuthorIDs)
	}
	if len(query.PostIDs) > 0 {
		db = db.Where("id IN ?", query.PostIDs)
	}
	if len(query.Visibilities) > 0 {
		db = db.Where("visibility IN ?", query.Visibilities)
	}

	posts := make([]model.Post, 0)
	if err := db.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (s *Store) AddReaction(ctx context.Context, kind model.ReactionKind, targetID, userID uuid.UUID) (bool, error) {
	reaction := &model.Reaction{Kind: kind, TargetID: targetID, UserID: userID}
	result := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(reaction)
	if result.Error != nil {
		return false, fmt.Errorf("failed to add %s: %w", kind, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) RemoveReaction(ctx context.Context, kind model.ReactionKind, targetID, userID uuid.UUID) (bool, error) {
	result := s.conn(ctx).
		Where("kind = ? AND target_id = ? AND user_id = ?", kind, targetID, userID).
		Delete(&model.Reaction{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to remove %s: %w", kind, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) ListReactors(ctx context.Context, kind model.ReactionKind, targetIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}

	var rows []model.Reaction
	err := s.conn(ctx).
		Where("kind = ? AND target_id IN ?", kind, targetIDs).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", kind, err)
	}
	for _, r := range rows {
		out[r.TargetID] = append(out[r.TargetID], r.UserID)
	}
	return out, nil
}

func (s *Store) ListReactedTargets(ctx context.Context, kind model.ReactionKind, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	err := s.conn(ctx).Model(&model.Reaction{}).
		Where("kind = ? AND user_id = ?", kind, userID).
		Order("created_at ASC").
		Pluck("target_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", kind, err)
	}
	return ids, nil
}

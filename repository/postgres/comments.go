package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"threadsnet/model"
	"threadsnet/repository"
)

func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if err := s.conn(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (s *Store) GetComment(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := s.conn(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *Store) UpdateCommentText(ctx context.Context, id uuid.UUID, text string) (*model.Comment, error) {
	result := s.conn(ctx).Model(&model.Comment{}).Where("id = ?", id).Update("text_comment", text)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return s.GetComment(ctx, id)
}

func (s *Store) DeleteComment(ctx context.Context, id uuid.UUID) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&model.Comment{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete comment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}

		replyIDs := tx.Model(&model.Reply{}).Select("id").Where("comment_id = ?", id)
		if err := tx.Where("kind = ? AND target_id IN (?)", model.ReactionReplyLike, replyIDs).Delete(&model.Reaction{}).Error; err != nil {
			return fmt.Errorf("failed to delete reply likes: %w", err)
		}
		if err := tx.Where("comment_id = ?", id).Delete(&model.Reply{}).Error; err != nil {
			return fmt.Errorf("failed to delete replies: %w", err)
		}
		if err := tx.Where("kind = ? AND target_id = ?", model.ReactionCommentLike, id).Delete(&model.Reaction{}).Error; err != nil {
			return fmt.Errorf("failed to delete comment likes: %w", err)
		}
		return nil
	})
}

func (s *Store) ListCommentsByPosts(ctx context.Context, postIDs []uuid.UUID) ([]model.Comment, error) {
	comments := make([]model.Comment, 0)
	if len(postIDs) == 0 {
		return comments, nil
	}
	err := s.conn(ctx).Where("post_id IN ?", postIDs).Order("created_at ASC").Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	return comments, nil
}

func (s *Store) CreateReply(ctx context.Context, reply *model.Reply) error {
	if reply.ID == uuid.Nil {
		reply.ID = uuid.New()
	}
	if err := s.conn(ctx).Create(reply).Error; err != nil {
		return fmt.Errorf("failed to create reply: %w", err)
	}
	return nil
}

func (s *Store) GetReply(ctx context.Context, id uuid.UUID) (*model.Reply, error) {
	var reply model.Reply
	if err := s.conn(ctx).Where("id = ?", id).First(&reply).Error; err != nil {
		return nil, translate(err)
	}
	return &reply, nil
}

func (s *Store) UpdateReplyText(ctx context.Context, id uuid.UUID, text string) (*model.Reply, error) {
	result := s.conn(ctx).Model(&model.Reply{}).Where("id = ?", id).Update("text_comment", text)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update reply: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return s.GetReply(ctx, id)
}

func (s *Store) DeleteReply(ctx context.Context, id uuid.UUID) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&model.Reply{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete reply: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		if err := tx.Where("kind = ? AND target_id = ?", model.ReactionReplyLike, id).Delete(&model.Reaction{}).Error; err != nil {
			return fmt.Errorf("failed to delete reply likes: %w", err)
		}
		return nil
	})
}

func (s *Store) ListRepliesByComments(ctx context.Context, commentIDs []uuid.UUID) ([]model.Reply, error) {
	replies := make([]model.Reply, 0)
	if len(commentIDs) == 0 {
		return replies, nil
	}
	err := s.conn(ctx).Where("comment_id IN ?", commentIDs).Order("created_at ASC").Find(&replies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	return replies, nil
}

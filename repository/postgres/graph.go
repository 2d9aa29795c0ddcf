package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"threadsnet/model"
	"threadsnet/repository"
)

func (s *Store) AddRelationship(ctx context.Context, userID, targetID uuid.UUID, relType string) (bool, error) {
	rel := &model.UserRelationship{
		UserID:           userID,
		TargetUserID:     targetID,
		RelationshipType: relType,
	}
	result := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rel)
	if result.Error != nil {
		return false, fmt.Errorf("failed to add relationship: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) RemoveRelationship(ctx context.Context, userID, targetID uuid.UUID, relType string) (bool, error) {
	result := s.conn(ctx).
		Where("user_id = ? AND target_user_id = ? AND relationship_type = ?", userID, targetID, relType).
		Delete(&model.UserRelationship{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to remove relationship: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) HasRelationship(ctx context.Context, userID, targetID uuid.UUID, relType string) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&model.UserRelationship{}).
		Where("user_id = ? AND target_user_id = ? AND relationship_type = ?", userID, targetID, relType).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check relationship: %w", err)
	}
	return count > 0, nil
}

func (s *Store) ListRelationshipTargets(ctx context.Context, userID uuid.UUID, relType string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	err := s.conn(ctx).Model(&model.UserRelationship{}).
		Where("user_id = ? AND relationship_type = ?", userID, relType).
		Order("created_at ASC").
		Pluck("target_user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	return ids, nil
}

func (s *Store) ListRelationshipSources(ctx context.Context, targetID uuid.UUID, relType string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	err := s.conn(ctx).Model(&model.UserRelationship{}).
		Where("target_user_id = ? AND relationship_type = ?", targetID, relType).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	return ids, nil
}

func (s *Store) CreateFriendship(ctx context.Context, f *model.Friendship) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Status == "" {
		f.Status = model.FriendshipPending
	}
	f.PairKey = model.PairKey(f.RequesterID, f.RecipientID)
	return translate(s.conn(ctx).Create(f).Error)
}

func (s *Store) GetFriendship(ctx context.Context, id uuid.UUID) (*model.Friendship, error) {
	var f model.Friendship
	if err := s.conn(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (s *Store) GetFriendshipByPair(ctx context.Context, a, b uuid.UUID) (*model.Friendship, error) {
	var f model.Friendship
	if err := s.conn(ctx).Where("pair_key = ?", model.PairKey(a, b)).First(&f).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (s *Store) TransitionFriendship(ctx context.Context, id, recipientID uuid.UUID, from, to model.FriendshipStatus) (*model.Friendship, error) {
	var f model.Friendship
	result := s.conn(ctx).Model(&f).Clauses(clause.Returning{}).
		Where("id = ? AND recipient_id = ? AND status = ?", id, recipientID, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update friendship: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (s *Store) ReopenFriendship(ctx context.Context, id, requesterID, recipientID uuid.UUID) (*model.Friendship, error) {
	var f model.Friendship
	result := s.conn(ctx).Model(&f).Clauses(clause.Returning{}).
		Where("id = ? AND status = ?", id, model.FriendshipRejected).
		Updates(map[string]interface{}{
			"requester_id": requesterID,
			"recipient_id": recipientID,
			"status":       model.FriendshipPending,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to reopen friendship: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (s *Store) DeleteFriendship(ctx context.Context, id uuid.UUID, status model.FriendshipStatus) (bool, error) {
	result := s.conn(ctx).Where("id = ? AND status = ?", id, status).Delete(&model.Friendship{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete friendship: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) ListFriendships(ctx context.Context, userID uuid.UUID, status model.FriendshipStatus) ([]model.Friendship, error) {
	var friendships []model.Friendship
	err := s.conn(ctx).
		Where("status = ? AND (requester_id = ? OR recipient_id = ?)", status, userID, userID).
		Order("created_at ASC").
		Find(&friendships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query friendships: %w", err)
	}
	return friendships, nil
}

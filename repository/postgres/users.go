package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"threadsnet/model"
	"threadsnet/repository"
)

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if err := s.conn(ctx).Create(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := s.conn(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.conn(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.conn(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	users := make([]model.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	return users, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.conn(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, update model.UserUpdate) (*model.User, error) {
	updates := make(map[string]interface{})
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Username != nil {
		updates["username"] = *update.Username
	}
	if update.Email != nil {
		updates["email"] = *update.Email
	}
	if update.Password != nil {
		updates["password"] = *update.Password
	}
	if update.Role != nil {
		updates["role"] = *update.Role
	}
	if update.Avatar != nil {
		updates["avatar"] = *update.Avatar
	}
	if update.Bio != nil {
		updates["bio"] = *update.Bio
	}
	if update.IsLocked != nil {
		updates["is_locked"] = *update.IsLocked
	}
	if update.PasswordChangedAt != nil {
		updates["password_changed_at"] = *update.PasswordChangedAt
	}

	if len(updates) > 0 {
		result := s.conn(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, repository.ErrNotFound
		}
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&model.User{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		if err := tx.Where("user_id = ? OR target_user_id = ?", id, id).Delete(&model.UserRelationship{}).Error; err != nil {
			return fmt.Errorf("failed to delete relationships: %w", err)
		}
		if err := tx.Where("requester_id = ? OR recipient_id = ?", id, id).Delete(&model.Friendship{}).Error; err != nil {
			return fmt.Errorf("failed to delete friendships: %w", err)
		}
		return nil
	})
}

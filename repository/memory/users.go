package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"threadsnet/model"
	"threadsnet/repository"
)

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	defer s.lock()()

	for _, u := range s.data.users {
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.data.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	defer s.lock()()

	u, ok := s.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	defer s.lock()()

	for _, u := range s.data.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	defer s.lock()()

	for _, u := range s.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	defer s.lock()()

	users := make([]model.User, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := s.data.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	defer s.lock()()

	users := make([]model.User, 0, len(s.data.users))
	for _, u := range s.data.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, update model.UserUpdate) (*model.User, error) {
	defer s.lock()()

	u, ok := s.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for otherID, other := range s.data.users {
		if otherID == id {
			continue
		}
		if update.Email != nil && strings.EqualFold(other.Email, *update.Email) {
			return nil, repository.ErrDuplicate
		}
		if update.Username != nil && other.Username == *update.Username {
			return nil, repository.ErrDuplicate
		}
	}

	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Password != nil {
		u.Password = *update.Password
	}
	if update.Role != nil {
		u.Role = *update.Role
	}
	if update.Avatar != nil {
		u.Avatar = *update.Avatar
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.IsLocked != nil {
		u.IsLocked = *update.IsLocked
	}
	if update.PasswordChangedAt != nil {
		t := *update.PasswordChangedAt
		u.PasswordChangedAt = &t
	}
	u.UpdatedAt = s.now()
	s.data.users[id] = u
	return &u, nil
}

// DeleteUser 删除用户及其关系边和好友请求
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	defer s.lock()()

	if _, ok := s.data.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.data.users, id)
	for k := range s.data.relationships {
		if k.user == id || k.target == id {
			delete(s.data.relationships, k)
		}
	}
	for fid, f := range s.data.friendships {
		if f.RequesterID == id || f.RecipientID == id {
			delete(s.data.friendships, fid)
		}
	}
	return nil
}

package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"threadsnet/model"
	"threadsnet/repository"
)

// RelationshipService 社交关系：关注、拉黑、好友集合与可见性上下文
type RelationshipService struct {
	store repository.Store
}

func NewRelationshipService(store repository.Store) *RelationshipService {
	return &RelationshipService{store: store}
}

func (s *RelationshipService) requireOther(ctx context.Context, actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return NewError(KindValidation, "you cannot perform this action on yourself")
	}
	if _, err := s.store.GetUserByID(ctx, targetID); err != nil {
		return storeError(err, "user not found")
	}
	return nil
}

// ToggleFollow 关注/取消关注，返回操作后的关注状态
func (s *RelationshipService) ToggleFollow(ctx context.Context, actorID, targetID uuid.UUID) (bool, error) {
	if err := s.requireOther(ctx, actorID, targetID); err != nil {
		return false, err
	}

	removed, err := s.store.RemoveRelationship(ctx, actorID, targetID, model.RelationshipFollow)
	if err != nil {
		return false, storeError(err, "user not found")
	}
	if removed {
		return false, nil
	}
	if _, err := s.store.AddRelationship(ctx, actorID, targetID, model.RelationshipFollow); err != nil {
		return false, storeError(err, "user not found")
	}
	return true, nil
}

// BlockUser 拉黑用户，同时取消对其的关注
func (s *RelationshipService) BlockUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	if err := s.requireOther(ctx, actorID, targetID); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		added, err := tx.AddRelationship(ctx, actorID, targetID, model.RelationshipBlocked)
		if err != nil {
			return storeError(err, "user not found")
		}
		if !added {
			return NewError(KindConflict, "This user is in your blocked list")
		}
		if _, err := tx.RemoveRelationship(ctx, actorID, targetID, model.RelationshipFollow); err != nil {
			return storeError(err, "user not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	zap.L().Info("user blocked", zap.String("user_id", actorID.String()), zap.String("target_id", targetID.String()))
	return nil
}

// UnblockUser 取消拉黑
func (s *RelationshipService) UnblockUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return NewError(KindValidation, "you cannot perform this action on yourself")
	}
	removed, err := s.store.RemoveRelationship(ctx, actorID, targetID, model.RelationshipBlocked)
	if err != nil {
		return storeError(err, "user not found")
	}
	if !removed {
		return NewError(KindNotFound, "This user is not in your blocked list")
	}
	return nil
}

// IsBlocked userID 是否拉黑了 targetID
func (s *RelationshipService) IsBlocked(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	blocked, err := s.store.HasRelationship(ctx, userID, targetID, model.RelationshipBlocked)
	if err != nil {
		return false, storeError(err, "user not found")
	}
	return blocked, nil
}

// GetBlockedUsers 黑名单用户信息
func (s *RelationshipService) GetBlockedUsers(ctx context.Context, userID uuid.UUID) ([]model.UserSummary, error) {
	ids, err := s.store.ListRelationshipTargets(ctx, userID, model.RelationshipBlocked)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	return orderedSummaries(ctx, s.store, ids)
}

func (s *RelationshipService) Followers(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.store.ListRelationshipSources(ctx, userID, model.RelationshipFollow)
	return ids, storeError(err, "user not found")
}

func (s *RelationshipService) Following(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.store.ListRelationshipTargets(ctx, userID, model.RelationshipFollow)
	return ids, storeError(err, "user not found")
}

// FriendIDs 已接受好友的用户 id
func (s *RelationshipService) FriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	friendships, err := s.store.ListFriendships(ctx, userID, model.FriendshipAccepted)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	ids := make([]uuid.UUID, len(friendships))
	for i := range friendships {
		ids[i] = friendships[i].Other(userID)
	}
	return ids, nil
}

// Context 构造观看者的可见性上下文
func (s *RelationshipService) Context(ctx context.Context, viewer uuid.UUID) (*GraphContext, error) {
	friends, err := s.FriendIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	following, err := s.Following(ctx, viewer)
	if err != nil {
		return nil, err
	}
	blocked, err := s.store.ListRelationshipTargets(ctx, viewer, model.RelationshipBlocked)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	return NewGraphContext(viewer, friends, following, blocked), nil
}

// Detail 用户详情及全部社交集合
func (s *RelationshipService) Detail(ctx context.Context, userID uuid.UUID) (*model.UserDetail, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user not found")
	}

	detail := &model.UserDetail{User: *user}
	if detail.Followers, err = s.Followers(ctx, userID); err != nil {
		return nil, err
	}
	if detail.Following, err = s.Following(ctx, userID); err != nil {
		return nil, err
	}
	if detail.BlockedList, err = s.store.ListRelationshipTargets(ctx, userID, model.RelationshipBlocked); err != nil {
		return nil, storeError(err, "user not found")
	}

	friendships, err := s.store.ListFriendships(ctx, userID, model.FriendshipAccepted)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	detail.Friends = make([]uuid.UUID, len(friendships))
	for i := range friendships {
		detail.Friends[i] = friendships[i].ID
	}

	if detail.Liked, err = s.store.ListReactedTargets(ctx, model.ReactionPostLike, userID); err != nil {
		return nil, storeError(err, "user not found")
	}
	if detail.Saved, err = s.store.ListReactedTargets(ctx, model.ReactionPostSave, userID); err != nil {
		return nil, storeError(err, "user not found")
	}
	return detail, nil
}

// Profile 按 id 或用户名查看他人主页，观看者拉黑了对方时拒绝
func (s *RelationshipService) Profile(ctx context.Context, viewer uuid.UUID, query string) (*model.UserDetail, error) {
	var (
		user *model.User
		err  error
	)
	if id, parseErr := uuid.Parse(query); parseErr == nil {
		user, err = s.store.GetUserByID(ctx, id)
	} else {
		user, err = s.store.GetUserByUsername(ctx, query)
	}
	if err != nil {
		return nil, storeError(err, "user not found")
	}

	if viewer != user.ID {
		blocked, err := s.IsBlocked(ctx, viewer, user.ID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, NewError(KindForbidden, "This user is in your blocked list")
		}
	}
	return s.Detail(ctx, user.ID)
}

// loadSummaries 批量加载用户简要信息
func loadSummaries(ctx context.Context, repo repository.UserRepository, ids []uuid.UUID) (map[uuid.UUID]model.UserSummary, error) {
	users, err := repo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	out := make(map[uuid.UUID]model.UserSummary, len(users))
	for i := range users {
		out[users[i].ID] = users[i].Summary()
	}
	return out, nil
}

// orderedSummaries 保持 ids 顺序，跳过已删除的用户
func orderedSummaries(ctx context.Context, repo repository.UserRepository, ids []uuid.UUID) ([]model.UserSummary, error) {
	byID, err := loadSummaries(ctx, repo, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserSummary, 0, len(ids))
	for _, id := range ids {
		if summary, ok := byID[id]; ok {
			out = append(out, summary)
		}
	}
	return out, nil
}

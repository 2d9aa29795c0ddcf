package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"threadsnet/metrics"
	"threadsnet/model"
	"threadsnet/repository"
)

const msgFriendshipExists = "Friend request already exists or you are already friends."

// FriendService 好友请求状态机：NONE -> pending -> {accepted, rejected}，rejected 可重新发送
type FriendService struct {
	store   repository.Store
	metrics *metrics.Metrics
}

func NewFriendService(store repository.Store, m *metrics.Metrics) *FriendService {
	return &FriendService{store: store, metrics: m}
}

// SendRequest 发送好友请求，请求方同时关注接收方
func (s *FriendService) SendRequest(ctx context.Context, requesterID, recipientID uuid.UUID) (*model.Friendship, error) {
	if requesterID == recipientID {
		return nil, NewError(KindConflict, "you cannot send a friend request to yourself")
	}
	if _, err := s.store.GetUserByID(ctx, recipientID); err != nil {
		return nil, storeError(err, "user not found")
	}

	var result *model.Friendship
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		existing, err := tx.GetFriendshipByPair(ctx, requesterID, recipientID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			f := &model.Friendship{
				RequesterID: requesterID,
				RecipientID: recipientID,
				Status:      model.FriendshipPending,
			}
			if err := tx.CreateFriendship(ctx, f); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return NewError(KindConflict, msgFriendshipExists)
				}
				return storeError(err, "friend request not found")
			}
			result = f
		case err != nil:
			return storeError(err, "friend request not found")
		case existing.Status == model.FriendshipRejected:
			f, err := tx.ReopenFriendship(ctx, existing.ID, requesterID, recipientID)
			if errors.Is(err, repository.ErrNotFound) {
				return NewError(KindConflict, msgFriendshipExists)
			}
			if err != nil {
				return storeError(err, "friend request not found")
			}
			result = f
		default:
			return NewError(KindConflict, msgFriendshipExists)
		}

		if _, err := tx.AddRelationship(ctx, requesterID, recipientID, model.RelationshipFollow); err != nil {
			return storeError(err, "user not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.FriendTransition("sent")
	zap.L().Info("friend request sent",
		zap.String("request_id", result.ID.String()),
		zap.String("requester_id", requesterID.String()),
		zap.String("recipient_id", recipientID.String()))
	return result, nil
}

// AcceptRequest 接受好友请求，只改变状态，不新增关注
func (s *FriendService) AcceptRequest(ctx context.Context, requestID, actorID uuid.UUID) (*model.Friendship, error) {
	var result *model.Friendship
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		f, err := tx.TransitionFriendship(ctx, requestID, actorID, model.FriendshipPending, model.FriendshipAccepted)
		if err != nil {
			return storeError(err, "Friend request not found")
		}
		result = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.FriendTransition("accepted")
	return result, nil
}

// RejectRequest 拒绝好友请求，撤销请求时建立的关注
func (s *FriendService) RejectRequest(ctx context.Context, requestID, actorID uuid.UUID) (*model.Friendship, error) {
	var result *model.Friendship
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		f, err := tx.TransitionFriendship(ctx, requestID, actorID, model.FriendshipPending, model.FriendshipRejected)
		if err != nil {
			return storeError(err, "Friend request not found")
		}
		if _, err := tx.RemoveRelationship(ctx, f.RequesterID, f.RecipientID, model.RelationshipFollow); err != nil {
			return storeError(err, "user not found")
		}
		result = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.FriendTransition("rejected")
	return result, nil
}

// Unfriend 解除好友：删除好友记录并移除双向关注
func (s *FriendService) Unfriend(ctx context.Context, actorID, friendID uuid.UUID) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		f, err := tx.GetFriendshipByPair(ctx, actorID, friendID)
		if err != nil {
			return storeError(err, "You are not friends with this user")
		}
		deleted, err := tx.DeleteFriendship(ctx, f.ID, model.FriendshipAccepted)
		if err != nil {
			return storeError(err, "You are not friends with this user")
		}
		if !deleted {
			return NewError(KindNotFound, "You are not friends with this user")
		}
		if _, err := tx.RemoveRelationship(ctx, actorID, friendID, model.RelationshipFollow); err != nil {
			return storeError(err, "user not found")
		}
		if _, err := tx.RemoveRelationship(ctx, friendID, actorID, model.RelationshipFollow); err != nil {
			return storeError(err, "user not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.FriendTransition("unfriended")
	return nil
}

// ListFriends 好友列表
func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]model.UserSummary, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, storeError(err, "user not found")
	}
	friendships, err := s.store.ListFriendships(ctx, userID, model.FriendshipAccepted)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	ids := make([]uuid.UUID, len(friendships))
	for i := range friendships {
		ids[i] = friendships[i].Other(userID)
	}
	return orderedSummaries(ctx, s.store, ids)
}

// ListPending 收到的待处理请求
func (s *FriendService) ListPending(ctx context.Context, userID uuid.UUID) ([]model.FriendRequestView, error) {
	friendships, err := s.store.ListFriendships(ctx, userID, model.FriendshipPending)
	if err != nil {
		return nil, storeError(err, "user not found")
	}

	var incoming []model.Friendship
	var requesterIDs []uuid.UUID
	for _, f := range friendships {
		if f.RecipientID == userID {
			incoming = append(incoming, f)
			requesterIDs = append(requesterIDs, f.RequesterID)
		}
	}
	summaries, err := loadSummaries(ctx, s.store, requesterIDs)
	if err != nil {
		return nil, err
	}

	views := make([]model.FriendRequestView, 0, len(incoming))
	for _, f := range incoming {
		view := model.FriendRequestView{Friendship: f}
		if summary, ok := summaries[f.RequesterID]; ok {
			view.Requester = &summary
		}
		views = append(views, view)
	}
	return views, nil
}

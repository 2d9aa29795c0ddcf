package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"threadsnet/model"
	"threadsnet/repository"
)

func (s *Store) AddRelationship(ctx context.Context, userID, targetID uuid.UUID, relType string) (bool, error) {
	defer s.lock()()

	k := relKey{user: userID, target: targetID, typ: relType}
	if _, ok := s.data.relationships[k]; ok {
		return false, nil
	}
	s.data.relationships[k] = s.now()
	return true, nil
}

func (s *Store) RemoveRelationship(ctx context.Context, userID, targetID uuid.UUID, relType string) (bool, error) {
	defer s.lock()()

	k := relKey{user: userID, target: targetID, typ: relType}
	if _, ok := s.data.relationships[k]; !ok {
		return false, nil
	}
	delete(s.data.relationships, k)
	return true, nil
}

func (s *Store) HasRelationship(ctx context.Context, userID, targetID uuid.UUID, relType string) (bool, error) {
	defer s.lock()()

	_, ok := s.data.relationships[relKey{user: userID, target: targetID, typ: relType}]
	return ok, nil
}

func (s *Store) ListRelationshipTargets(ctx context.Context, userID uuid.UUID, relType string) ([]uuid.UUID, error) {
	defer s.lock()()

	return s.collectEdges(func(k relKey) (uuid.UUID, bool) {
		return k.target, k.user == userID && k.typ == relType
	}), nil
}

func (s *Store) ListRelationshipSources(ctx context.Context, targetID uuid.UUID, relType string) ([]uuid.UUID, error) {
	defer s.lock()()

	return s.collectEdges(func(k relKey) (uuid.UUID, bool) {
		return k.user, k.target == targetID && k.typ == relType
	}), nil
}

// collectEdges 按建立时间升序返回匹配边的一端
func (s *Store) collectEdges(match func(relKey) (uuid.UUID, bool)) []uuid.UUID {
	type edge struct {
		id uuid.UUID
		at time.Time
	}
	var edges []edge
	for k, at := range s.data.relationships {
		if id, ok := match(k); ok {
			edges = append(edges, edge{id: id, at: at})
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].at.Before(edges[j].at) })
	ids := make([]uuid.UUID, len(edges))
	for i, e := range edges {
		ids[i] = e.id
	}
	return ids
}

func (s *Store) CreateFriendship(ctx context.Context, f *model.Friendship) error {
	defer s.lock()()

	f.PairKey = model.PairKey(f.RequesterID, f.RecipientID)
	for _, existing := range s.data.friendships {
		if existing.PairKey == f.PairKey {
			return repository.ErrDuplicate
		}
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Status == "" {
		f.Status = model.FriendshipPending
	}
	now := s.now()
	f.CreatedAt = now
	f.UpdatedAt = now
	s.data.friendships[f.ID] = *f
	return nil
}

func (s *Store) GetFriendship(ctx context.Context, id uuid.UUID) (*model.Friendship, error) {
	defer s.lock()()

	f, ok := s.data.friendships[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (s *Store) GetFriendshipByPair(ctx context.Context, a, b uuid.UUID) (*model.Friendship, error) {
	defer s.lock()()

	key := model.PairKey(a, b)
	for _, f := range s.data.friendships {
		if f.PairKey == key {
			return &f, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) TransitionFriendship(ctx context.Context, id, recipientID uuid.UUID, from, to model.FriendshipStatus) (*model.Friendship, error) {
	defer s.lock()()

	f, ok := s.data.friendships[id]
	if !ok || f.RecipientID != recipientID || f.Status != from {
		return nil, repository.ErrNotFound
	}
	f.Status = to
	f.UpdatedAt = s.now()
	s.data.friendships[id] = f
	return &f, nil
}

func (s *Store) ReopenFriendship(ctx context.Context, id, requesterID, recipientID uuid.UUID) (*model.Friendship, error) {
	defer s.lock()()

	f, ok := s.data.friendships[id]
	if !ok || f.Status != model.FriendshipRejected {
		return nil, repository.ErrNotFound
	}
	f.RequesterID = requesterID
	f.RecipientID = recipientID
	f.Status = model.FriendshipPending
	f.UpdatedAt = s.now()
	s.data.friendships[id] = f
	return &f, nil
}

func (s *Store) DeleteFriendship(ctx context.Context, id uuid.UUID, status model.FriendshipStatus) (bool, error) {
	defer s.lock()()

	f, ok := s.data.friendships[id]
	if !ok || f.Status != status {
		return false, nil
	}
	delete(s.data.friendships, id)
	return true, nil
}

func (s *Store) ListFriendships(ctx context.Context, userID uuid.UUID, status model.FriendshipStatus) ([]model.Friendship, error) {
	defer s.lock()()

	var out []model.Friendship
	for _, f := range s.data.friendships {
		if f.Status == status && (f.RequesterID == userID || f.RecipientID == userID) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

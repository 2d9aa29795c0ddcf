package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"threadsnet/model"
	"threadsnet/repository"
)

func toSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func stripPost(p model.Post) model.Post {
	p.Author = nil
	p.Likes = nil
	p.SavedLists = nil
	p.Comments = nil
	return p
}

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	defer s.lock()()

	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.Visibility == "" {
		post.Visibility = model.VisibilityPublic
	}
	now := s.now()
	post.CreatedAt = now
	post.UpdatedAt = now
	s.data.posts[post.ID] = stripPost(*post)
	return nil
}

func (s *Store) GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	defer s.lock()()

	p, ok := s.data.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *Store) UpdatePost(ctx context.Context, id uuid.UUID, update model.PostUpdate) (*model.Post, error) {
	defer s.lock()()

	p, ok := s.data.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.Text != nil {
		p.Text = *update.Text
	}
	if update.Image != nil {
		p.Image = *update.Image
	}
	if update.Visibility != nil {
		p.Visibility = *update.Visibility
	}
	p.UpdatedAt = s.now()
	s.data.posts[id] = p
	return &p, nil
}

func (s *Store) DeletePost(ctx context.Context, id uuid.UUID) error {
	defer s.lock()()

	if _, ok := s.data.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.data.posts, id)
	s.dropReactions(model.ReactionPostLike, id)
	s.dropReactions(model.ReactionPostSave, id)
	for cid, c := range s.data.comments {
		if c.PostID == id {
			s.deleteCommentLocked(cid)
		}
	}
	return nil
}

func (s *Store) IncrementPostCounter(ctx context.Context, id uuid.UUID, counter model.PostCounter) (*model.Post, error) {
	defer s.lock()()

	p, ok := s.data.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	switch counter {
	case model.CounterViews:
		p.NumberViews++
	case model.CounterReposts:
		p.NumberViewsRepost++
	}
	s.data.posts[id] = p
	return &p, nil
}

func (s *Store) ListPosts(ctx context.Context, query model.PostQuery) ([]model.Post, error) {
	defer s.lock()()

	authors := toSet(query.AuthorIDs)
	excluded := toSet(query.ExcludeAuthorIDs)
	ids := toSet(query.PostIDs)
	visibilities := make(map[model.Visibility]bool, len(query.Visibilities))
	for _, v := range query.Visibilities {
		visibilities[v] = true
	}

	posts := make([]model.Post, 0)
	for _, p := range s.data.posts {
		if len(authors) > 0 && !authors[p.PostedBy] {
			continue
		}
		if excluded[p.PostedBy] {
			continue
		}
		if len(ids) > 0 && !ids[p.ID] {
			continue
		}
		if len(visibilities) > 0 && !visibilities[p.Visibility] {
			continue
		}
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (s *Store) AddReaction(ctx context.Context, kind model.ReactionKind, targetID, userID uuid.UUID) (bool, error) {
	defer s.lock()()

	k := reactionKey{kind: kind, target: targetID, user: userID}
	if _, ok := s.data.reactions[k]; ok {
		return false, nil
	}
	s.data.reactions[k] = s.now()
	return true, nil
}

func (s *Store) RemoveReaction(ctx context.Context, kind model.ReactionKind, targetID, userID uuid.UUID) (bool, error) {
	defer s.lock()()

	k := reactionKey{kind: kind, target: targetID, user: userID}
	if _, ok := s.data.reactions[k]; !ok {
		return false, nil
	}
	delete(s.data.reactions, k)
	return true, nil
}

type reactionEntry struct {
	target uuid.UUID
	user   uuid.UUID
	at     time.Time
}

func (s *Store) ListReactors(ctx context.Context, kind model.ReactionKind, targetIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	defer s.lock()()

	targets := toSet(targetIDs)
	var entries []reactionEntry
	for k, at := range s.data.reactions {
		if k.kind == kind && targets[k.target] {
			entries = append(entries, reactionEntry{target: k.target, user: k.user, at: at})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	out := make(map[uuid.UUID][]uuid.UUID, len(targetIDs))
	for _, e := range entries {
		out[e.target] = append(out[e.target], e.user)
	}
	return out, nil
}

func (s *Store) ListReactedTargets(ctx context.Context, kind model.ReactionKind, userID uuid.UUID) ([]uuid.UUID, error) {
	defer s.lock()()

	var entries []reactionEntry
	for k, at := range s.data.reactions {
		if k.kind == kind && k.user == userID {
			entries = append(entries, reactionEntry{target: k.target, user: k.user, at: at})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.target
	}
	return ids, nil
}

func (s *Store) dropReactions(kind model.ReactionKind, targetID uuid.UUID) {
	for k := range s.data.reactions {
		if k.kind == kind && k.target == targetID {
			delete(s.data.reactions, k)
		}
	}
}

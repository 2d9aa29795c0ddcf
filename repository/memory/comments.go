package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"threadsnet/model"
	"threadsnet/repository"
)

func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) error {
	defer s.lock()()

	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	now := s.now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	c := *comment
	c.Author, c.Likes, c.Replies = nil, nil, nil
	s.data.comments[c.ID] = c
	return nil
}

func (s *Store) GetComment(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	defer s.lock()()

	c, ok := s.data.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *Store) UpdateCommentText(ctx context.Context, id uuid.UUID, text string) (*model.Comment, error) {
	defer s.lock()()

	c, ok := s.data.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.TextComment = text
	c.UpdatedAt = s.now()
	s.data.comments[id] = c
	return &c, nil
}

func (s *Store) DeleteComment(ctx context.Context, id uuid.UUID) error {
	defer s.lock()()

	if _, ok := s.data.comments[id]; !ok {
		return repository.ErrNotFound
	}
	s.deleteCommentLocked(id)
	return nil
}

func (s *Store) deleteCommentLocked(id uuid.UUID) {
	delete(s.data.comments, id)
	s.dropReactions(model.ReactionCommentLike, id)
	for rid, r := range s.data.replies {
		if r.CommentID == id {
			delete(s.data.replies, rid)
			s.dropReactions(model.ReactionReplyLike, rid)
		}
	}
}

func (s *Store) ListCommentsByPosts(ctx context.Context, postIDs []uuid.UUID) ([]model.Comment, error) {
	defer s.lock()()

	posts := toSet(postIDs)
	comments := make([]model.Comment, 0)
	for _, c := range s.data.comments {
		if posts[c.PostID] {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

func (s *Store) CreateReply(ctx context.Context, reply *model.Reply) error {
	defer s.lock()()

	if _, ok := s.data.comments[reply.CommentID]; !ok {
		return repository.ErrNotFound
	}
	if reply.ID == uuid.Nil {
		reply.ID = uuid.New()
	}
	now := s.now()
	reply.CreatedAt = now
	reply.UpdatedAt = now
	r := *reply
	r.Author, r.Likes = nil, nil
	s.data.replies[r.ID] = r
	return nil
}

func (s *Store) GetReply(ctx context.Context, id uuid.UUID) (*model.Reply, error) {
	defer s.lock()()

	r, ok := s.data.replies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *Store) UpdateReplyText(ctx context.Context, id uuid.UUID, text string) (*model.Reply, error) {
	defer s.lock()()

	r, ok := s.data.replies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.TextComment = text
	r.UpdatedAt = s.now()
	s.data.replies[id] = r
	return &r, nil
}

func (s *Store) DeleteReply(ctx context.Context, id uuid.UUID) error {
	defer s.lock()()

	if _, ok := s.data.replies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.data.replies, id)
	s.dropReactions(model.ReactionReplyLike, id)
	return nil
}

func (s *Store) ListRepliesByComments(ctx context.Context, commentIDs []uuid.UUID) ([]model.Reply, error) {
	defer s.lock()()

	comments := toSet(commentIDs)
	replies := make([]model.Reply, 0)
	for _, r := range s.data.replies {
		if comments[r.CommentID] {
			replies = append(replies, r)
		}
	}
	sort.Slice(replies, func(i, j int) bool { return replies[i].CreatedAt.Before(replies[j].CreatedAt) })
	return replies, nil
}

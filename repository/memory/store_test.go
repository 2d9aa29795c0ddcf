package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadsnet/model"
	"threadsnet/repository"
)

func newUser(t *testing.T, s *Store, username string) *model.User {
	t.Helper()
	u := &model.User{Name: username, Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestTransaction_RollbackRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx repository.Store) error {
		_, err := tx.AddRelationship(ctx, alice.ID, bob.ID, model.RelationshipFollow)
		require.NoError(t, err)
		require.NoError(t, tx.CreatePost(ctx, &model.Post{PostedBy: alice.ID, Text: "draft"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	followed, err := s.HasRelationship(ctx, alice.ID, bob.ID, model.RelationshipFollow)
	require.NoError(t, err)
	assert.False(t, followed)

	posts, err := s.ListPosts(ctx, model.PostQuery{})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestTransaction_CommitKeepsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")

	err := s.Transaction(ctx, func(tx repository.Store) error {
		_, err := tx.AddRelationship(ctx, alice.ID, bob.ID, model.RelationshipFollow)
		return err
	})
	require.NoError(t, err)

	followed, err := s.HasRelationship(ctx, alice.ID, bob.ID, model.RelationshipFollow)
	require.NoError(t, err)
	assert.True(t, followed)
}

func TestCreateUser_Duplicate(t *testing.T) {
	s := NewStore()
	newUser(t, s, "alice")

	err := s.CreateUser(context.Background(), &model.User{Name: "x", Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = s.CreateUser(context.Background(), &model.User{Name: "x", Username: "other", Email: "ALICE@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestFriendship_ConditionalTransitions(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")

	f := &model.Friendship{RequesterID: alice.ID, RecipientID: bob.ID, Status: model.FriendshipPending}
	require.NoError(t, s.CreateFriendship(ctx, f))

	dup := &model.Friendship{RequesterID: bob.ID, RecipientID: alice.ID, Status: model.FriendshipPending}
	assert.ErrorIs(t, s.CreateFriendship(ctx, dup), repository.ErrDuplicate)

	// 只有接收方可以迁移
	_, err := s.TransitionFriendship(ctx, f.ID, alice.ID, model.FriendshipPending, model.FriendshipAccepted)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := s.TransitionFriendship(ctx, f.ID, bob.ID, model.FriendshipPending, model.FriendshipRejected)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipRejected, got.Status)

	// 第二次迁移不再命中
	_, err = s.TransitionFriendship(ctx, f.ID, bob.ID, model.FriendshipPending, model.FriendshipAccepted)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	reopened, err := s.ReopenFriendship(ctx, f.ID, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipPending, reopened.Status)
	assert.Equal(t, bob.ID, reopened.RequesterID)
	assert.Equal(t, alice.ID, reopened.RecipientID)

	byPair, err := s.GetFriendshipByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, byPair.ID)

	deleted, err := s.DeleteFriendship(ctx, f.ID, model.FriendshipAccepted)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestReactions_SetSemantics(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")
	post := &model.Post{PostedBy: alice.ID, Text: "hi"}
	require.NoError(t, s.CreatePost(ctx, post))

	added, err := s.AddReaction(ctx, model.ReactionPostLike, post.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.AddReaction(ctx, model.ReactionPostLike, post.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, added)
	_, err = s.AddReaction(ctx, model.ReactionPostLike, post.ID, alice.ID)
	require.NoError(t, err)

	reactors, err := s.ListReactors(ctx, model.ReactionPostLike, []uuid.UUID{post.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID, alice.ID}, reactors[post.ID])

	require.NoError(t, s.DeletePost(ctx, post.ID))
	liked, err := s.ListReactedTargets(ctx, model.ReactionPostLike, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, liked)
}

func TestDeleteUser_CascadesGraphKeepsPosts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")

	_, err := s.AddRelationship(ctx, bob.ID, alice.ID, model.RelationshipFollow)
	require.NoError(t, err)
	require.NoError(t, s.CreateFriendship(ctx, &model.Friendship{RequesterID: alice.ID, RecipientID: bob.ID, Status: model.FriendshipPending}))
	require.NoError(t, s.CreatePost(ctx, &model.Post{PostedBy: alice.ID, Text: "still here"}))

	require.NoError(t, s.DeleteUser(ctx, alice.ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, alice.ID), repository.ErrNotFound)

	following, err := s.ListRelationshipTargets(ctx, bob.ID, model.RelationshipFollow)
	require.NoError(t, err)
	assert.Empty(t, following)

	_, err = s.GetFriendshipByPair(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	posts, err := s.ListPosts(ctx, model.PostQuery{AuthorIDs: []uuid.UUID{alice.ID}})
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestListPosts_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice := newUser(t, s, "alice")

	first := &model.Post{PostedBy: alice.ID, Text: "first"}
	second := &model.Post{PostedBy: alice.ID, Text: "second", Visibility: model.VisibilityPrivate}
	require.NoError(t, s.CreatePost(ctx, first))
	require.NoError(t, s.CreatePost(ctx, second))

	posts, err := s.ListPosts(ctx, model.PostQuery{})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)

	public, err := s.ListPosts(ctx, model.PostQuery{Visibilities: []model.Visibility{model.VisibilityPublic}})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, first.ID, public[0].ID)
}

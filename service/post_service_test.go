package service

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadsnet/model"
)

func TestPostService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	_, err := env.posts.CreatePost(env.ctx, alice.ID, &CreatePostRequest{PostedBy: alice.ID.String()})
	assert.True(t, IsValidation(err))

	_, err = env.posts.CreatePost(env.ctx, alice.ID, &CreatePostRequest{PostedBy: bob.ID.String(), Text: "hi"})
	assert.True(t, IsForbidden(err))

	_, err = env.posts.CreatePost(env.ctx, alice.ID, &CreatePostRequest{
		PostedBy: alice.ID.String(),
		Text:     strings.Repeat("a", DefaultMaxPostLength+1),
	})
	assert.True(t, IsValidation(err))

	_, err = env.posts.CreatePost(env.ctx, alice.ID, &CreatePostRequest{
		PostedBy:   alice.ID.String(),
		Text:       "hi",
		Visibility: "everyone",
	})
	assert.True(t, IsValidation(err))

	post, err := env.posts.CreatePost(env.ctx, alice.ID, &CreatePostRequest{
		PostedBy: alice.ID.String(),
		Text:     strings.Repeat("界", DefaultMaxPostLength),
	})
	require.NoError(t, err)
	assert.Equal(t, model.VisibilityPublic, post.Visibility)
	require.NotNil(t, post.Author)
	assert.Equal(t, "alice", post.Author.Username)
	assert.NotNil(t, post.Likes)
}

func TestPostService_ToggleLikeAndSave(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	post := env.post(t, alice, "hello", model.VisibilityPublic)

	liked, got, err := env.posts.ToggleLike(env.ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, []uuid.UUID{bob.ID}, got.Likes)

	liked, got, err = env.posts.ToggleLike(env.ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, got.Likes)

	saved, got, err := env.posts.ToggleSave(env.ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, []uuid.UUID{bob.ID}, got.SavedLists)
	assert.Empty(t, got.Likes)

	savedFeed, err := env.posts.SavedFeed(env.ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{post.ID}, postIDs(savedFeed))

	likedFeed, err := env.posts.LikedFeed(env.ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, likedFeed)

	_, _, err = env.posts.ToggleLike(env.ctx, bob.ID, uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestPostService_UpdateAndDeleteOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	post := env.post(t, alice, "hello", model.VisibilityPublic)

	text := "edited"
	_, err := env.posts.UpdatePost(env.ctx, bob.ID, post.ID, &UpdatePostRequest{Text: &text})
	assert.True(t, IsForbidden(err))

	_, err = env.posts.UpdatePost(env.ctx, alice.ID, post.ID, &UpdatePostRequest{})
	assert.True(t, IsValidation(err))

	updated, err := env.posts.UpdatePost(env.ctx, alice.ID, post.ID, &UpdatePostRequest{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	empty := ""
	_, err = env.posts.UpdatePost(env.ctx, alice.ID, post.ID, &UpdatePostRequest{Text: &empty})
	assert.True(t, IsValidation(err))

	private, err := env.posts.UpdateVisibility(env.ctx, alice.ID, post.ID, "private")
	require.NoError(t, err)
	assert.Equal(t, model.VisibilityPrivate, private.Visibility)

	assert.True(t, IsForbidden(env.posts.DeletePost(env.ctx, bob.ID, post.ID)))
	require.NoError(t, env.posts.DeletePost(env.ctx, alice.ID, post.ID))
	assert.True(t, IsNotFound(env.posts.DeletePost(env.ctx, alice.ID, post.ID)))
}

func TestPostService_GetPostCountsViews(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	post := env.post(t, alice, "hello", model.VisibilityPrivate)

	_, err := env.comments.CreateComment(env.ctx, bob.ID, post.ID, "first")
	require.NoError(t, err)

	got, comments, err := env.posts.GetPost(env.ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.NumberViews)
	require.Len(t, comments, 1)
	assert.Equal(t, []uuid.UUID{comments[0].ID}, got.Comments)

	got, _, err = env.posts.GetPost(env.ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.NumberViews)

	reposted, err := env.posts.Repost(env.ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, reposted.NumberViewsRepost)

	_, _, err = env.posts.GetPost(env.ctx, uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestPostService_DeleteCascadesComments(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	post := env.post(t, alice, "hello", model.VisibilityPublic)

	comment, err := env.comments.CreateComment(env.ctx, alice.ID, post.ID, "c")
	require.NoError(t, err)
	_, err = env.comments.CreateReply(env.ctx, alice.ID, comment.ID, "r")
	require.NoError(t, err)

	require.NoError(t, env.posts.DeletePost(env.ctx, alice.ID, post.ID))

	_, err = env.store.GetComment(env.ctx, comment.ID)
	assert.Error(t, err)
}

func TestPostService_TextIsModerated(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	_, err := env.moderation.AddWords(env.ctx, []string{"darn"})
	require.NoError(t, err)

	post := env.post(t, alice, "well Darn it", model.VisibilityPublic)
	assert.Equal(t, "well **** it", post.Text)
}

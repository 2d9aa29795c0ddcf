package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadsnet/model"
)

func TestCommentService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	post := env.post(t, alice, "hello", model.VisibilityPublic)

	_, err := env.comments.CreateComment(env.ctx, bob.ID, post.ID, "   ")
	assert.True(t, IsValidation(err))
	_, err = env.comments.CreateComment(env.ctx, bob.ID, uuid.New(), "hi")
	assert.True(t, IsNotFound(err))

	first, err := env.comments.CreateComment(env.ctx, bob.ID, post.ID, "first")
	require.NoError(t, err)
	require.NotNil(t, first.Author)
	assert.Equal(t, "bob", first.Author.Username)
	second, err := env.comments.CreateComment(env.ctx, alice.ID, post.ID, "second")
	require.NoError(t, err)

	_, err = env.comments.UpdateComment(env.ctx, alice.ID, first.ID, "hijack")
	assert.True(t, IsForbidden(err))

	updated, err := env.comments.UpdateComment(env.ctx, bob.ID, first.ID, "first!")
	require.NoError(t, err)
	assert.Equal(t, "first!", updated.TextComment)

	liked, c, err := env.comments.ToggleCommentLike(env.ctx, alice.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, []uuid.UUID{alice.ID}, c.Likes)

	list, err := env.comments.ListForPost(env.ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	assert.True(t, IsForbidden(env.comments.DeleteComment(env.ctx, alice.ID, first.ID)))
	require.NoError(t, env.comments.DeleteComment(env.ctx, bob.ID, first.ID))

	list, err = env.comments.ListForPost(env.ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestCommentService_RepliesBelongToComment(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	post := env.post(t, alice, "hello", model.VisibilityPublic)

	c1, err := env.comments.CreateComment(env.ctx, alice.ID, post.ID, "one")
	require.NoError(t, err)
	c2, err := env.comments.CreateComment(env.ctx, alice.ID, post.ID, "two")
	require.NoError(t, err)

	reply, err := env.comments.CreateReply(env.ctx, alice.ID, c1.ID, "reply")
	require.NoError(t, err)

	_, err = env.comments.UpdateReply(env.ctx, alice.ID, c2.ID, reply.ID, "moved")
	assert.True(t, IsNotFound(err))

	liked, got, err := env.comments.ToggleReplyLike(env.ctx, alice.ID, c1.ID, reply.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, []uuid.UUID{alice.ID}, got.Likes)

	list, err := env.comments.ListForPost(env.ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Len(t, list[0].Replies, 1)
	assert.Equal(t, reply.ID, list[0].Replies[0].ID)
	assert.Empty(t, list[1].Replies)
}

func TestCommentService_ReplyOwnershipPolicy(t *testing.T) {
	tests := []struct {
		policy           string
		commentAuthorCan bool
		replyAuthorCan   bool
	}{
		{string(ReplyAuthorPolicy), false, true},
		{string(CommentAuthorPolicy), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			env := newTestEnv(t)
			require.NoError(t, env.settings.UpdateSetting(env.ctx, model.SettingReplyOwnershipPolicy, tt.policy))
			assert.Equal(t, ReplyOwnershipPolicy(tt.policy), env.comments.Policy())

			alice := env.user(t, "alice")
			bob := env.user(t, "bob")
			post := env.post(t, alice, "hello", model.VisibilityPublic)
			comment, err := env.comments.CreateComment(env.ctx, alice.ID, post.ID, "comment")
			require.NoError(t, err)
			reply, err := env.comments.CreateReply(env.ctx, bob.ID, comment.ID, "reply")
			require.NoError(t, err)

			_, err = env.comments.UpdateReply(env.ctx, alice.ID, comment.ID, reply.ID, "by alice")
			assert.Equal(t, tt.commentAuthorCan, err == nil, "comment author update: %v", err)

			_, err = env.comments.UpdateReply(env.ctx, bob.ID, comment.ID, reply.ID, "by bob")
			assert.Equal(t, tt.replyAuthorCan, err == nil, "reply author update: %v", err)
			if err != nil {
				assert.True(t, IsForbidden(err))
			}

			deleter := bob
			if tt.commentAuthorCan {
				deleter = alice
			}
			require.NoError(t, env.comments.DeleteReply(env.ctx, deleter.ID, comment.ID, reply.ID))
		})
	}
}

func TestCommentService_DefaultPolicy(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, ReplyAuthorPolicy, env.comments.Policy())

	fallback := NewCommentService(env.store, nil, env.settings, CommentAuthorPolicy)
	assert.Equal(t, CommentAuthorPolicy, fallback.Policy())

	assert.Equal(t, ReplyAuthorPolicy, NewCommentService(env.store, nil, nil, "bogus").Policy())
}

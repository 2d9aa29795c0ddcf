package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadsnet/model"
)

func TestIsVisible_Rules(t *testing.T) {
	author := uuid.New()
	friend := uuid.New()
	follower := uuid.New()
	stranger := uuid.New()

	contexts := map[uuid.UUID]*GraphContext{
		author:   NewGraphContext(author, nil, nil, nil),
		friend:   NewGraphContext(friend, []uuid.UUID{author}, nil, nil),
		follower: NewGraphContext(follower, nil, []uuid.UUID{author}, nil),
		stranger: NewGraphContext(stranger, nil, nil, nil),
	}

	tests := []struct {
		visibility model.Visibility
		visibleTo  []uuid.UUID
		hiddenFrom []uuid.UUID
	}{
		{model.VisibilityPublic, []uuid.UUID{author, friend, follower, stranger}, nil},
		{model.VisibilityFriends, []uuid.UUID{author, friend}, []uuid.UUID{follower, stranger}},
		{model.VisibilityFollowers, []uuid.UUID{author, follower}, []uuid.UUID{friend, stranger}},
		{model.VisibilityPrivate, []uuid.UUID{author}, []uuid.UUID{friend, follower, stranger}},
	}

	for _, tt := range tests {
		t.Run(string(tt.visibility), func(t *testing.T) {
			post := &model.Post{ID: uuid.New(), PostedBy: author, Visibility: tt.visibility}
			for _, viewer := range tt.visibleTo {
				assert.True(t, IsVisible(viewer, post, contexts[viewer]))
			}
			for _, viewer := range tt.hiddenFrom {
				assert.False(t, IsVisible(viewer, post, contexts[viewer]))
			}
		})
	}
}

func TestIsVisible_UnknownVisibilityHidden(t *testing.T) {
	viewer := uuid.New()
	post := &model.Post{PostedBy: uuid.New(), Visibility: "unlisted"}
	assert.False(t, IsVisible(viewer, post, NewGraphContext(viewer, nil, nil, nil)))
}

func TestFilterVisible_DropsBlockedAuthorsKeepsOrder(t *testing.T) {
	viewer := uuid.New()
	blocked := uuid.New()
	other := uuid.New()
	posts := []model.Post{
		{ID: uuid.New(), PostedBy: other, Visibility: model.VisibilityPublic},
		{ID: uuid.New(), PostedBy: blocked, Visibility: model.VisibilityPublic},
		{ID: uuid.New(), PostedBy: viewer, Visibility: model.VisibilityPrivate},
		{ID: uuid.New(), PostedBy: other, Visibility: model.VisibilityPrivate},
	}

	gc := NewGraphContext(viewer, nil, nil, []uuid.UUID{blocked})
	got := FilterVisible(posts, gc)
	assert.Equal(t, []uuid.UUID{posts[0].ID, posts[2].ID}, postIDs(got))
}

func TestFeeds_FriendsOnlyPost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	carol := env.user(t, "carol")
	env.befriend(t, alice, bob)

	post := env.post(t, alice, "for friends", model.VisibilityFriends)

	bobFeed, err := env.posts.FriendFeed(env.ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{post.ID}, postIDs(bobFeed))

	aliceFeed, err := env.posts.FriendFeed(env.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{post.ID}, postIDs(aliceFeed))

	carolAll, err := env.posts.AllVisible(env.ctx, carol.ID)
	require.NoError(t, err)
	assert.Empty(t, carolAll)

	carolFriends, err := env.posts.FriendFeed(env.ctx, carol.ID)
	require.NoError(t, err)
	assert.Empty(t, carolFriends)
}

func TestFeeds_AcceptedFriendDoesNotFollowBack(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	env.befriend(t, alice, bob)

	aliceFollowers := env.post(t, alice, "alice followers", model.VisibilityFollowers)
	bobFollowers := env.post(t, bob, "bob followers", model.VisibilityFollowers)

	// bob 接受了请求但没有关注 alice
	bobAll, err := env.posts.AllVisible(env.ctx, bob.ID)
	require.NoError(t, err)
	assert.NotContains(t, postIDs(bobAll), aliceFollowers.ID)

	bobFollowing, err := env.posts.FollowingFeed(env.ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobFollowing)

	// 请求方在发送请求时已关注接收方
	aliceFollowing, err := env.posts.FollowingFeed(env.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bobFollowers.ID}, postIDs(aliceFollowing))
}

func TestFeeds_FollowingExcludesPrivate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	following, err := env.relationships.ToggleFollow(env.ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, following)

	public := env.post(t, alice, "public", model.VisibilityPublic)
	followers := env.post(t, alice, "followers", model.VisibilityFollowers)
	env.post(t, alice, "private", model.VisibilityPrivate)
	env.post(t, alice, "friends", model.VisibilityFriends)

	feed, err := env.posts.FollowingFeed(env.ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{followers.ID, public.ID}, postIDs(feed))
}

func TestFeeds_BlockHidesAuthor(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	_, err := env.relationships.ToggleFollow(env.ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	post := env.post(t, alice, "hello", model.VisibilityPublic)

	feed, err := env.posts.FollowingFeed(env.ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{post.ID}, postIDs(feed))

	require.NoError(t, env.relationships.BlockUser(env.ctx, bob.ID, alice.ID))

	feed, err = env.posts.FollowingFeed(env.ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, feed)

	public, err := env.posts.PublicFeed(env.ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, public)

	// 被拉黑的一方仍能看到拉黑者的公开帖子
	bobPost := env.post(t, bob, "from bob", model.VisibilityPublic)
	alicePublic, err := env.posts.PublicFeed(env.ctx, alice.ID)
	require.NoError(t, err)
	assert.Contains(t, postIDs(alicePublic), bobPost.ID)
}

func TestFeeds_AuthorSeesOwnPosts(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	var want []uuid.UUID
	for _, v := range []model.Visibility{model.VisibilityPublic, model.VisibilityFriends, model.VisibilityFollowers, model.VisibilityPrivate} {
		p := env.post(t, alice, string(v), v)
		want = append([]uuid.UUID{p.ID}, want...)
	}

	own, err := env.posts.UserPosts(env.ctx, alice.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, want, postIDs(own))

	bob := env.user(t, "bob")
	others, err := env.posts.UserPosts(env.ctx, bob.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{want[3]}, postIDs(others))
}

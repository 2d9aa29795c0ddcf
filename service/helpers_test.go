package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"threadsnet/model"
	"threadsnet/repository/memory"
	"threadsnet/session"
)

const testPassword = "secret1@A"

// fakePusher 记录推送；online 中的用户视为在线
type fakePusher struct {
	mu     sync.Mutex
	online map[uuid.UUID]bool
	pushed map[uuid.UUID][]model.WSMessage
}

func newFakePusher() *fakePusher {
	return &fakePusher{online: map[uuid.UUID]bool{}, pushed: map[uuid.UUID][]model.WSMessage{}}
}

func (p *fakePusher) SendTo(userID uuid.UUID, payload []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.online[userID] {
		return false
	}
	var ev model.WSMessage
	if err := json.Unmarshal(payload, &ev); err != nil {
		return false
	}
	p.pushed[userID] = append(p.pushed[userID], ev)
	return true
}

func (p *fakePusher) events(userID uuid.UUID) []model.WSMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.WSMessage(nil), p.pushed[userID]...)
}

type testEnv struct {
	ctx           context.Context
	store         *memory.Store
	sessions      *session.MemoryStore
	settings      *SystemSettingsService
	moderation    *ModerationService
	relationships *RelationshipService
	friends       *FriendService
	comments      *CommentService
	posts         *PostService
	conversations *ConversationService
	messages      *MessageService
	credentials   *CredentialService
	users         *UserService
	pusher        *fakePusher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	sessions := session.NewMemoryStore()

	settings := NewSystemSettingsService(store)
	require.NoError(t, settings.Init(ctx))

	moderation := NewModerationService(store, settings)
	relationships := NewRelationshipService(store)
	comments := NewCommentService(store, moderation, settings, ReplyAuthorPolicy)
	posts := NewPostService(store, relationships, comments, moderation, nil, 0)
	conversations := NewConversationService(store)
	pusher := newFakePusher()
	credentials := NewCredentialService(CredentialConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		BcryptCost:    bcrypt.MinCost,
	}, sessions)

	return &testEnv{
		ctx:           ctx,
		store:         store,
		sessions:      sessions,
		settings:      settings,
		moderation:    moderation,
		relationships: relationships,
		friends:       NewFriendService(store, nil),
		comments:      comments,
		posts:         posts,
		conversations: conversations,
		messages:      NewMessageService(store, conversations, relationships, pusher, nil, nil),
		credentials:   credentials,
		users:         NewUserService(store, credentials, relationships, nil),
		pusher:        pusher,
	}
}

func (e *testEnv) user(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := e.users.Register(e.ctx, &RegisterRequest{
		Name:     username,
		Email:    username + "@example.com",
		Username: username,
		Password: testPassword,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) post(t *testing.T, author *model.User, text string, visibility model.Visibility) *model.Post {
	t.Helper()
	p, err := e.posts.CreatePost(e.ctx, author.ID, &CreatePostRequest{
		PostedBy:   author.ID.String(),
		Text:       text,
		Visibility: string(visibility),
	})
	require.NoError(t, err)
	return p
}

// befriend a 发送请求，b 接受
func (e *testEnv) befriend(t *testing.T, a, b *model.User) {
	t.Helper()
	req, err := e.friends.SendRequest(e.ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = e.friends.AcceptRequest(e.ctx, req.ID, b.ID)
	require.NoError(t, err)
}

func postIDs(posts []model.Post) []uuid.UUID {
	ids := make([]uuid.UUID, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	return ids
}

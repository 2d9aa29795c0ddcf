package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"threadsnet/model"
)

var (
	// ErrNotFound 记录不存在，或条件更新未命中任何行
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 唯一约束冲突
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository 用户存储
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, update model.UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// RelationshipRepository 关注/拉黑有向边。Add/Remove 返回是否实际改变了数据
type RelationshipRepository interface {
	AddRelationship(ctx context.Context, userID, targetID uuid.UUID, relType string) (bool, error)
	RemoveRelationship(ctx context.Context, userID, targetID uuid.UUID, relType string) (bool, error)
	HasRelationship(ctx context.Context, userID, targetID uuid.UUID, relType string) (bool, error)
	// ListRelationshipTargets user -> ? 的所有目标
	ListRelationshipTargets(ctx context.Context, userID uuid.UUID, relType string) ([]uuid.UUID, error)
	// ListRelationshipSources ? -> target 的所有来源
	ListRelationshipSources(ctx context.Context, targetID uuid.UUID, relType string) ([]uuid.UUID, error)
}

// FriendshipRepository 好友请求存储。状态迁移均为条件更新，未命中返回 ErrNotFound
type FriendshipRepository interface {
	CreateFriendship(ctx context.Context, f *model.Friendship) error
	GetFriendship(ctx context.Context, id uuid.UUID) (*model.Friendship, error)
	GetFriendshipByPair(ctx context.Context, a, b uuid.UUID) (*model.Friendship, error)
	// TransitionFriendship WHERE id AND recipient AND status=from
	TransitionFriendship(ctx context.Context, id, recipientID uuid.UUID, from, to model.FriendshipStatus) (*model.Friendship, error)
	// ReopenFriendship WHERE id AND status=rejected，重写请求方向
	ReopenFriendship(ctx context.Context, id, requesterID, recipientID uuid.UUID) (*model.Friendship, error)
	// DeleteFriendship WHERE id AND status
	DeleteFriendship(ctx context.Context, id uuid.UUID, status model.FriendshipStatus) (bool, error)
	ListFriendships(ctx context.Context, userID uuid.UUID, status model.FriendshipStatus) ([]model.Friendship, error)
}

// PostRepository 帖子存储
type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, update model.PostUpdate) (*model.Post, error)
	// DeletePost 同时删除评论、回复以及相关点赞/收藏
	DeletePost(ctx context.Context, id uuid.UUID) error
	IncrementPostCounter(ctx context.Context, id uuid.UUID, counter model.PostCounter) (*model.Post, error)
	// ListPosts 按创建时间倒序
	ListPosts(ctx context.Context, query model.PostQuery) ([]model.Post, error)
}

// ReactionRepository 点赞/收藏集合
type ReactionRepository interface {
	AddReaction(ctx context.Context, kind model.ReactionKind, targetID, userID uuid.UUID) (bool, error)
	RemoveReaction(ctx context.Context, kind model.ReactionKind, targetID, userID uuid.UUID) (bool, error)
	// ListReactors 返回 target -> 用户列表（按加入时间升序）
	ListReactors(ctx context.Context, kind model.ReactionKind, targetIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
	ListReactedTargets(ctx context.Context, kind model.ReactionKind, userID uuid.UUID) ([]uuid.UUID, error)
}

// CommentRepository 评论与回复存储，列表均按创建时间升序
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	UpdateCommentText(ctx context.Context, id uuid.UUID, text string) (*model.Comment, error)
	// DeleteComment 同时删除回复及点赞
	DeleteComment(ctx context.Context, id uuid.UUID) error
	ListCommentsByPosts(ctx context.Context, postIDs []uuid.UUID) ([]model.Comment, error)

	CreateReply(ctx context.Context, reply *model.Reply) error
	GetReply(ctx context.Context, id uuid.UUID) (*model.Reply, error)
	UpdateReplyText(ctx context.Context, id uuid.UUID, text string) (*model.Reply, error)
	DeleteReply(ctx context.Context, id uuid.UUID) error
	ListRepliesByComments(ctx context.Context, commentIDs []uuid.UUID) ([]model.Reply, error)
}

// MessageRepository 会话与消息存储
type MessageRepository interface {
	GetConversation(ctx context.Context, id uuid.UUID) (*model.Conversation, error)
	GetConversationByPair(ctx context.Context, a, b uuid.UUID) (*model.Conversation, error)
	CreateConversation(ctx context.Context, conv *model.Conversation) error
	UpdateConversationLastMessage(ctx context.Context, id uuid.UUID, text string, senderID uuid.UUID) error
	// ListConversationsByUser 按更新时间倒序
	ListConversationsByUser(ctx context.Context, userID uuid.UUID) ([]model.Conversation, error)
	CreateMessage(ctx context.Context, msg *model.Message) error
	// ListMessages 按创建时间升序
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]model.Message, error)
}

// SensitiveWordRepository 敏感词存储
type SensitiveWordRepository interface {
	ListSensitiveWords(ctx context.Context) ([]model.SensitiveWord, error)
	// AddSensitiveWords 已存在的词忽略，返回实际新增数量
	AddSensitiveWords(ctx context.Context, words []string) (int, error)
	DeleteSensitiveWord(ctx context.Context, word string) (bool, error)
}

// SettingsRepository 系统配置存储
type SettingsRepository interface {
	ListSettings(ctx context.Context) ([]model.SystemSettings, error)
	UpdateSetting(ctx context.Context, key, value string, updatedAt time.Time) (bool, error)
	// EnsureSettings 插入缺失的配置项，已有的不覆盖
	EnsureSettings(ctx context.Context, defaults []model.SystemSettings) error
}

// Store 聚合所有存储接口
type Store interface {
	UserRepository
	RelationshipRepository
	FriendshipRepository
	PostRepository
	ReactionRepository
	CommentRepository
	MessageRepository
	SensitiveWordRepository
	SettingsRepository

	// Transaction fn 返回错误时回滚全部写入
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

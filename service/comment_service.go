package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"threadsnet/model"
	"threadsnet/repository"
)

// ReplyOwnershipPolicy 回复的修改/删除权限归属
type ReplyOwnershipPolicy string

const (
	// ReplyAuthorPolicy 只有回复作者本人可以修改/删除
	ReplyAuthorPolicy ReplyOwnershipPolicy = "reply_author"
	// CommentAuthorPolicy 评论作者可以修改/删除其下所有回复
	CommentAuthorPolicy ReplyOwnershipPolicy = "comment_author"
)

func (p ReplyOwnershipPolicy) Valid() bool {
	return p == ReplyAuthorPolicy || p == CommentAuthorPolicy
}

// CommentService 评论与回复
type CommentService struct {
	store         repository.Store
	moderation    *ModerationService
	settings      *SystemSettingsService
	defaultPolicy ReplyOwnershipPolicy
}

func NewCommentService(store repository.Store, moderation *ModerationService, settings *SystemSettingsService, defaultPolicy ReplyOwnershipPolicy) *CommentService {
	if !defaultPolicy.Valid() {
		defaultPolicy = ReplyAuthorPolicy
	}
	return &CommentService{
		store:         store,
		moderation:    moderation,
		settings:      settings,
		defaultPolicy: defaultPolicy,
	}
}

// Policy 当前生效的回复权限策略，系统配置优先于启动参数
func (s *CommentService) Policy() ReplyOwnershipPolicy {
	if s.settings != nil {
		if value, ok := s.settings.GetSetting(model.SettingReplyOwnershipPolicy); ok {
			if p := ReplyOwnershipPolicy(value); p.Valid() {
				return p
			}
		}
	}
	return s.defaultPolicy
}

func (s *CommentService) filter(ctx context.Context, text string) string {
	if s.moderation == nil {
		return text
	}
	return s.moderation.Filter(ctx, text)
}

func requireText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", NewError(KindValidation, "textComment is required")
	}
	return text, nil
}

// CreateComment 发表评论
func (s *CommentService) CreateComment(ctx context.Context, actorID, postID uuid.UUID, text string) (*model.Comment, error) {
	text, err := requireText(text)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, storeError(err, "Post not found")
	}

	comment := &model.Comment{
		PostID:      postID,
		UserID:      actorID,
		TextComment: s.filter(ctx, text),
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, storeError(err, "Post not found")
	}
	return s.hydrateOne(ctx, comment)
}

func (s *CommentService) ownComment(ctx context.Context, actorID, commentID uuid.UUID) (*model.Comment, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, storeError(err, "Comment not found")
	}
	if comment.UserID != actorID {
		return nil, NewError(KindForbidden, "You are not authorized to modify this comment")
	}
	return comment, nil
}

// UpdateComment 修改评论，仅作者本人
func (s *CommentService) UpdateComment(ctx context.Context, actorID, commentID uuid.UUID, text string) (*model.Comment, error) {
	text, err := requireText(text)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownComment(ctx, actorID, commentID); err != nil {
		return nil, err
	}
	comment, err := s.store.UpdateCommentText(ctx, commentID, s.filter(ctx, text))
	if err != nil {
		return nil, storeError(err, "Comment not found")
	}
	return s.hydrateOne(ctx, comment)
}

// DeleteComment 删除评论及其回复和点赞
func (s *CommentService) DeleteComment(ctx context.Context, actorID, commentID uuid.UUID) error {
	if _, err := s.ownComment(ctx, actorID, commentID); err != nil {
		return err
	}
	return storeError(s.store.DeleteComment(ctx, commentID), "Comment not found")
}

// ToggleCommentLike 点赞/取消点赞评论
func (s *CommentService) ToggleCommentLike(ctx context.Context, actorID, commentID uuid.UUID) (bool, *model.Comment, error) {
	if _, err := s.store.GetComment(ctx, commentID); err != nil {
		return false, nil, storeError(err, "Comment not found")
	}
	liked, err := toggleReaction(ctx, s.store, model.ReactionCommentLike, commentID, actorID)
	if err != nil {
		return false, nil, err
	}
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return false, nil, storeError(err, "Comment not found")
	}
	hydrated, err := s.hydrateOne(ctx, comment)
	return liked, hydrated, err
}

// CreateReply 回复评论
func (s *CommentService) CreateReply(ctx context.Context, actorID, commentID uuid.UUID, text string) (*model.Reply, error) {
	text, err := requireText(text)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetComment(ctx, commentID); err != nil {
		return nil, storeError(err, "Comment not found")
	}

	reply := &model.Reply{
		CommentID:   commentID,
		UserID:      actorID,
		TextComment: s.filter(ctx, text),
	}
	if err := s.store.CreateReply(ctx, reply); err != nil {
		return nil, storeError(err, "Comment not found")
	}
	return s.hydrateReply(ctx, reply)
}

// replyOf 回复必须属于该评论
func (s *CommentService) replyOf(ctx context.Context, commentID, replyID uuid.UUID) (*model.Comment, *model.Reply, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, nil, storeError(err, "Comment not found")
	}
	reply, err := s.store.GetReply(ctx, replyID)
	if err != nil {
		return nil, nil, storeError(err, "Reply not found")
	}
	if reply.CommentID != comment.ID {
		return nil, nil, NewError(KindNotFound, "Reply not found")
	}
	return comment, reply, nil
}

func (s *CommentService) canModifyReply(actorID uuid.UUID, comment *model.Comment, reply *model.Reply) bool {
	if s.Policy() == CommentAuthorPolicy {
		return comment.UserID == actorID
	}
	return reply.UserID == actorID
}

// UpdateReply 修改回复，权限由 Policy 决定
func (s *CommentService) UpdateReply(ctx context.Context, actorID, commentID, replyID uuid.UUID, text string) (*model.Reply, error) {
	text, err := requireText(text)
	if err != nil {
		return nil, err
	}
	comment, reply, err := s.replyOf(ctx, commentID, replyID)
	if err != nil {
		return nil, err
	}
	if !s.canModifyReply(actorID, comment, reply) {
		return nil, NewError(KindForbidden, "You are not authorized to modify this reply")
	}
	updated, err := s.store.UpdateReplyText(ctx, replyID, s.filter(ctx, text))
	if err != nil {
		return nil, storeError(err, "Reply not found")
	}
	return s.hydrateReply(ctx, updated)
}

// DeleteReply 删除回复，权限由 Policy 决定
func (s *CommentService) DeleteReply(ctx context.Context, actorID, commentID, replyID uuid.UUID) error {
	comment, reply, err := s.replyOf(ctx, commentID, replyID)
	if err != nil {
		return err
	}
	if !s.canModifyReply(actorID, comment, reply) {
		return NewError(KindForbidden, "You are not authorized to delete this reply")
	}
	return storeError(s.store.DeleteReply(ctx, replyID), "Reply not found")
}

// ToggleReplyLike 点赞/取消点赞回复，以 (commentId, replyId) 定位
func (s *CommentService) ToggleReplyLike(ctx context.Context, actorID, commentID, replyID uuid.UUID) (bool, *model.Reply, error) {
	if _, _, err := s.replyOf(ctx, commentID, replyID); err != nil {
		return false, nil, err
	}
	liked, err := toggleReaction(ctx, s.store, model.ReactionReplyLike, replyID, actorID)
	if err != nil {
		return false, nil, err
	}
	reply, err := s.store.GetReply(ctx, replyID)
	if err != nil {
		return false, nil, storeError(err, "Reply not found")
	}
	hydrated, err := s.hydrateReply(ctx, reply)
	return liked, hydrated, err
}

// ListForPost 帖子的评论（升序），每条评论附带回复（升序）
func (s *CommentService) ListForPost(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, storeError(err, "Post not found")
	}
	comments, err := s.store.ListCommentsByPosts(ctx, []uuid.UUID{postID})
	if err != nil {
		return nil, storeError(err, "Post not found")
	}
	if err := s.hydrate(ctx, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *CommentService) hydrateOne(ctx context.Context, comment *model.Comment) (*model.Comment, error) {
	list := []model.Comment{*comment}
	if err := s.hydrate(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *CommentService) hydrateReply(ctx context.Context, reply *model.Reply) (*model.Reply, error) {
	list := []model.Reply{*reply}
	if err := s.hydrateReplies(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// hydrate 读时关联作者信息、点赞和回复
func (s *CommentService) hydrate(ctx context.Context, comments []model.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(comments))
	userIDs := make([]uuid.UUID, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
		userIDs[i] = comments[i].UserID
	}

	likes, err := s.store.ListReactors(ctx, model.ReactionCommentLike, ids)
	if err != nil {
		return storeError(err, "Comment not found")
	}
	replies, err := s.store.ListRepliesByComments(ctx, ids)
	if err != nil {
		return storeError(err, "Comment not found")
	}
	if err := s.hydrateReplies(ctx, replies); err != nil {
		return err
	}
	authors, err := loadSummaries(ctx, s.store, userIDs)
	if err != nil {
		return err
	}

	byComment := make(map[uuid.UUID][]model.Reply, len(comments))
	for _, r := range replies {
		byComment[r.CommentID] = append(byComment[r.CommentID], r)
	}
	for i := range comments {
		c := &comments[i]
		c.Likes = nonNil(likes[c.ID])
		c.Replies = byComment[c.ID]
		if c.Replies == nil {
			c.Replies = []model.Reply{}
		}
		if author, ok := authors[c.UserID]; ok {
			c.Author = &author
		}
	}
	return nil
}

func (s *CommentService) hydrateReplies(ctx context.Context, replies []model.Reply) error {
	if len(replies) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(replies))
	userIDs := make([]uuid.UUID, len(replies))
	for i := range replies {
		ids[i] = replies[i].ID
		userIDs[i] = replies[i].UserID
	}
	likes, err := s.store.ListReactors(ctx, model.ReactionReplyLike, ids)
	if err != nil {
		return storeError(err, "Reply not found")
	}
	authors, err := loadSummaries(ctx, s.store, userIDs)
	if err != nil {
		return err
	}
	for i := range replies {
		r := &replies[i]
		r.Likes = nonNil(likes[r.ID])
		if author, ok := authors[r.UserID]; ok {
			r.Author = &author
		}
	}
	return nil
}

// toggleReaction 先尝试删除，未删除则插入；两步均为单语句原子操作
func toggleReaction(ctx context.Context, repo repository.ReactionRepository, kind model.ReactionKind, targetID, userID uuid.UUID) (bool, error) {
	removed, err := repo.RemoveReaction(ctx, kind, targetID, userID)
	if err != nil {
		return false, storeError(err, "record not found")
	}
	if removed {
		return false, nil
	}
	if _, err := repo.AddReaction(ctx, kind, targetID, userID); err != nil {
		return false, storeError(err, "record not found")
	}
	return true, nil
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"threadsnet/model"
	"threadsnet/repository"
	"threadsnet/storage"
)

// DefaultMaxPostLength 帖子正文最大字符数
const DefaultMaxPostLength = 500

// PostService 帖子聚合：发帖、修改、删除、点赞、收藏、转发计数与各类信息流
type PostService struct {
	store         repository.Store
	relationships *RelationshipService
	comments      *CommentService
	moderation    *ModerationService
	media         storage.MediaService
	maxLength     int
}

func NewPostService(
	store repository.Store,
	relationships *RelationshipService,
	comments *CommentService,
	moderation *ModerationService,
	media storage.MediaService,
	maxLength int,
) *PostService {
	if maxLength <= 0 {
		maxLength = DefaultMaxPostLength
	}
	return &PostService{
		store:         store,
		relationships: relationships,
		comments:      comments,
		moderation:    moderation,
		media:         media,
		maxLength:     maxLength,
	}
}

// CreatePostRequest 发帖请求
type CreatePostRequest struct {
	PostedBy   string `json:"postedBy"`
	Text       string `json:"text"`
	Image      string `json:"img"`
	Visibility string `json:"visibility"`
}

// UpdatePostRequest 修改帖子，nil 字段不修改
type UpdatePostRequest struct {
	Text       *string `json:"text"`
	Image      *string `json:"img"`
	Visibility *string `json:"visibility"`
}

func (s *PostService) filter(ctx context.Context, text string) string {
	if s.moderation == nil {
		return text
	}
	return s.moderation.Filter(ctx, text)
}

func (s *PostService) checkLength(text string) error {
	if utf8.RuneCountInString(text) > s.maxLength {
		return NewError(KindValidation, fmt.Sprintf("Text must be less than %d characters", s.maxLength))
	}
	return nil
}

func parseVisibility(raw string) (model.Visibility, error) {
	if raw == "" {
		return model.VisibilityPublic, nil
	}
	v := model.Visibility(strings.ToLower(raw))
	if !v.Valid() {
		return "", NewError(KindValidation, "visibility must be one of public, friends, followers, private")
	}
	return v, nil
}

func (s *PostService) uploadImage(ctx context.Context, image string) (string, error) {
	url, err := storage.UploadImage(ctx, s.media, "posts", image)
	if errors.Is(err, storage.ErrInvalidImage) {
		return "", WrapError(KindValidation, "invalid image", err)
	}
	if err != nil {
		return "", WrapError(KindInternal, "failed to upload image", err)
	}
	return url, nil
}

func (s *PostService) deleteImage(ctx context.Context, url string) {
	if url == "" || s.media == nil {
		return
	}
	if err := s.media.Delete(ctx, url); err != nil {
		zap.L().Warn("failed to delete post image", zap.String("url", url), zap.Error(err))
	}
}

// CreatePost 发帖，postedBy 必须是当前用户
func (s *PostService) CreatePost(ctx context.Context, actorID uuid.UUID, req *CreatePostRequest) (*model.Post, error) {
	text := strings.TrimSpace(req.Text)
	if req.PostedBy == "" || (text == "" && strings.TrimSpace(req.Image) == "") {
		return nil, NewError(KindValidation, "postedBy and text or image fields are required")
	}
	postedBy, err := uuid.Parse(req.PostedBy)
	if err != nil || postedBy != actorID {
		return nil, NewError(KindForbidden, "Unauthorized to create post")
	}
	if err := s.checkLength(text); err != nil {
		return nil, err
	}
	visibility, err := parseVisibility(req.Visibility)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetUserByID(ctx, actorID); err != nil {
		return nil, storeError(err, "User not found")
	}

	image, err := s.uploadImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		PostedBy:   actorID,
		Text:       s.filter(ctx, text),
		Image:      image,
		Visibility: visibility,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		s.deleteImage(ctx, image)
		return nil, storeError(err, "User not found")
	}

	zap.L().Info("post created", zap.String("post_id", post.ID.String()), zap.String("user_id", actorID.String()))
	return s.hydrateOne(ctx, post)
}

func (s *PostService) ownPost(ctx context.Context, actorID, postID uuid.UUID, action string) (*model.Post, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, storeError(err, "Post not found")
	}
	if post.PostedBy != actorID {
		return nil, NewError(KindForbidden, "Unauthorized to "+action+" post")
	}
	return post, nil
}

// UpdatePost 修改帖子，仅作者，至少一个字段
func (s *PostService) UpdatePost(ctx context.Context, actorID, postID uuid.UUID, req *UpdatePostRequest) (*model.Post, error) {
	if req.Text == nil && req.Image == nil && req.Visibility == nil {
		return nil, NewError(KindValidation, "At least one field is required to update")
	}
	existing, err := s.ownPost(ctx, actorID, postID, "update")
	if err != nil {
		return nil, err
	}

	var update model.PostUpdate
	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if err := s.checkLength(text); err != nil {
			return nil, err
		}
		text = s.filter(ctx, text)
		update.Text = &text
	}
	if req.Visibility != nil {
		v, err := parseVisibility(*req.Visibility)
		if err != nil {
			return nil, err
		}
		update.Visibility = &v
	}

	var newImage string
	if req.Image != nil && *req.Image != existing.Image {
		if newImage, err = s.uploadImage(ctx, *req.Image); err != nil {
			return nil, err
		}
		update.Image = &newImage
	}

	remainingText, remainingImage := existing.Text, existing.Image
	if update.Text != nil {
		remainingText = *update.Text
	}
	if update.Image != nil {
		remainingImage = *update.Image
	}
	if remainingText == "" && remainingImage == "" {
		s.deleteImage(ctx, newImage)
		return nil, NewError(KindValidation, "post must keep text or an image")
	}

	post, err := s.store.UpdatePost(ctx, postID, update)
	if err != nil {
		s.deleteImage(ctx, newImage)
		return nil, storeError(err, "Post not found")
	}
	if update.Image != nil && existing.Image != "" {
		s.deleteImage(ctx, existing.Image)
	}
	return s.hydrateOne(ctx, post)
}

// UpdateVisibility 仅修改可见性
func (s *PostService) UpdateVisibility(ctx context.Context, actorID, postID uuid.UUID, visibility string) (*model.Post, error) {
	if visibility == "" {
		return nil, NewError(KindValidation, "visibility is required")
	}
	return s.UpdatePost(ctx, actorID, postID, &UpdatePostRequest{Visibility: &visibility})
}

// DeletePost 删除帖子，提交后再删除图片
func (s *PostService) DeletePost(ctx context.Context, actorID, postID uuid.UUID) error {
	post, err := s.ownPost(ctx, actorID, postID, "delete")
	if err != nil {
		return err
	}
	if err := s.store.DeletePost(ctx, postID); err != nil {
		return storeError(err, "Post not found")
	}
	s.deleteImage(ctx, post.Image)

	zap.L().Info("post deleted", zap.String("post_id", postID.String()), zap.String("user_id", actorID.String()))
	return nil
}

// GetPost 按 id 获取帖子并增加浏览数，附带评论。按 id 直接访问不做可见性校验
func (s *PostService) GetPost(ctx context.Context, postID uuid.UUID) (*model.Post, []model.Comment, error) {
	post, err := s.store.IncrementPostCounter(ctx, postID, model.CounterViews)
	if err != nil {
		return nil, nil, storeError(err, "Post not found")
	}
	hydrated, err := s.hydrateOne(ctx, post)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListForPost(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return hydrated, comments, nil
}

// ToggleLike 点赞/取消点赞
func (s *PostService) ToggleLike(ctx context.Context, actorID, postID uuid.UUID) (bool, *model.Post, error) {
	return s.toggle(ctx, model.ReactionPostLike, actorID, postID)
}

// ToggleSave 收藏/取消收藏
func (s *PostService) ToggleSave(ctx context.Context, actorID, postID uuid.UUID) (bool, *model.Post, error) {
	return s.toggle(ctx, model.ReactionPostSave, actorID, postID)
}

func (s *PostService) toggle(ctx context.Context, kind model.ReactionKind, actorID, postID uuid.UUID) (bool, *model.Post, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return false, nil, storeError(err, "Post not found")
	}
	member, err := toggleReaction(ctx, s.store, kind, postID, actorID)
	if err != nil {
		return false, nil, err
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return false, nil, storeError(err, "Post not found")
	}
	hydrated, err := s.hydrateOne(ctx, post)
	return member, hydrated, err
}

// Repost 转发只增加计数，不创建新帖子
func (s *PostService) Repost(ctx context.Context, postID uuid.UUID) (*model.Post, error) {
	post, err := s.store.IncrementPostCounter(ctx, postID, model.CounterReposts)
	if err != nil {
		return nil, storeError(err, "Post not found")
	}
	return s.hydrateOne(ctx, post)
}

// AllVisible 观看者可见的全部帖子
func (s *PostService) AllVisible(ctx context.Context, viewer uuid.UUID) ([]model.Post, error) {
	return s.feed(ctx, viewer, model.PostQuery{})
}

// PublicFeed 公开帖子
func (s *PostService) PublicFeed(ctx context.Context, viewer uuid.UUID) ([]model.Post, error) {
	return s.feed(ctx, viewer, model.PostQuery{
		Visibilities: []model.Visibility{model.VisibilityPublic},
	})
}

// FollowingFeed 关注的人发布的非私密帖子
func (s *PostService) FollowingFeed(ctx context.Context, viewer uuid.UUID) ([]model.Post, error) {
	following, err := s.relationships.Following(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if len(following) == 0 {
		return []model.Post{}, nil
	}
	return s.feed(ctx, viewer, model.PostQuery{
		AuthorIDs: following,
		Visibilities: []model.Visibility{
			model.VisibilityPublic,
			model.VisibilityFriends,
			model.VisibilityFollowers,
		},
	})
}

// FriendFeed 自己与好友发布的好友可见帖子
func (s *PostService) FriendFeed(ctx context.Context, viewer uuid.UUID) ([]model.Post, error) {
	friends, err := s.relationships.FriendIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return s.feed(ctx, viewer, model.PostQuery{
		AuthorIDs:    append(friends, viewer),
		Visibilities: []model.Visibility{model.VisibilityFriends},
	})
}

// LikedFeed 点赞过的帖子
func (s *PostService) LikedFeed(ctx context.Context, viewer uuid.UUID) ([]model.Post, error) {
	return s.reactedFeed(ctx, viewer, model.ReactionPostLike)
}

// SavedFeed 收藏的帖子
func (s *PostService) SavedFeed(ctx context.Context, viewer uuid.UUID) ([]model.Post, error) {
	return s.reactedFeed(ctx, viewer, model.ReactionPostSave)
}

func (s *PostService) reactedFeed(ctx context.Context, viewer uuid.UUID, kind model.ReactionKind) ([]model.Post, error) {
	ids, err := s.store.ListReactedTargets(ctx, kind, viewer)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	if len(ids) == 0 {
		return []model.Post{}, nil
	}
	return s.feed(ctx, viewer, model.PostQuery{PostIDs: ids})
}

// UserPosts 某用户的帖子；本人查看时返回全部
func (s *PostService) UserPosts(ctx context.Context, viewer uuid.UUID, username string) ([]model.Post, error) {
	owner, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return s.feed(ctx, viewer, model.PostQuery{AuthorIDs: []uuid.UUID{owner.ID}})
}

// feed 查询后按可见性与黑名单过滤，保持时间倒序
func (s *PostService) feed(ctx context.Context, viewer uuid.UUID, query model.PostQuery) ([]model.Post, error) {
	gc, err := s.relationships.Context(ctx, viewer)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.ListPosts(ctx, query)
	if err != nil {
		return nil, storeError(err, "Post not found")
	}
	visible := FilterVisible(posts, gc)
	if err := s.hydrate(ctx, visible); err != nil {
		return nil, err
	}
	return visible, nil
}

func (s *PostService) hydrateOne(ctx context.Context, post *model.Post) (*model.Post, error) {
	list := []model.Post{*post}
	if err := s.hydrate(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// hydrate 读时关联作者、点赞、收藏和评论 id
func (s *PostService) hydrate(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	authorIDs := make([]uuid.UUID, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		authorIDs[i] = posts[i].PostedBy
	}

	likes, err := s.store.ListReactors(ctx, model.ReactionPostLike, ids)
	if err != nil {
		return storeError(err, "Post not found")
	}
	saves, err := s.store.ListReactors(ctx, model.ReactionPostSave, ids)
	if err != nil {
		return storeError(err, "Post not found")
	}
	comments, err := s.store.ListCommentsByPosts(ctx, ids)
	if err != nil {
		return storeError(err, "Post not found")
	}
	authors, err := loadSummaries(ctx, s.store, authorIDs)
	if err != nil {
		return err
	}

	commentIDs := make(map[uuid.UUID][]uuid.UUID, len(posts))
	for _, c := range comments {
		commentIDs[c.PostID] = append(commentIDs[c.PostID], c.ID)
	}
	for i := range posts {
		p := &posts[i]
		p.Likes = nonNil(likes[p.ID])
		p.SavedLists = nonNil(saves[p.ID])
		p.Comments = nonNil(commentIDs[p.ID])
		if author, ok := authors[p.PostedBy]; ok {
			p.Author = &author
		}
	}
	return nil
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"threadsnet/model"
	"threadsnet/service"
	"threadsnet/utils"
)

type PostHandler struct {
	postSvc *service.PostService
}

func NewPostHandler(postSvc *service.PostService) *PostHandler {
	return &PostHandler{postSvc: postSvc}
}

// CreatePost POST /api/post/createPost
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "postedBy and text or image fields are required")
		return
	}
	post, err := h.postSvc.CreatePost(c.Request.Context(), userID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.Created(c, "Created post successfully", "newPost", post)
}

// GetPost GET /api/post/:postId
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	post, comments, err := h.postSvc.GetPost(c.Request.Context(), postID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": post, "comments": comments})
}

// UpdatePost PUT /api/post/:postId
func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	var req service.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "At least one field is required to update")
		return
	}
	post, err := h.postSvc.UpdatePost(c.Request.Context(), userID, postID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "updatePost", post)
}

// UpdateVisibility PUT /api/post/visibility/:postId
func (h *PostHandler) UpdateVisibility(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	var req struct {
		Visibility string `json:"visibility"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "visibility is required")
		return
	}
	post, err := h.postSvc.UpdateVisibility(c.Request.Context(), userID, postID, req.Visibility)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Visibility updated successfully", "post", post)
}

// DeletePost DELETE /api/post/:postId
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	if err := h.postSvc.DeletePost(c.Request.Context(), userID, postID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Deleted post successfully", "deletePost", postID)
}

// LikePost PUT /api/post/liked/:postId
func (h *PostHandler) LikePost(c *gin.Context) {
	h.toggle(c, h.postSvc.ToggleLike, "Liked post successfully", "Unliked post successfully")
}

// SavePost PUT /api/post/saved/:postId
func (h *PostHandler) SavePost(c *gin.Context) {
	h.toggle(c, h.postSvc.ToggleSave, "Saved post successfully", "Unsaved post successfully")
}

func (h *PostHandler) toggle(
	c *gin.Context,
	fn func(ctx context.Context, actorID, postID uuid.UUID) (bool, *model.Post, error),
	onMessage, offMessage string,
) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	member, post, err := fn(c.Request.Context(), userID, postID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	message := offMessage
	if member {
		message = onMessage
	}
	utils.SuccessWithMessage(c, message, "response", post)
}

// RepostPost PUT /api/post/reposted/:postId
func (h *PostHandler) RepostPost(c *gin.Context) {
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	post, err := h.postSvc.Repost(c.Request.Context(), postID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Reposted post successfully", "post", post)
}

// writeFeed 信息流接口的公共部分
func (h *PostHandler) writeFeed(c *gin.Context, key string, fn func(ctx context.Context, viewer uuid.UUID) ([]model.Post, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	posts, err := fn(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, key, posts)
}

// GetAllPosts GET /api/post/getAllPosts
func (h *PostHandler) GetAllPosts(c *gin.Context) {
	h.writeFeed(c, "posts", h.postSvc.AllVisible)
}

// PublicFeed GET /api/post/public
func (h *PostHandler) PublicFeed(c *gin.Context) {
	h.writeFeed(c, "publicPosts", h.postSvc.PublicFeed)
}

// FollowingFeed GET /api/post/following
func (h *PostHandler) FollowingFeed(c *gin.Context) {
	h.writeFeed(c, "followingPosts", h.postSvc.FollowingFeed)
}

// FriendFeed GET /api/post/friends
func (h *PostHandler) FriendFeed(c *gin.Context) {
	h.writeFeed(c, "friendPosts", h.postSvc.FriendFeed)
}

// LikedFeed GET /api/post/liked
func (h *PostHandler) LikedFeed(c *gin.Context) {
	h.writeFeed(c, "likedPosts", h.postSvc.LikedFeed)
}

// SavedFeed GET /api/post/saved
func (h *PostHandler) SavedFeed(c *gin.Context) {
	h.writeFeed(c, "savedPosts", h.postSvc.SavedFeed)
}

// UserPosts GET /api/post/user/:username
func (h *PostHandler) UserPosts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	posts, err := h.postSvc.UserPosts(c.Request.Context(), userID, c.Param("username"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "posts", posts)
}

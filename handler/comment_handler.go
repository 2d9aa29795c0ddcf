package handler

import (
	"github.com/gin-gonic/gin"

	"threadsnet/service"
	"threadsnet/utils"
)

type CommentHandler struct {
	commentSvc *service.CommentService
}

func NewCommentHandler(commentSvc *service.CommentService) *CommentHandler {
	return &CommentHandler{commentSvc: commentSvc}
}

type commentBody struct {
	TextComment string `json:"textComment"`
}

// CreateComment POST /api/comment/:postId
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	var req commentBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "textComment is required")
		return
	}
	comment, err := h.commentSvc.CreateComment(c.Request.Context(), userID, postID, req.TextComment)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.Created(c, "Create new comment successfully", "newComment", comment)
}

// GetPostComments GET /api/comment/post/:postId
func (h *CommentHandler) GetPostComments(c *gin.Context) {
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	comments, err := h.commentSvc.ListForPost(c.Request.Context(), postID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "comments", comments)
}

// UpdateComment PUT /api/comment/:commentId
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	var req commentBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "textComment is required")
		return
	}
	comment, err := h.commentSvc.UpdateComment(c.Request.Context(), userID, commentID, req.TextComment)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Update comment successfully", "comment", comment)
}

// DeleteComment DELETE /api/comment/:commentId
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	if err := h.commentSvc.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Delete comment successfully", "", nil)
}

// LikeComment POST /api/comment/like/:commentId
func (h *CommentHandler) LikeComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	liked, comment, err := h.commentSvc.ToggleCommentLike(c.Request.Context(), userID, commentID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	message := "Unliked comment successfully"
	if liked {
		message = "Liked comment successfully"
	}
	utils.SuccessWithMessage(c, message, "comment", comment)
}

// CreateReply POST /api/comment/create/reply/:commentId
func (h *CommentHandler) CreateReply(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	var req commentBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "textComment is required")
		return
	}
	reply, err := h.commentSvc.CreateReply(c.Request.Context(), userID, commentID, req.TextComment)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.Created(c, "Create reply successfully", "reply", reply)
}

// UpdateReply PUT /api/comment/update/:commentId/reply/:replyId
func (h *CommentHandler) UpdateReply(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	replyID, ok := paramID(c, "replyId")
	if !ok {
		return
	}
	var req commentBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "textComment is required")
		return
	}
	reply, err := h.commentSvc.UpdateReply(c.Request.Context(), userID, commentID, replyID, req.TextComment)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Update reply successfully", "reply", reply)
}

// DeleteReply DELETE /api/comment/delete/:commentId/reply/:replyId
func (h *CommentHandler) DeleteReply(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	replyID, ok := paramID(c, "replyId")
	if !ok {
		return
	}
	if err := h.commentSvc.DeleteReply(c.Request.Context(), userID, commentID, replyID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Delete reply successfully", "", nil)
}

// LikeReply POST /api/comment/like/:commentId/reply/:replyId
func (h *CommentHandler) LikeReply(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	replyID, ok := paramID(c, "replyId")
	if !ok {
		return
	}
	liked, reply, err := h.commentSvc.ToggleReplyLike(c.Request.Context(), userID, commentID, replyID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	message := "Unliked reply successfully"
	if liked {
		message = "Liked reply successfully"
	}
	utils.SuccessWithMessage(c, message, "reply", reply)
}

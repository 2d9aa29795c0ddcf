package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"threadsnet/service"
	"threadsnet/utils"
)

const refreshCookie = "refreshToken"

type UserHandler struct {
	userSvc     *service.UserService
	relSvc      *service.RelationshipService
	credentials *service.CredentialService
}

func NewUserHandler(userSvc *service.UserService, relSvc *service.RelationshipService, credentials *service.CredentialService) *UserHandler {
	return &UserHandler{userSvc: userSvc, relSvc: relSvc, credentials: credentials}
}

func (h *UserHandler) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, token, maxAge, "/", "", c.Request.TLS != nil, true)
}

// Register 注册
// POST /api/user/register
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Missing input register or invalid fields")
		return
	}
	user, err := h.userSvc.Register(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.Created(c, "Register successfully", "newUser", user)
}

// Login 登录，刷新令牌写入 http-only cookie
// POST /api/user/login
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Missing input login")
		return
	}
	result, err := h.userSvc.Login(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken, int(h.credentials.RefreshTTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Login successfully",
		"accessToken": result.Tokens.AccessToken,
		"userData":    result.User,
	})
}

// Logout 登出，清除 cookie 和服务端会话
// POST /api/user/logout
func (h *UserHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)
	if err := h.userSvc.Logout(c.Request.Context(), token); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	h.setRefreshCookie(c, "", -1)
	utils.SuccessWithMessage(c, "Logout successfully", "", nil)
}

// RefreshAccessToken 用 cookie 中的刷新令牌换取访问令牌
// POST /api/user/refreshCreateNewAccessToken
func (h *UserHandler) RefreshAccessToken(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)
	access, err := h.userSvc.RefreshAccessToken(c.Request.Context(), token)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "newAccessToken", access)
}

// GetDetailUser 当前用户详情
// GET /api/user/getDetailUser
func (h *UserHandler) GetDetailUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	detail, err := h.userSvc.Detail(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "user", detail)
}

// ChangePassword 修改密码
// POST /api/user/changePassword
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "currentPassword and a strong newPassword are required")
		return
	}
	if err := h.userSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	h.setRefreshCookie(c, "", -1)
	utils.SuccessWithMessage(c, "Password changed successfully", "", nil)
}

// ForgotPassword 生成重置令牌（投递由外部完成）
// POST /api/user/forgotPassword
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Email not found")
		return
	}
	if _, err := h.userSvc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	zap.L().Info("password reset requested", zap.String("email", req.Email))
	utils.SuccessWithMessage(c, "Check mail to do a next step", "", nil)
}

// ResetPassword 用重置令牌设置新密码
// PUT /api/user/resetPassword
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
		Token    string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Missing password or token")
		return
	}
	if err := h.userSvc.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Reset password successfully. Please login your account", "", nil)
}

// UpdateInfoFromUser 修改自己的资料
// PUT /api/user/updateInfoFromUser
func (h *UserHandler) UpdateInfoFromUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid profile fields")
		return
	}
	user, err := h.userSvc.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "user", user)
}

// GetUserProfile 按 id 或用户名查看主页
// GET /api/user/profile/:query
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	detail, err := h.relSvc.Profile(c.Request.Context(), userID, c.Param("query"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "user", detail)
}

// GetAllUsers 用户列表（管理端）
// GET /api/user/getAllUsers
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	users, err := h.userSvc.ListUsers(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "user", users)
}

// CreateUserFromAdmin 管理员创建用户
// POST /api/user/createUserFromAdmin
func (h *UserHandler) CreateUserFromAdmin(c *gin.Context) {
	var req service.AdminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Missing input create user from admin")
		return
	}
	user, err := h.userSvc.CreateUser(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.Created(c, "Create user successfully", "newUser", user)
}

// UpdateInfoFromAdmin 管理员修改用户
// PUT /api/user/updateInfoFromAdmin/:userId
func (h *UserHandler) UpdateInfoFromAdmin(c *gin.Context) {
	targetID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	var req service.AdminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid user fields")
		return
	}
	user, err := h.userSvc.UpdateUser(c.Request.Context(), targetID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "user", user)
}

// LockedUser 锁定/解锁用户
// PUT /api/user/locked/:userId
func (h *UserHandler) LockedUser(c *gin.Context) {
	targetID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	var req struct {
		Lock *bool `json:"lock" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "You must select a lock true or false")
		return
	}
	user, err := h.userSvc.SetLocked(c.Request.Context(), targetID, *req.Lock)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	message := "Unlock user successfully"
	if user.IsLocked {
		message = "Lock user successfully"
	}
	utils.SuccessWithMessage(c, message, "user", user)
}

// DeleteUser 删除用户
// DELETE /api/user/:userId
func (h *UserHandler) DeleteUser(c *gin.Context) {
	targetID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	if err := h.userSvc.DeleteUser(c.Request.Context(), targetID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Delete user successfully", "", nil)
}

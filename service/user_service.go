package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"threadsnet/model"
	"threadsnet/repository"
	"threadsnet/storage"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,strongpwd"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest 修改密码
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,strongpwd"`
}

// UpdateProfileRequest 用户修改自己的资料，avatar 可以是 URL 或 data URL
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Username *string `json:"username" binding:"omitempty,min=1,max=50"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
	Password *string `json:"password" binding:"omitempty,strongpwd"`
}

// AdminUserRequest 管理员创建或修改用户
type AdminUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Username *string `json:"username" binding:"omitempty,min=1,max=50"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,strongpwd"`
	Role     *string `json:"role" binding:"omitempty,oneof=user staff admin"`
	Bio      *string `json:"bio"`
}

// LoginResult 登录结果
type LoginResult struct {
	User   *model.User
	Tokens *TokenPair
}

// UserService 账号相关操作
type UserService struct {
	store         repository.Store
	credentials   *CredentialService
	relationships *RelationshipService
	media         storage.MediaService
}

func NewUserService(store repository.Store, credentials *CredentialService, relationships *RelationshipService, media storage.MediaService) *UserService {
	return &UserService{store: store, credentials: credentials, relationships: relationships, media: media}
}

func (s *UserService) ensureUnique(ctx context.Context, selfID uuid.UUID, email, username *string) error {
	if email != nil {
		u, err := s.store.GetUserByEmail(ctx, *email)
		if err == nil && u.ID != selfID {
			return NewError(KindConflict, fmt.Sprintf("User with email %s has already existed", *email))
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return storeError(err, "User not found")
		}
	}
	if username != nil {
		u, err := s.store.GetUserByUsername(ctx, *username)
		if err == nil && u.ID != selfID {
			return NewError(KindConflict, fmt.Sprintf("User with username %s has already existed", *username))
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return storeError(err, "User not found")
		}
	}
	return nil
}

func (s *UserService) create(ctx context.Context, name, email, username, password, role string) (*model.User, error) {
	if err := s.ensureUnique(ctx, uuid.Nil, &email, &username); err != nil {
		return nil, err
	}
	hash, err := s.credentials.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{Name: name, Email: email, Username: username, Password: hash, Role: role}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewError(KindConflict, fmt.Sprintf("User with username %s and email %s has already existed", username, email))
		}
		return nil, storeError(err, "User not found")
	}
	return user, nil
}

// Register 注册普通用户
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Name == "" || req.Email == "" || req.Username == "" || req.Password == "" {
		return nil, NewError(KindValidation, "Missing input register")
	}
	if err := validateStruct(req, "Invalid email format or weak password. Password must be at least 8 characters long, contain one letter, one number, and one special character"); err != nil {
		return nil, err
	}

	user, err := s.create(ctx, req.Name, req.Email, req.Username, req.Password, model.RoleUser)
	if err != nil {
		return nil, err
	}
	zap.L().Info("user registered", zap.String("user_id", user.ID.String()), zap.String("username", user.Username))
	return user, nil
}

// Login 校验邮箱密码，锁定账号拒绝登录
func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, NewError(KindValidation, "Missing input login")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(KindUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	if user.IsLocked {
		return nil, NewError(KindForbidden, fmt.Sprintf("User with email %s is locked", user.Email))
	}
	if !s.credentials.CheckPassword(user.Password, req.Password) {
		return nil, NewError(KindUnauthorized, "Invalid email or password")
	}

	tokens, err := s.credentials.IssueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Tokens: tokens}, nil
}

// Logout 作废刷新令牌；令牌无效时视为已登出
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return NewError(KindValidation, "Not found refresh token in cookies")
	}
	userID, err := s.credentials.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		if IsUnauthorized(err) {
			return nil
		}
		return err
	}
	return s.credentials.RevokeSession(ctx, userID)
}

// RefreshAccessToken 用刷新令牌换新的访问令牌
func (s *UserService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.credentials.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", NewError(KindUnauthorized, "Refresh token not matched")
		}
		return "", storeError(err, "User not found")
	}
	if user.IsLocked {
		return "", NewError(KindForbidden, fmt.Sprintf("User with email %s is locked", user.Email))
	}
	return s.credentials.IssueAccessToken(user)
}

// Detail 当前用户详情
func (s *UserService) Detail(ctx context.Context, userID uuid.UUID) (*model.UserDetail, error) {
	return s.relationships.Detail(ctx, userID)
}

// ChangePassword 校验旧密码后修改，并使刷新令牌失效
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := validateStruct(req, "Password must be at least 8 characters long, contain one letter, one number, and one special character"); err != nil {
		return err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return storeError(err, "User not found")
	}
	if !s.credentials.CheckPassword(user.Password, req.CurrentPassword) {
		return NewError(KindValidation, "Current password is incorrect")
	}
	if err := s.setPassword(ctx, userID, req.NewPassword); err != nil {
		return err
	}
	return s.credentials.RevokeSession(ctx, userID)
}

func (s *UserService) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	hash, err := s.credentials.HashPassword(password)
	if err != nil {
		return err
	}
	now := s.credentials.now()
	_, err = s.store.UpdateUser(ctx, userID, model.UserUpdate{Password: &hash, PasswordChangedAt: &now})
	return storeError(err, "User not found")
}

// ForgotPassword 生成重置令牌。邮件投递不在本服务内，令牌返回给调用方
func (s *UserService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", NewError(KindValidation, "Email not found")
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", storeError(err, "User not found")
	}
	return s.credentials.IssueResetToken(ctx, user.ID)
}

// ResetPassword 使用重置令牌设置新密码
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return NewError(KindValidation, "Missing password or token")
	}
	if !IsStrongPassword(password) {
		return NewError(KindValidation, "Password must be at least 8 characters long, contain one letter, one number, and one special character")
	}
	userID, err := s.credentials.ConsumeResetToken(ctx, token)
	if err != nil {
		return err
	}
	if err := s.setPassword(ctx, userID, password); err != nil {
		return err
	}
	return s.credentials.RevokeSession(ctx, userID)
}

// UpdateProfile 修改自己的资料，新头像上传成功后删除旧头像
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*model.User, error) {
	if req.Name == nil && req.Username == nil && req.Email == nil && req.Bio == nil && req.Avatar == nil && req.Password == nil {
		return nil, NewError(KindValidation, "You need to type at least one field to update")
	}
	if err := validateStruct(req, "invalid profile fields"); err != nil {
		return nil, err
	}
	current, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	email := lowerPtr(req.Email)
	if err := s.ensureUnique(ctx, userID, email, req.Username); err != nil {
		return nil, err
	}

	update := model.UserUpdate{Name: req.Name, Username: req.Username, Email: email, Bio: req.Bio}
	if req.Password != nil {
		hash, err := s.credentials.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		now := s.credentials.now()
		update.Password = &hash
		update.PasswordChangedAt = &now
	}

	var oldAvatar string
	if req.Avatar != nil && *req.Avatar != current.Avatar {
		url, err := storage.UploadImage(ctx, s.media, "avatars", *req.Avatar)
		if errors.Is(err, storage.ErrInvalidImage) {
			return nil, WrapError(KindValidation, "invalid avatar", err)
		}
		if err != nil {
			return nil, WrapError(KindInternal, "failed to upload avatar", err)
		}
		update.Avatar = &url
		oldAvatar = current.Avatar
	}

	user, err := s.store.UpdateUser(ctx, userID, update)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	if oldAvatar != "" && s.media != nil {
		if err := s.media.Delete(ctx, oldAvatar); err != nil {
			zap.L().Warn("failed to delete old avatar", zap.String("url", oldAvatar), zap.Error(err))
		}
	}
	return user, nil
}

func lowerPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*s))
	return &v
}

// ListUsers 全部用户（管理端）
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return users, nil
}

// SetLocked 锁定或解锁用户，锁定时作废其会话
func (s *UserService) SetLocked(ctx context.Context, userID uuid.UUID, locked bool) (*model.User, error) {
	user, err := s.store.UpdateUser(ctx, userID, model.UserUpdate{IsLocked: &locked})
	if err != nil {
		return nil, storeError(err, "User not found!")
	}
	if locked {
		if err := s.credentials.RevokeSession(ctx, userID); err != nil {
			return nil, err
		}
	}
	zap.L().Info("user lock changed", zap.String("user_id", userID.String()), zap.Bool("locked", locked))
	return user, nil
}

// DeleteUser 删除用户（管理端）
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return storeError(err, "User not found")
	}
	if err := s.credentials.RevokeSession(ctx, userID); err != nil {
		zap.L().Warn("failed to revoke session of deleted user", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return nil
}

// CreateUser 管理员创建用户，name/email/username/password 必填
func (s *UserService) CreateUser(ctx context.Context, req *AdminUserRequest) (*model.User, error) {
	if req.Name == nil || req.Email == nil || req.Username == nil || req.Password == nil {
		return nil, NewError(KindValidation, "Missing input create user from admin")
	}
	if err := validateStruct(req, "invalid user fields"); err != nil {
		return nil, err
	}
	role := model.RoleUser
	if req.Role != nil {
		role = *req.Role
	}
	user, err := s.create(ctx, strings.TrimSpace(*req.Name), *lowerPtr(req.Email), strings.TrimSpace(*req.Username), *req.Password, role)
	if err != nil {
		return nil, err
	}
	if req.Bio != nil {
		if user, err = s.store.UpdateUser(ctx, user.ID, model.UserUpdate{Bio: req.Bio}); err != nil {
			return nil, storeError(err, "User not found")
		}
	}
	return user, nil
}

// UpdateUser 管理员修改用户资料
func (s *UserService) UpdateUser(ctx context.Context, userID uuid.UUID, req *AdminUserRequest) (*model.User, error) {
	if req.Name == nil && req.Email == nil && req.Username == nil && req.Password == nil && req.Role == nil && req.Bio == nil {
		return nil, NewError(KindValidation, "You need to type at least one field to update")
	}
	if err := validateStruct(req, "invalid user fields"); err != nil {
		return nil, err
	}
	email := lowerPtr(req.Email)
	if err := s.ensureUnique(ctx, userID, email, req.Username); err != nil {
		return nil, err
	}
	update := model.UserUpdate{Name: req.Name, Username: req.Username, Email: email, Role: req.Role, Bio: req.Bio}
	if req.Password != nil {
		hash, err := s.credentials.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		update.Password = &hash
	}
	user, err := s.store.UpdateUser(ctx, userID, update)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return user, nil
}

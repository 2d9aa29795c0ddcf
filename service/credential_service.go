package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"threadsnet/model"
	"threadsnet/session"
)

// Claims JWT 声明
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair 登录返回的令牌
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// CredentialConfig 令牌密钥与有效期
type CredentialConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
	BcryptCost    int
}

// CredentialService 密码哈希、JWT 签发校验、重置令牌
type CredentialService struct {
	cfg      CredentialConfig
	sessions session.Store
	now      func() time.Time
}

func NewCredentialService(cfg CredentialConfig, sessions session.Store) *CredentialService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = 5 * time.Minute
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &CredentialService{cfg: cfg, sessions: sessions, now: time.Now}
}

func (s *CredentialService) RefreshTTL() time.Duration {
	return s.cfg.RefreshTTL
}

func (s *CredentialService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", WrapError(KindInternal, "failed to hash password", err)
	}
	return string(hash), nil
}

func (s *CredentialService) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *CredentialService) sign(secret string, claims *Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   claims.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", WrapError(KindInternal, "failed to sign token", err)
	}
	return token, nil
}

// IssueAccessToken 签发访问令牌（含角色）
func (s *CredentialService) IssueAccessToken(user *model.User) (string, error) {
	return s.sign(s.cfg.AccessSecret, &Claims{UserID: user.ID, Role: user.Role}, s.cfg.AccessTTL)
}

// IssueTokens 签发访问令牌和刷新令牌，刷新令牌覆盖该用户之前的会话
func (s *CredentialService) IssueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	access, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(s.cfg.RefreshSecret, &Claims{UserID: user.ID}, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SaveRefreshToken(ctx, user.ID, refresh, s.cfg.RefreshTTL); err != nil {
		return nil, WrapError(KindInternal, "failed to save session", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *CredentialService) parse(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, WrapError(KindUnauthorized, "Invalid access token", err)
	}
	if claims.UserID == uuid.Nil {
		return nil, NewError(KindUnauthorized, "Invalid access token")
	}
	return claims, nil
}

// ParseAccessToken 校验访问令牌
func (s *CredentialService) ParseAccessToken(tokenString string) (*Claims, error) {
	return s.parse(s.cfg.AccessSecret, tokenString)
}

// ValidateRefreshToken 校验签名并确认是该用户当前的会话
func (s *CredentialService) ValidateRefreshToken(ctx context.Context, tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, NewError(KindUnauthorized, "No refresh token in cookies")
	}
	claims, err := s.parse(s.cfg.RefreshSecret, tokenString)
	if err != nil {
		return uuid.Nil, NewError(KindUnauthorized, "Refresh token not matched")
	}
	ok, err := s.sessions.ValidateRefreshToken(ctx, claims.UserID, tokenString)
	if err != nil {
		return uuid.Nil, WrapError(KindInternal, "failed to read session", err)
	}
	if !ok {
		return uuid.Nil, NewError(KindUnauthorized, "Refresh token not matched")
	}
	return claims.UserID, nil
}

// RevokeSession 删除用户的刷新令牌
func (s *CredentialService) RevokeSession(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.DeleteRefreshToken(ctx, userID); err != nil {
		return WrapError(KindInternal, "failed to delete session", err)
	}
	return nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// IssueResetToken 生成一次性重置令牌，只保存其 sha256
func (s *CredentialService) IssueResetToken(ctx context.Context, userID uuid.UUID) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", WrapError(KindInternal, "failed to generate reset token", err)
	}
	token := hex.EncodeToString(buf)
	if err := s.sessions.SaveResetToken(ctx, hashResetToken(token), userID, s.cfg.ResetTTL); err != nil {
		return "", WrapError(KindInternal, "failed to save reset token", err)
	}
	zap.L().Debug("password reset token issued", zap.String("user_id", userID.String()), zap.String("token", token))
	return token, nil
}

// ConsumeResetToken 校验并作废重置令牌
func (s *CredentialService) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	userID, err := s.sessions.ConsumeResetToken(ctx, hashResetToken(token))
	if errors.Is(err, session.ErrTokenNotFound) {
		return uuid.Nil, NewError(KindValidation, "Invalid reset token. Please try again forgot password")
	}
	if err != nil {
		return uuid.Nil, WrapError(KindInternal, "failed to read reset token", err)
	}
	return userID, nil
}

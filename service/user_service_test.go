package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadsnet/model"
)

func strPtr(s string) *string { return &s }

func TestIsStrongPassword(t *testing.T) {
	tests := map[string]bool{
		"secret1@A":  true,
		"abcdefg1!":  true,
		"short1@":    false,
		"nodigits@@": false,
		"nospecial1": false,
		"12345678@!": false,
		"space 1@aa": false,
		"ünicode1@a": false,
	}
	for pw, want := range tests {
		assert.Equal(t, want, IsStrongPassword(pw), pw)
	}
}

func TestUserService_Register(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.Register(env.ctx, &RegisterRequest{Email: "a@example.com"})
	assert.True(t, IsValidation(err))

	_, err = env.users.Register(env.ctx, &RegisterRequest{Name: "A", Email: "not-an-email", Username: "a", Password: testPassword})
	assert.True(t, IsValidation(err))

	_, err = env.users.Register(env.ctx, &RegisterRequest{Name: "A", Email: "a@example.com", Username: "a", Password: "weak"})
	assert.True(t, IsValidation(err))

	user, err := env.users.Register(env.ctx, &RegisterRequest{Name: "A", Email: " A@Example.com ", Username: "a", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, testPassword, user.Password)

	_, err = env.users.Register(env.ctx, &RegisterRequest{Name: "B", Email: "a@example.com", Username: "b", Password: testPassword})
	assert.True(t, IsConflict(err))
}

func TestUserService_LoginRefreshLogout(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	_, err := env.users.Login(env.ctx, &LoginRequest{Email: "alice@example.com", Password: "wrong1@AA"})
	assert.True(t, IsUnauthorized(err))

	_, err = env.users.Login(env.ctx, &LoginRequest{Email: "nobody@example.com", Password: testPassword})
	assert.True(t, IsUnauthorized(err))

	result, err := env.users.Login(env.ctx, &LoginRequest{Email: "ALICE@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, result.User.ID)

	claims, err := env.credentials.ParseAccessToken(result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, claims.UserID)
	assert.Equal(t, model.RoleUser, claims.Role)

	// 刷新令牌不能当作访问令牌使用
	_, err = env.credentials.ParseAccessToken(result.Tokens.RefreshToken)
	assert.True(t, IsUnauthorized(err))

	access, err := env.users.RefreshAccessToken(env.ctx, result.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	// 再次登录覆盖旧会话
	second, err := env.users.Login(env.ctx, &LoginRequest{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)
	_, err = env.users.RefreshAccessToken(env.ctx, result.Tokens.RefreshToken)
	assert.True(t, IsUnauthorized(err))

	require.NoError(t, env.users.Logout(env.ctx, second.Tokens.RefreshToken))
	_, err = env.users.RefreshAccessToken(env.ctx, second.Tokens.RefreshToken)
	assert.True(t, IsUnauthorized(err))

	require.NoError(t, env.users.Logout(env.ctx, "garbage"))
	assert.True(t, IsValidation(env.users.Logout(env.ctx, "")))
}

func TestUserService_LockedUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	result, err := env.users.Login(env.ctx, &LoginRequest{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	locked, err := env.users.SetLocked(env.ctx, alice.ID, true)
	require.NoError(t, err)
	assert.True(t, locked.IsLocked)

	_, err = env.users.Login(env.ctx, &LoginRequest{Email: "alice@example.com", Password: testPassword})
	assert.True(t, IsForbidden(err))

	_, err = env.users.RefreshAccessToken(env.ctx, result.Tokens.RefreshToken)
	assert.True(t, IsUnauthorized(err))

	_, err = env.users.SetLocked(env.ctx, alice.ID, false)
	require.NoError(t, err)
	_, err = env.users.Login(env.ctx, &LoginRequest{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)
}

func TestUserService_ChangeAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	err := env.users.ChangePassword(env.ctx, alice.ID, &ChangePasswordRequest{CurrentPassword: "wrong1@AA", NewPassword: "newpass1@B"})
	assert.True(t, IsValidation(err))

	require.NoError(t, env.users.ChangePassword(env.ctx, alice.ID, &ChangePasswordRequest{CurrentPassword: testPassword, NewPassword: "newpass1@B"}))
	_, err = env.users.Login(env.ctx, &LoginRequest{Email: "alice@example.com", Password: "newpass1@B"})
	require.NoError(t, err)

	token, err := env.users.ForgotPassword(env.ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = env.users.ForgotPassword(env.ctx, "nobody@example.com")
	assert.True(t, IsNotFound(err))

	assert.True(t, IsValidation(env.users.ResetPassword(env.ctx, token, "weak")))
	require.NoError(t, env.users.ResetPassword(env.ctx, token, "reset1@CC"))
	assert.True(t, IsValidation(env.users.ResetPassword(env.ctx, token, "again1@DD")))

	_, err = env.users.Login(env.ctx, &LoginRequest{Email: "alice@example.com", Password: "reset1@CC"})
	require.NoError(t, err)
}

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	env.user(t, "bob")

	_, err := env.users.UpdateProfile(env.ctx, alice.ID, &UpdateProfileRequest{Username: strPtr("bob")})
	assert.True(t, IsConflict(err))

	updated, err := env.users.UpdateProfile(env.ctx, alice.ID, &UpdateProfileRequest{
		Bio:    strPtr("hello"),
		Avatar: strPtr("https://cdn.example.com/a.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "https://cdn.example.com/a.png", updated.Avatar)

	// 未配置媒体存储时 data URL 无法上传
	_, err = env.users.UpdateProfile(env.ctx, alice.ID, &UpdateProfileRequest{Avatar: strPtr("data:image/png;base64,aGk=")})
	assert.Error(t, err)
}

func TestUserService_AdminOperations(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.CreateUser(env.ctx, &AdminUserRequest{Name: strPtr("S"), Email: strPtr("s@example.com"), Username: strPtr("s")})
	assert.True(t, IsValidation(err))

	_, err = env.users.CreateUser(env.ctx, &AdminUserRequest{
		Name: strPtr("S"), Email: strPtr("s@example.com"), Username: strPtr("s"),
		Password: strPtr(testPassword), Role: strPtr("root"),
	})
	assert.True(t, IsValidation(err))

	staff, err := env.users.CreateUser(env.ctx, &AdminUserRequest{
		Name: strPtr("S"), Email: strPtr("S@example.com"), Username: strPtr("s"),
		Password: strPtr(testPassword), Role: strPtr(model.RoleStaff), Bio: strPtr("ops"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, staff.Role)
	assert.Equal(t, "s@example.com", staff.Email)
	assert.Equal(t, "ops", staff.Bio)

	_, err = env.users.UpdateUser(env.ctx, staff.ID, &AdminUserRequest{})
	assert.True(t, IsValidation(err))

	promoted, err := env.users.UpdateUser(env.ctx, staff.ID, &AdminUserRequest{Role: strPtr(model.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, promoted.Role)

	users, err := env.users.ListUsers(env.ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, env.users.DeleteUser(env.ctx, staff.ID))
	assert.True(t, IsNotFound(env.users.DeleteUser(env.ctx, staff.ID)))
}

func TestUserService_DetailIncludesGraph(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	env.befriend(t, alice, bob)
	followed, err := env.relationships.ToggleFollow(env.ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, followed)
	post := env.post(t, bob, "hi", model.VisibilityPublic)
	_, _, err = env.posts.ToggleLike(env.ctx, alice.ID, post.ID)
	require.NoError(t, err)

	detail, err := env.users.Detail(env.ctx, alice.ID)
	require.NoError(t, err)
	assert.Contains(t, detail.Following, bob.ID)
	assert.Contains(t, detail.Followers, bob.ID)
	assert.Len(t, detail.Friends, 1)
	assert.Contains(t, detail.Liked, post.ID)

	require.NoError(t, env.relationships.BlockUser(env.ctx, alice.ID, bob.ID))
	_, err = env.relationships.Profile(env.ctx, alice.ID, "bob")
	assert.True(t, IsForbidden(err))

	profile, err := env.relationships.Profile(env.ctx, bob.ID, alice.ID.String())
	require.NoError(t, err)
	assert.Contains(t, profile.BlockedList, bob.ID)
}

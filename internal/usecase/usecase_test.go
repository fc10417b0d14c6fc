package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/internal/usecase"
	"applyfollow-backend/pkg/apperror"
	"applyfollow-backend/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func assertStatus(t *testing.T, err error, code int) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPassword(password)
	require.NoError(t, err)
	return h
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create local user and return token", func(t *testing.T) {
		repo := new(MockUserRepo)
		tokens := new(MockTokenIssuer)
		uc := usecase.NewAuthUsecase(repo, tokens, nil, nil)

		repo.On("ExistsByEmail", ctx, "jane@example.com").Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
			u := args.Get(1).(*domain.User)
			assert.Equal(t, domain.RoleUser, u.Role)
			assert.Equal(t, domain.ProviderLocal, u.Provider)
			assert.True(t, u.IsActive)
			assert.NotEmpty(t, u.ID)
			assert.True(t, auth.CheckPasswordHash("secret1", u.PasswordHash))
		})
		tokens.On("Generate", mock.Anything, "jane@example.com", domain.RoleUser).Return("tok", nil)

		resp, err := uc.Register(ctx, domain.RegisterRequest{Email: " Jane@Example.com ", Password: "secret1", FullName: "Jane Doe"})
		require.NoError(t, err)
		assert.Equal(t, "tok", resp.Token)
		assert.Equal(t, "Jane Doe", resp.FullName)
		repo.AssertExpectations(t)
	})

	t.Run("Should reject an email already in use", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo, new(MockTokenIssuer), nil, nil)
		repo.On("ExistsByEmail", ctx, "jane@example.com").Return(true, nil)

		_, err := uc.Register(ctx, domain.RegisterRequest{Email: "jane@example.com", Password: "secret1", FullName: "Jane"})
		assertStatus(t, err, http.StatusBadRequest)
		assert.Contains(t, err.Error(), "Email already in use")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: "u1", Email: "jane@example.com", FullName: "Jane", Role: domain.RoleUser, IsActive: true, Provider: domain.ProviderLocal}
	user.PasswordHash = hashed(t, "secret1")

	t.Run("Should succeed and clear attempts", func(t *testing.T) {
		repo := new(MockUserRepo)
		tokens := new(MockTokenIssuer)
		guard := new(MockLoginGuard)
		uc := usecase.NewAuthUsecase(repo, tokens, guard, nil)

		guard.On("IsBlocked", ctx, "jane@example.com").Return(false, nil)
		guard.On("ClearAttempts", ctx, "jane@example.com").Return(nil)
		repo.On("GetByEmail", ctx, "jane@example.com").Return(user, nil)
		tokens.On("Generate", "u1", "jane@example.com", domain.RoleUser).Return("tok", nil)

		resp, err := uc.Login(ctx, domain.LoginRequest{Email: "jane@example.com", Password: "secret1", ClientIP: "1.2.3.4"})
		require.NoError(t, err)
		assert.Equal(t, "tok", resp.Token)
		guard.AssertExpectations(t)
	})

	t.Run("Should return 401 on wrong password and record the attempt", func(t *testing.T) {
		repo := new(MockUserRepo)
		guard := new(MockLoginGuard)
		uc := usecase.NewAuthUsecase(repo, new(MockTokenIssuer), guard, nil)

		guard.On("IsBlocked", ctx, "jane@example.com").Return(false, nil)
		guard.On("RecordFailedAttempt", ctx, "jane@example.com", "1.2.3.4").Return(false, 1, nil)
		repo.On("GetByEmail", ctx, "jane@example.com").Return(user, nil)

		_, err := uc.Login(ctx, domain.LoginRequest{Email: "jane@example.com", Password: "wrong", ClientIP: "1.2.3.4"})
		assertStatus(t, err, http.StatusUnauthorized)
		guard.AssertExpectations(t)
	})

	t.Run("Should return 401 for unknown email", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo, new(MockTokenIssuer), nil, nil)
		repo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, domain.ErrNotFound)

		_, err := uc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "x"})
		assertStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("Should return 403 for a disabled account", func(t *testing.T) {
		disabled := *user
		disabled.IsActive = false
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo, new(MockTokenIssuer), nil, nil)
		repo.On("GetByEmail", ctx, "jane@example.com").Return(&disabled, nil)

		_, err := uc.Login(ctx, domain.LoginRequest{Email: "jane@example.com", Password: "secret1"})
		assertStatus(t, err, http.StatusForbidden)
	})

	t.Run("Should return 429 while blocked", func(t *testing.T) {
		repo := new(MockUserRepo)
		guard := new(MockLoginGuard)
		uc := usecase.NewAuthUsecase(repo, new(MockTokenIssuer), guard, nil)
		guard.On("IsBlocked", ctx, "jane@example.com").Return(true, nil)

		_, err := uc.Login(ctx, domain.LoginRequest{Email: "jane@example.com", Password: "secret1"})
		assertStatus(t, err, http.StatusTooManyRequests)
		repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})
}

func TestLoginWithOAuth2(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create a new user on first login", func(t *testing.T) {
		repo := new(MockUserRepo)
		tokens := new(MockTokenIssuer)
		uc := usecase.NewAuthUsecase(repo, tokens, nil, nil)

		repo.On("GetByEmail", ctx, "octo@example.com").Return(nil, domain.ErrNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
			u := args.Get(1).(*domain.User)
			assert.Equal(t, domain.ProviderGitHub, u.Provider)
			assert.Equal(t, "42", u.ProviderID)
			assert.Empty(t, u.PasswordHash)
		})
		tokens.On("Generate", mock.Anything, "octo@example.com", domain.RoleUser).Return("tok", nil)

		resp, err := uc.LoginWithOAuth2(ctx, domain.OAuth2UserInfo{
			Provider: domain.ProviderGitHub, ProviderID: "42", Email: "Octo@Example.com", Name: "Octo Cat",
		})
		require.NoError(t, err)
		assert.Equal(t, "Octo Cat", resp.FullName)
	})

	t.Run("Should refresh the name of an existing user", func(t *testing.T) {
		repo := new(MockUserRepo)
		tokens := new(MockTokenIssuer)
		uc := usecase.NewAuthUsecase(repo, tokens, nil, nil)

		existing := &domain.User{ID: "u1", Email: "g@example.com", FullName: "Old", Role: domain.RoleUser, IsActive: true, Provider: domain.ProviderGoogle}
		repo.On("GetByEmail", ctx, "g@example.com").Return(existing, nil)
		repo.On("Update", ctx, existing).Return(nil)
		tokens.On("Generate", "u1", "g@example.com", domain.RoleUser).Return("tok", nil)

		resp, err := uc.LoginWithOAuth2(ctx, domain.OAuth2UserInfo{Provider: domain.ProviderGoogle, Email: "g@example.com", Name: "New Name"})
		require.NoError(t, err)
		assert.Equal(t, "New Name", resp.FullName)
		repo.AssertExpectations(t)
	})

	t.Run("Should refuse a different provider", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo, new(MockTokenIssuer), nil, nil)
		existing := &domain.User{ID: "u1", Email: "g@example.com", IsActive: true, Provider: domain.ProviderGoogle}
		repo.On("GetByEmail", ctx, "g@example.com").Return(existing, nil)

		_, err := uc.LoginWithOAuth2(ctx, domain.OAuth2UserInfo{Provider: domain.ProviderGitHub, Email: "g@example.com"})
		assertStatus(t, err, http.StatusUnauthorized)
		assert.Contains(t, err.Error(), "signed up with Google account")
	})

	t.Run("Should fail without email", func(t *testing.T) {
		uc := usecase.NewAuthUsecase(new(MockUserRepo), new(MockTokenIssuer), nil, nil)
		_, err := uc.LoginWithOAuth2(ctx, domain.OAuth2UserInfo{Provider: domain.ProviderGitHub})
		assertStatus(t, err, http.StatusUnauthorized)
		assert.Contains(t, err.Error(), "Email not found")
	})
}

func TestUserProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Should 409 when the new email belongs to someone else", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewUserUsecase(repo, nil)
		repo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Email: "me@example.com"}, nil)
		repo.On("GetByEmail", ctx, "taken@example.com").Return(&domain.User{ID: "u2"}, nil)

		_, err := uc.UpdateProfile(ctx, "u1", domain.UpdateProfileRequest{FullName: "Me", Email: "taken@example.com"})
		assertStatus(t, err, http.StatusConflict)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Should update fields", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewUserUsecase(repo, nil)
		repo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Email: "me@example.com"}, nil)
		repo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		u, err := uc.UpdateProfile(ctx, "u1", domain.UpdateProfileRequest{FullName: " Me ", Email: "me@example.com", Phone: "+1 555"})
		require.NoError(t, err)
		assert.Equal(t, "Me", u.FullName)
		assert.Equal(t, "+1 555", u.Phone)
	})

	t.Run("Should 404 for missing user", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewUserUsecase(repo, nil)
		repo.On("GetByID", ctx, "ghost").Return(nil, domain.ErrNotFound)

		_, err := uc.GetProfile(ctx, "ghost")
		assertStatus(t, err, http.StatusNotFound)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	hash := hashed(t, "oldpass")

	t.Run("Should reject wrong current password", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewUserUsecase(repo, nil)
		repo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", PasswordHash: hash}, nil)

		err := uc.ChangePassword(ctx, "u1", domain.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpass"})
		assertStatus(t, err, http.StatusBadRequest)
	})

	t.Run("Should reject accounts without a password", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewUserUsecase(repo, nil)
		repo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Provider: domain.ProviderGoogle}, nil)

		err := uc.ChangePassword(ctx, "u1", domain.ChangePasswordRequest{CurrentPassword: "x", NewPassword: "newpass"})
		assertStatus(t, err, http.StatusBadRequest)
	})

	t.Run("Should store a new hash", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewUserUsecase(repo, nil)
		repo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", PasswordHash: hash}, nil)
		repo.On("UpdatePassword", ctx, "u1", mock.AnythingOfType("string")).Return(nil).Run(func(args mock.Arguments) {
			assert.True(t, auth.CheckPasswordHash("newpass", args.String(2)))
		})

		require.NoError(t, uc.ChangePassword(ctx, "u1", domain.ChangePasswordRequest{CurrentPassword: "oldpass", NewPassword: "newpass"}))
		repo.AssertExpectations(t)
	})
}

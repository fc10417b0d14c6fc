package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/apperror"
	"applyfollow-backend/pkg/auth"
	"applyfollow-backend/pkg/logger"
	"applyfollow-backend/pkg/security"

	"github.com/google/uuid"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Generate(userID, email, role string) (string, error)
}

// LoginGuard throttles repeated failed logins for one email.
type LoginGuard interface {
	IsBlocked(ctx context.Context, email string) (bool, error)
	RecordFailedAttempt(ctx context.Context, email, ip string) (bool, int, error)
	ClearAttempts(ctx context.Context, email string) error
}

type authUsecase struct {
	userRepo domain.UserRepository
	tokens   TokenIssuer
	guard    LoginGuard
	audit    *security.AuditLogger
}

func NewAuthUsecase(userRepo domain.UserRepository, tokens TokenIssuer, guard LoginGuard, audit *security.AuditLogger) domain.AuthUsecase {
	if audit == nil {
		audit = security.NewAuditLoggerWith(nil)
	}
	return &authUsecase{
		userRepo: userRepo,
		tokens:   tokens,
		guard:    guard,
		audit:    audit,
	}
}

func (u *authUsecase) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := u.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.BadRequest("Email already in use")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         domain.RoleUser,
		IsActive:     true,
		Provider:     domain.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.BadRequest("Email already in use")
		}
		return nil, apperror.Internal(err)
	}

	u.audit.Log(ctx, security.Event{
		Type:         security.EventRegistered,
		SubjectType:  "user_id",
		SubjectValue: user.ID,
		Details:      map[string]interface{}{"provider": domain.ProviderLocal},
	})

	return u.respond(user, "User registered successfully")
}

func (u *authUsecase) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if u.guard != nil {
		blocked, err := u.guard.IsBlocked(ctx, email)
		if err != nil {
			logger.Log.Warn("login guard unavailable", "error", err)
		}
		if blocked {
			return nil, apperror.TooManyRequests("Too many failed login attempts. Please try again later.")
		}
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, u.failLogin(ctx, email, req.ClientIP, "invalid_credentials")
	}

	if !user.IsActive {
		u.audit.LoginFailed(ctx, email, req.ClientIP, "account_disabled")
		return nil, apperror.Forbidden("Account is disabled")
	}

	if u.guard != nil {
		if err := u.guard.ClearAttempts(ctx, email); err != nil {
			logger.Log.Warn("failed to clear login attempts", "error", err)
		}
	}
	u.audit.LoginSucceeded(ctx, user.ID, req.ClientIP, domain.ProviderLocal)

	return u.respond(user, "Login successful")
}

func (u *authUsecase) failLogin(ctx context.Context, email, ip, reason string) error {
	u.audit.LoginFailed(ctx, email, ip, reason)
	if u.guard == nil {
		return apperror.Unauthorized("Invalid email or password")
	}
	blocked, _, err := u.guard.RecordFailedAttempt(ctx, email, ip)
	if err != nil {
		logger.Log.Warn("failed to record login attempt", "error", err)
	}
	if blocked {
		return apperror.TooManyRequests("Too many failed login attempts. Please try again later.")
	}
	return apperror.Unauthorized("Invalid email or password")
}

func (u *authUsecase) LoginWithOAuth2(ctx context.Context, info domain.OAuth2UserInfo) (*domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" {
		return nil, apperror.Unauthorized("Email not found from OAuth2 provider")
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	if user != nil {
		if user.Provider != domain.ProviderLocal && user.Provider != info.Provider {
			p := providerTitle(user.Provider)
			return nil, apperror.Unauthorized(fmt.Sprintf(
				"Looks like you're signed up with %s account. Please use your %s account to login.", p, p))
		}
		if !user.IsActive {
			return nil, apperror.Forbidden("Account is disabled")
		}
		if name := strings.TrimSpace(info.Name); name != "" && name != user.FullName {
			user.FullName = name
			user.UpdatedAt = time.Now().UTC()
			if err := u.userRepo.Update(ctx, user); err != nil {
				return nil, apperror.Internal(err)
			}
		}
	} else {
		now := time.Now().UTC()
		user = &domain.User{
			ID:         uuid.NewString(),
			Email:      email,
			FullName:   strings.TrimSpace(info.Name),
			Role:       domain.RoleUser,
			IsActive:   true,
			Provider:   info.Provider,
			ProviderID: info.ProviderID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := u.userRepo.Create(ctx, user); err != nil {
			return nil, apperror.Internal(err)
		}
		u.audit.Log(ctx, security.Event{
			Type:         security.EventRegistered,
			SubjectType:  "user_id",
			SubjectValue: user.ID,
			Details:      map[string]interface{}{"provider": info.Provider},
		})
	}

	u.audit.LoginSucceeded(ctx, user.ID, "", info.Provider)
	return u.respond(user, "Login successful")
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (u *authUsecase) respond(user *domain.User, message string) (*domain.AuthResponse, error) {
	token, err := u.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.AuthResponse{
		Token:    token,
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		Phone:    user.Phone,
		Address:  user.Address,
		LinkedIn: user.LinkedIn,
		GitHub:   user.GitHub,
		Website:  user.Website,
		Summary:  user.Summary,
		Message:  message,
	}, nil
}

func providerTitle(provider string) string {
	switch provider {
	case domain.ProviderGitHub:
		return "GitHub"
	case domain.ProviderGoogle:
		return "Google"
	default:
		if provider == "" {
			return provider
		}
		return strings.ToUpper(provider[:1]) + provider[1:]
	}
}

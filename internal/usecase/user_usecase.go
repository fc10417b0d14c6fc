package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/apperror"
	"applyfollow-backend/pkg/auth"
	"applyfollow-backend/pkg/security"
)

type userUsecase struct {
	userRepo domain.UserRepository
	audit    *security.AuditLogger
}

func NewUserUsecase(userRepo domain.UserRepository, audit *security.AuditLogger) domain.UserUsecase {
	if audit == nil {
		audit = security.NewAuditLoggerWith(nil)
	}
	return &userUsecase{userRepo: userRepo, audit: audit}
}

func (u *userUsecase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return u.load(ctx, userID)
}

// UpdateProfile rewrites the editable profile fields. Moving to an email
// that belongs to another account is a conflict.
func (u *userUsecase) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	user, err := u.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != user.Email {
		other, err := u.userRepo.GetByEmail(ctx, email)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Internal(err)
		}
		if other != nil && other.ID != user.ID {
			return nil, apperror.Conflict("Email already in use")
		}
	}

	user.FullName = strings.TrimSpace(req.FullName)
	user.Email = email
	user.Phone = strings.TrimSpace(req.Phone)
	user.Address = strings.TrimSpace(req.Address)
	user.LinkedIn = strings.TrimSpace(req.LinkedIn)
	user.GitHub = strings.TrimSpace(req.GitHub)
	user.Website = strings.TrimSpace(req.Website)
	user.Summary = strings.TrimSpace(req.Summary)
	user.UpdatedAt = time.Now().UTC()

	if err := u.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("Email already in use")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (u *userUsecase) ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
	user, err := u.load(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash == "" {
		return apperror.BadRequest("Password login is not enabled for this account")
	}
	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperror.BadRequest("Current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := u.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperror.Internal(err)
	}

	u.audit.Log(ctx, security.Event{
		Type:         security.EventPasswordChanged,
		SubjectType:  "user_id",
		SubjectValue: user.ID,
	})
	return nil
}

func (u *userUsecase) load(ctx context.Context, userID string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

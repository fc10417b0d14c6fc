package usecase

import (
	"context"
	"errors"
	"time"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/apperror"
	"applyfollow-backend/pkg/security"
)

const defaultAdminPageSize = 10

type adminUsecase struct {
	adminRepo   domain.AdminRepository
	userRepo    domain.UserRepository
	appRepo     domain.ApplicationRepository
	messageRepo domain.ContactMessageRepository
	audit       *security.AuditLogger
	now         func() time.Time
}

func NewAdminUsecase(
	adminRepo domain.AdminRepository,
	userRepo domain.UserRepository,
	appRepo domain.ApplicationRepository,
	messageRepo domain.ContactMessageRepository,
	audit *security.AuditLogger,
) domain.AdminUsecase {
	if audit == nil {
		audit = security.NewAuditLoggerWith(nil)
	}
	return &adminUsecase{
		adminRepo:   adminRepo,
		userRepo:    userRepo,
		appRepo:     appRepo,
		messageRepo: messageRepo,
		audit:       audit,
		now:         time.Now,
	}
}

// GetStats returns dashboard statistics
func (u *adminUsecase) GetStats(ctx context.Context) (*domain.AdminStats, error) {
	if err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}

	stats, err := u.adminRepo.GetStats(ctx)
	if err != nil {
		return nil, apperror.Internal(errors.New("Failed to fetch statistics: " + err.Error()))
	}
	return stats, nil
}

// ListUsers returns users sorted by name, optionally filtered by email.
func (u *adminUsecase) ListUsers(ctx context.Context, email string, page, pageSize int) (*domain.PaginatedResult[domain.User], error) {
	if err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}

	page, pageSize = clampPage(page, pageSize, defaultAdminPageSize)
	users, total, err := u.userRepo.List(ctx, domain.UserListFilter{Email: email, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, apperror.Internal(errors.New("Failed to fetch users: " + err.Error()))
	}
	return paginate(users, total, page, pageSize), nil
}

func (u *adminUsecase) GetUser(ctx context.Context, userID string) (*domain.AdminUserDetail, error) {
	if err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err, "User not found")
	}
	count, err := u.appRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.AdminUserDetail{User: *user, ApplicationCount: count}, nil
}

// ToggleUserStatus flips the active flag. Admins cannot deactivate themselves.
func (u *adminUsecase) ToggleUserStatus(ctx context.Context, actorID, userID string) (*domain.User, error) {
	if err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, apperror.BadRequest("User ID is required")
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err, "User not found")
	}
	if user.ID == actorID && user.IsActive {
		return nil, apperror.BadRequest("You cannot deactivate your own account")
	}

	active := !user.IsActive
	if err := u.userRepo.SetActive(ctx, user.ID, active); err != nil {
		return nil, mapRepoError(err, "User not found")
	}
	user.IsActive = active
	user.UpdatedAt = u.now().UTC()

	u.audit.Log(ctx, security.Event{
		Type:         security.EventUserStatusChanged,
		SubjectType:  "user_id",
		SubjectValue: user.ID,
		Details:      map[string]interface{}{"actor_id": actorID, "active": active},
	})
	return user, nil
}

// ExportUsers renders every user into a workbook.
func (u *adminUsecase) ExportUsers(ctx context.Context) ([]byte, string, error) {
	if err := u.requireAdmin(ctx); err != nil {
		return nil, "", err
	}

	headers := []string{"FULL NAME", "EMAIL", "ROLE", "PROVIDER", "ACTIVE", "PHONE", "CREATED AT"}
	var rows [][]interface{}
	for page := 1; ; page++ {
		users, total, err := u.userRepo.List(ctx, domain.UserListFilter{Page: page, PageSize: maxPageSize})
		if err != nil {
			return nil, "", apperror.Internal(err)
		}
		for _, usr := range users {
			active := "NO"
			if usr.IsActive {
				active = "YES"
			}
			rows = append(rows, []interface{}{
				usr.FullName,
				usr.Email,
				usr.Role,
				usr.Provider,
				active,
				usr.Phone,
				usr.CreatedAt.Format(time.RFC3339),
			})
		}
		if len(users) == 0 || int64(page*maxPageSize) >= total {
			break
		}
	}

	data, err := writeWorkbook("Users", headers, rows)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}

	u.audit.Log(ctx, security.Event{
		Type:    security.EventDataExport,
		Details: map[string]interface{}{"export": "users", "rows": len(rows)},
	})
	return data, exportFilename("users", u.now()), nil
}

// ListMessages returns contact messages newest first.
func (u *adminUsecase) ListMessages(ctx context.Context, page, pageSize int) (*domain.PaginatedResult[domain.ContactMessage], error) {
	if err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}

	page, pageSize = clampPage(page, pageSize, defaultAdminPageSize)
	msgs, total, err := u.messageRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, apperror.Internal(errors.New("Failed to fetch messages: " + err.Error()))
	}
	return paginate(msgs, total, page, pageSize), nil
}

func (u *adminUsecase) ToggleMessageReplied(ctx context.Context, id string) (*domain.ContactMessage, error) {
	if err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}

	msg, err := u.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Message not found")
	}
	if err := u.messageRepo.SetReplied(ctx, id, !msg.Replied); err != nil {
		return nil, mapRepoError(err, "Message not found")
	}
	msg.Replied = !msg.Replied
	return msg, nil
}

func (u *adminUsecase) DeleteMessage(ctx context.Context, id string) error {
	if err := u.requireAdmin(ctx); err != nil {
		return err
	}
	if err := u.messageRepo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "Message not found")
	}
	return nil
}

// requireAdmin checks if the current user has admin role
// Works with both Gin context (c.Set) and standard context.WithValue
func (u *adminUsecase) requireAdmin(ctx context.Context) error {
	var role string

	// First try Gin context string key (from c.Set)
	if r, ok := ctx.Value(string(domain.KeyUserRole)).(string); ok {
		role = r
	}

	// Fallback to CtxKey type (from context.WithValue)
	if role == "" {
		if r, ok := ctx.Value(domain.KeyUserRole).(string); ok {
			role = r
		}
	}

	if role != domain.RoleAdmin {
		return apperror.Forbidden("Admin access required")
	}
	return nil
}

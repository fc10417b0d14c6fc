package domain

import "context"

// AdminStats contains dashboard statistics
type AdminStats struct {
	TotalUsers           int64            `json:"totalUsers"`
	ActiveUsers          int64            `json:"activeUsers"`
	TotalApplications    int64            `json:"totalApplications"`
	ApplicationsByStatus map[string]int64 `json:"applicationsByStatus"`
	TotalCompanies       int64            `json:"totalCompanies"`
	UnrepliedMessages    int64            `json:"unrepliedMessages"`
}

// AdminUserDetail is a user as seen from the admin panel.
type AdminUserDetail struct {
	User
	ApplicationCount int64 `json:"applicationCount"`
}

// PaginatedResult for list responses
type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// AdminRepository holds aggregate queries used only by the admin panel.
type AdminRepository interface {
	GetStats(ctx context.Context) (*AdminStats, error)
}

// AdminUsecase defines admin business logic
type AdminUsecase interface {
	GetStats(ctx context.Context) (*AdminStats, error)

	ListUsers(ctx context.Context, email string, page, pageSize int) (*PaginatedResult[User], error)
	GetUser(ctx context.Context, userID string) (*AdminUserDetail, error)
	ToggleUserStatus(ctx context.Context, actorID, userID string) (*User, error)
	ExportUsers(ctx context.Context) ([]byte, string, error)

	ListMessages(ctx context.Context, page, pageSize int) (*PaginatedResult[ContactMessage], error)
	ToggleMessageReplied(ctx context.Context, id string) (*ContactMessage, error)
	DeleteMessage(ctx context.Context, id string) error
}

package domain

import (
	"context"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	Provider     string    `json:"provider"`
	ProviderID   string    `json:"providerId,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	LinkedIn     string    `json:"linkedin,omitempty"`
	GitHub       string    `json:"github,omitempty"`
	Website      string    `json:"website,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserListFilter drives the admin user listing.
type UserListFilter struct {
	Email    string
	Page     int
	PageSize int
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, filter UserListFilter) ([]User, int64, error)
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	FullName string `json:"fullName" binding:"required,valid_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	// ClientIP is filled by the handler for failed-login tracking.
	ClientIP string `json:"-"`
}

// AuthResponse is returned by register, login and the OAuth2 flow.
type AuthResponse struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Message  string `json:"message,omitempty"`
}

type UpdateProfileRequest struct {
	FullName string `json:"fullName" binding:"required,valid_name"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Phone    string `json:"phone" binding:"omitempty,valid_phone"`
	Address  string `json:"address" binding:"omitempty,max=255"`
	LinkedIn string `json:"linkedin" binding:"omitempty,url"`
	GitHub   string `json:"github" binding:"omitempty,url"`
	Website  string `json:"website" binding:"omitempty,url"`
	Summary  string `json:"summary" binding:"omitempty,max=4000"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
}

// OAuth2UserInfo is the normalised profile returned by a provider.
type OAuth2UserInfo struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
}

type AuthUsecase interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	// LoginWithOAuth2 finds or creates the user behind a provider profile
	// and issues a token for it.
	LoginWithOAuth2(ctx context.Context, info OAuth2UserInfo) (*AuthResponse, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
}

type UserUsecase interface {
	GetProfile(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*User, error)
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error
}

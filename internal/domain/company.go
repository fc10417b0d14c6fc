package domain

import (
	"context"
	"time"
)

type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Website     string    `json:"website,omitempty"`
	LinkedInURL string    `json:"linkedinUrl,omitempty"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CompanyRepository interface {
	// FindOrCreate returns the company whose name matches ignoring case,
	// creating it when none exists.
	FindOrCreate(ctx context.Context, name string) (*Company, error)
	GetByID(ctx context.Context, id string) (*Company, error)
	List(ctx context.Context, query string, page, pageSize int) ([]Company, int64, error)
}

type CompanyUsecase interface {
	List(ctx context.Context, query string, page, pageSize int) (*PaginatedResult[Company], error)
	GetByID(ctx context.Context, id string) (*Company, error)
}

package usecase

import (
	"context"
	"math"
	"strings"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/apperror"
)

const (
	defaultCompanyPageSize = 20
	maxPageSize            = 100
)

type companyUsecase struct {
	companyRepo domain.CompanyRepository
}

func NewCompanyUsecase(companyRepo domain.CompanyRepository) domain.CompanyUsecase {
	return &companyUsecase{companyRepo: companyRepo}
}

func (u *companyUsecase) List(ctx context.Context, query string, page, pageSize int) (*domain.PaginatedResult[domain.Company], error) {
	page, pageSize = clampPage(page, pageSize, defaultCompanyPageSize)

	companies, total, err := u.companyRepo.List(ctx, strings.TrimSpace(query), page, pageSize)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return paginate(companies, total, page, pageSize), nil
}

func (u *companyUsecase) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	company, err := u.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Company not found")
	}
	return company, nil
}

// clampPage applies 1-based paging defaults. A missing size falls back to
// def and an oversized one is capped at maxPageSize.
func clampPage(page, pageSize, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = def
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func paginate[T any](items []T, total int64, page, pageSize int) *domain.PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &domain.PaginatedResult[T]{
		Data:       items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}
}

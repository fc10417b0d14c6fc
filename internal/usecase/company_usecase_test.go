package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyList(t *testing.T) {
	ctx := context.Background()

	t.Run("Should default paging and trim the query", func(t *testing.T) {
		repo := new(MockCompanyRepo)
		repo.On("List", ctx, "acme", 1, 20).Return([]domain.Company{{ID: "c1", Name: "Acme"}}, int64(41), nil)

		res, err := usecase.NewCompanyUsecase(repo).List(ctx, "  acme ", 0, 0)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, 20, res.PageSize)
		assert.Equal(t, 3, res.TotalPages)
		assert.Len(t, res.Data, 1)
		repo.AssertExpectations(t)
	})

	t.Run("Should cap the page size", func(t *testing.T) {
		repo := new(MockCompanyRepo)
		repo.On("List", ctx, "", 2, 100).Return([]domain.Company(nil), int64(0), nil)

		res, err := usecase.NewCompanyUsecase(repo).List(ctx, "", 2, 500)

		require.NoError(t, err)
		assert.Equal(t, 100, res.PageSize)
		assert.NotNil(t, res.Data)
		assert.Empty(t, res.Data)
	})
}

func TestCompanyGetByID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCompanyRepo)
	repo.On("GetByID", ctx, "missing").Return(nil, domain.ErrNotFound)

	_, err := usecase.NewCompanyUsecase(repo).GetByID(ctx, "missing")

	assertStatus(t, err, http.StatusNotFound)
}

package postgres

import (
	"context"
	"strings"

	"applyfollow-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const companyColumns = `id, name, COALESCE(website, ''), COALESCE(linkedin_url, ''), COALESCE(logo_url, ''), created_at`

type companyRepo struct {
	db *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) domain.CompanyRepository {
	return &companyRepo{db: db}
}

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var c domain.Company
	if err := row.Scan(&c.ID, &c.Name, &c.Website, &c.LinkedInURL, &c.LogoURL, &c.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

// FindOrCreate relies on the unique index over LOWER(name): concurrent
// callers racing on the same name all end up with the same row.
func (r *companyRepo) FindOrCreate(ctx context.Context, name string) (*domain.Company, error) {
	name = strings.TrimSpace(name)

	_, err := r.db.Exec(ctx,
		`INSERT INTO companies (id, name) VALUES ($1, $2) ON CONFLICT ((LOWER(name))) DO NOTHING`,
		uuid.NewString(), name)
	if err != nil {
		return nil, mapError(err)
	}

	return scanCompany(r.db.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE LOWER(name) = LOWER($1)`, name))
}

func (r *companyRepo) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	return scanCompany(r.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
}

func (r *companyRepo) List(ctx context.Context, query string, page, pageSize int) ([]domain.Company, int64, error) {
	pattern := escapeLike(query)
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM companies WHERE $1 = '' OR name ILIKE '%' || $1 || '%' ESCAPE '\'`, pattern).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+companyColumns+` FROM companies
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY LOWER(name) ASC
		LIMIT $2 OFFSET $3`, pattern, pageSize, offset(page, pageSize))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	companies := make([]domain.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, *c)
	}
	return companies, total, rows.Err()
}

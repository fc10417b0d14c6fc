package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"applyfollow-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, COALESCE(password_hash, ''), full_name, role, is_active, provider,
	COALESCE(provider_id, ''), COALESCE(phone, ''), COALESCE(address, ''), COALESCE(linkedin, ''),
	COALESCE(github, ''), COALESCE(website, ''), COALESCE(summary, ''), created_at, updated_at`

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.IsActive, &u.Provider,
		&u.ProviderID, &u.Phone, &u.Address, &u.LinkedIn,
		&u.GitHub, &u.Website, &u.Summary, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Email = strings.ToLower(user.Email)

	query := `INSERT INTO users (id, email, password_hash, full_name, role, is_active, provider, provider_id,
			phone, address, linkedin, github, website, summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, nullable(user.PasswordHash), user.FullName, user.Role, user.IsActive,
		user.Provider, nullable(user.ProviderID), nullable(user.Phone), nullable(user.Address),
		nullable(user.LinkedIn), nullable(user.GitHub), nullable(user.Website), nullable(user.Summary),
		user.CreatedAt, user.UpdatedAt,
	)
	return mapError(err)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	return exists, err
}

// Update writes profile fields, provider linkage and the active flag.
func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	user.Email = strings.ToLower(user.Email)

	query := `UPDATE users SET email = $2, full_name = $3, role = $4, is_active = $5, provider = $6,
			provider_id = $7, phone = $8, address = $9, linkedin = $10, github = $11, website = $12,
			summary = $13, updated_at = $14
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.FullName, user.Role, user.IsActive, user.Provider,
		nullable(user.ProviderID), nullable(user.Phone), nullable(user.Address), nullable(user.LinkedIn),
		nullable(user.GitHub), nullable(user.Website), nullable(user.Summary), user.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns users ordered by full name, optionally filtered by an email
// substring, plus the total count for pagination.
func (r *userRepo) List(ctx context.Context, filter domain.UserListFilter) ([]domain.User, int64, error) {
	where := ""
	args := []interface{}{}
	if filter.Email != "" {
		where = ` WHERE email ILIKE '%' || $1 || '%' ESCAPE '\'`
		args = append(args, escapeLike(filter.Email))
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := `SELECT ` + userColumns + ` FROM users` + where +
		` ORDER BY full_name ASC, id ASC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, filter.PageSize, offset(filter.Page, filter.PageSize))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

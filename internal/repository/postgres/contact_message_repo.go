package postgres

import (
	"context"
	"time"

	"applyfollow-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contactMessageColumns = `id, name, email, COALESCE(subject, ''), message, replied, created_at`

type contactMessageRepo struct {
	db *pgxpool.Pool
}

func NewContactMessageRepository(db *pgxpool.Pool) domain.ContactMessageRepository {
	return &contactMessageRepo{db: db}
}

func scanContactMessage(row pgx.Row) (*domain.ContactMessage, error) {
	var m domain.ContactMessage
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Replied, &m.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &m, nil
}

func (r *contactMessageRepo) Create(ctx context.Context, m *domain.ContactMessage) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, message, replied, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.Name, m.Email, nullable(m.Subject), m.Message, m.Replied, m.CreatedAt)
	return mapError(err)
}

func (r *contactMessageRepo) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	return scanContactMessage(r.db.QueryRow(ctx,
		`SELECT `+contactMessageColumns+` FROM contact_messages WHERE id = $1`, id))
}

// List returns messages newest first.
func (r *contactMessageRepo) List(ctx context.Context, page, pageSize int) ([]domain.ContactMessage, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+contactMessageColumns+` FROM contact_messages
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`, pageSize, offset(page, pageSize))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	msgs := make([]domain.ContactMessage, 0)
	for rows.Next() {
		m, err := scanContactMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, total, rows.Err()
}

func (r *contactMessageRepo) SetReplied(ctx context.Context, id string, replied bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE contact_messages SET replied = $2 WHERE id = $1`, id, replied)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *contactMessageRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

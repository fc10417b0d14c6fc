package postgres

import (
	"context"
	"time"

	"applyfollow-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const applicationSelect = `
	SELECT a.id, a.user_id, a.company_id, a.position, a.status,
		COALESCE(a.job_url, ''), COALESCE(a.notes, ''), a.applied_at, a.created_at, a.updated_at,
		c.id, c.name, COALESCE(c.website, ''), COALESCE(c.linkedin_url, ''), COALESCE(c.logo_url, ''), c.created_at
	FROM applications a
	JOIN companies c ON c.id = a.company_id`

const contactColumns = `id, application_id, name, COALESCE(role, ''), COALESCE(email, ''), COALESCE(phone, ''), COALESCE(linkedin, '')`

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	var c domain.Company
	err := row.Scan(
		&a.ID, &a.UserID, &a.CompanyID, &a.Position, &a.Status,
		&a.JobURL, &a.Notes, &a.AppliedAt, &a.CreatedAt, &a.UpdatedAt,
		&c.ID, &c.Name, &c.Website, &c.LinkedInURL, &c.LogoURL, &c.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	a.Company = &c
	a.Contacts = []domain.Contact{}
	return &a, nil
}

// Create inserts the application and its contacts in one transaction.
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = domain.ApplicationStatusApplied
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = now
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO applications (id, user_id, company_id, position, status, job_url, notes, applied_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			app.ID, app.UserID, app.CompanyID, app.Position, app.Status,
			nullable(app.JobURL), nullable(app.Notes), app.AppliedAt, app.CreatedAt, app.UpdatedAt,
		)
		if err != nil {
			return mapError(err)
		}
		return insertContacts(ctx, tx, app.ID, app.Contacts)
	})
}

func insertContacts(ctx context.Context, tx pgx.Tx, applicationID string, contacts []domain.Contact) error {
	for i := range contacts {
		c := &contacts[i]
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.ApplicationID = applicationID
		_, err := tx.Exec(ctx, `
			INSERT INTO contacts (id, application_id, name, role, email, phone, linkedin)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.ApplicationID, c.Name, nullable(c.Role), nullable(c.Email), nullable(c.Phone), nullable(c.LinkedIn),
		)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	app, err := scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, err
	}
	contacts, err := r.ListContacts(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	app.Contacts = contacts
	return app, nil
}

func (r *applicationRepo) FindDuplicate(ctx context.Context, userID, companyName, position string) (*domain.Application, error) {
	row := r.db.QueryRow(ctx, applicationSelect+`
		WHERE a.user_id = $1 AND LOWER(c.name) = LOWER($2) AND a.position = $3
		ORDER BY a.created_at ASC
		LIMIT 1`, userID, companyName, position)
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}
	contacts, err := r.ListContacts(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	app.Contacts = contacts
	return app, nil
}

// ListByUser returns the user's applications newest first, with contacts
// loaded in a single extra query.
func (r *applicationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Application, error) {
	rows, err := r.db.Query(ctx, applicationSelect+`
		WHERE a.user_id = $1
		ORDER BY a.applied_at DESC, a.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}

	apps := make([]domain.Application, 0)
	index := make(map[string]int)
	ids := make([]string, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[a.ID] = len(apps)
		ids = append(ids, a.ID)
		apps = append(apps, *a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return apps, nil
	}

	crows, err := r.db.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE application_id = ANY($1::uuid[]) ORDER BY name`,
		pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer crows.Close()

	for crows.Next() {
		var c domain.Contact
		if err := crows.Scan(&c.ID, &c.ApplicationID, &c.Name, &c.Role, &c.Email, &c.Phone, &c.LinkedIn); err != nil {
			return nil, err
		}
		if i, ok := index[c.ApplicationID]; ok {
			apps[i].Contacts = append(apps[i].Contacts, c)
		}
	}
	return apps, crows.Err()
}

// Update writes the row and replaces all contacts (delete then insert).
func (r *applicationRepo) Update(ctx context.Context, app *domain.Application) error {
	app.UpdatedAt = time.Now().UTC()

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE applications
			SET company_id = $2, position = $3, status = $4, job_url = $5, notes = $6, applied_at = $7, updated_at = $8
			WHERE id = $1`,
			app.ID, app.CompanyID, app.Position, app.Status, nullable(app.JobURL), nullable(app.Notes),
			app.AppliedAt, app.UpdatedAt,
		)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM contacts WHERE application_id = $1`, app.ID); err != nil {
			return err
		}
		return insertContacts(ctx, tx, app.ID, app.Contacts)
	})
}

func (r *applicationRepo) UpdateNotes(ctx context.Context, id, notes string) error {
	return r.execOne(ctx, `UPDATE applications SET notes = $2, updated_at = NOW() WHERE id = $1`, id, nullable(notes))
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.execOne(ctx, `UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *applicationRepo) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM applications WHERE id = $1`, id)
}

func (r *applicationRepo) execOne(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *applicationRepo) ListContacts(ctx context.Context, applicationID string) ([]domain.Contact, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE application_id = $1 ORDER BY name`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]domain.Contact, 0)
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.ApplicationID, &c.Name, &c.Role, &c.Email, &c.Phone, &c.LinkedIn); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *applicationRepo) AddContact(ctx context.Context, contact *domain.Contact) error {
	contacts := []domain.Contact{*contact}
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return insertContacts(ctx, tx, contact.ApplicationID, contacts)
	})
	if err != nil {
		return err
	}
	*contact = contacts[0]
	return nil
}

func (r *applicationRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

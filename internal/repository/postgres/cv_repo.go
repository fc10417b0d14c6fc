package postgres

import (
	"context"

	"applyfollow-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type cvRepo struct {
	db *pgxpool.Pool
}

func NewCVRepository(db *pgxpool.Pool) domain.CVRepository {
	return &cvRepo{db: db}
}

func (r *cvRepo) GetSections(ctx context.Context, userID string) (*domain.CVSections, error) {
	s := &domain.CVSections{
		Educations:   []domain.Education{},
		Experiences:  []domain.Experience{},
		Skills:       []domain.Skill{},
		Languages:    []domain.Language{},
		Certificates: []domain.Certificate{},
	}

	err := collect(ctx, r.db, `
		SELECT id, institution, COALESCE(degree, ''), COALESCE(field_of_study, ''),
			COALESCE(to_char(start_date, 'YYYY-MM-DD'), ''), COALESCE(to_char(end_date, 'YYYY-MM-DD'), ''),
			COALESCE(description, '')
		FROM educations WHERE user_id = $1
		ORDER BY start_date DESC NULLS LAST`, userID,
		func(rows pgx.Rows) error {
			var e domain.Education
			if err := rows.Scan(&e.ID, &e.Institution, &e.Degree, &e.FieldOfStudy, &e.StartDate, &e.EndDate, &e.Description); err != nil {
				return err
			}
			s.Educations = append(s.Educations, e)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = collect(ctx, r.db, `
		SELECT id, company, position,
			COALESCE(to_char(start_date, 'YYYY-MM-DD'), ''), COALESCE(to_char(end_date, 'YYYY-MM-DD'), ''),
			COALESCE(description, '')
		FROM experiences WHERE user_id = $1
		ORDER BY start_date DESC NULLS LAST`, userID,
		func(rows pgx.Rows) error {
			var e domain.Experience
			if err := rows.Scan(&e.ID, &e.Company, &e.Position, &e.StartDate, &e.EndDate, &e.Description); err != nil {
				return err
			}
			s.Experiences = append(s.Experiences, e)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = collect(ctx, r.db, `SELECT id, name FROM skills WHERE user_id = $1 ORDER BY name`, userID,
		func(rows pgx.Rows) error {
			var sk domain.Skill
			if err := rows.Scan(&sk.ID, &sk.Name); err != nil {
				return err
			}
			s.Skills = append(s.Skills, sk)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = collect(ctx, r.db, `SELECT id, name, level FROM languages WHERE user_id = $1 ORDER BY name`, userID,
		func(rows pgx.Rows) error {
			var l domain.Language
			if err := rows.Scan(&l.ID, &l.Name, &l.Level); err != nil {
				return err
			}
			s.Languages = append(s.Languages, l)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = collect(ctx, r.db, `
		SELECT id, name, COALESCE(issuer, ''), COALESCE(to_char(date, 'YYYY-MM-DD'), ''), COALESCE(url, '')
		FROM certificates WHERE user_id = $1
		ORDER BY date DESC NULLS LAST`, userID,
		func(rows pgx.Rows) error {
			var c domain.Certificate
			if err := rows.Scan(&c.ID, &c.Name, &c.Issuer, &c.Date, &c.URL); err != nil {
				return err
			}
			s.Certificates = append(s.Certificates, c)
			return nil
		})
	if err != nil {
		return nil, err
	}

	return s, nil
}

func collect(ctx context.Context, db *pgxpool.Pool, query, userID string, fn func(pgx.Rows) error) error {
	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Replace updates the profile columns, then deletes and re-inserts every
// section, all inside one transaction.
func (r *cvRepo) Replace(ctx context.Context, userID string, p domain.CVProfile, s domain.CVSections) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users SET phone = $2, address = $3, linkedin = $4, github = $5, website = $6, summary = $7, updated_at = NOW()
			WHERE id = $1`,
			userID, nullable(p.Phone), nullable(p.Address), nullable(p.LinkedIn),
			nullable(p.GitHub), nullable(p.Website), nullable(p.Summary))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}

		for _, table := range []string{"educations", "experiences", "skills", "languages", "certificates"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
				return err
			}
		}

		for _, e := range s.Educations {
			_, err := tx.Exec(ctx, `
				INSERT INTO educations (id, user_id, institution, degree, field_of_study, start_date, end_date, description)
				VALUES ($1, $2, $3, $4, $5, $6::date, $7::date, $8)`,
				uuid.NewString(), userID, e.Institution, nullable(e.Degree), nullable(e.FieldOfStudy),
				nullable(e.StartDate), nullable(e.EndDate), nullable(e.Description))
			if err != nil {
				return err
			}
		}

		for _, e := range s.Experiences {
			_, err := tx.Exec(ctx, `
				INSERT INTO experiences (id, user_id, company, position, start_date, end_date, description)
				VALUES ($1, $2, $3, $4, $5::date, $6::date, $7)`,
				uuid.NewString(), userID, e.Company, e.Position,
				nullable(e.StartDate), nullable(e.EndDate), nullable(e.Description))
			if err != nil {
				return err
			}
		}

		if len(s.Skills) > 0 {
			ids := make([]string, len(s.Skills))
			names := make([]string, len(s.Skills))
			for i, sk := range s.Skills {
				ids[i] = uuid.NewString()
				names[i] = sk.Name
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO skills (id, user_id, name)
				SELECT id, $2, name FROM unnest($1::uuid[], $3::text[]) AS t(id, name)`,
				pq.Array(ids), userID, pq.Array(names))
			if err != nil {
				return err
			}
		}

		for _, l := range s.Languages {
			_, err := tx.Exec(ctx, `INSERT INTO languages (id, user_id, name, level) VALUES ($1, $2, $3, $4)`,
				uuid.NewString(), userID, l.Name, domain.NormalizeLanguageLevel(l.Level))
			if err != nil {
				return err
			}
		}

		for _, c := range s.Certificates {
			_, err := tx.Exec(ctx, `
				INSERT INTO certificates (id, user_id, name, issuer, date, url)
				VALUES ($1, $2, $3, $4, $5::date, $6)`,
				uuid.NewString(), userID, c.Name, nullable(c.Issuer), nullable(c.Date), nullable(c.URL))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

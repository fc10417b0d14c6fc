package postgres

import (
	"context"
	"time"

	"applyfollow-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const eventColumns = `e.id, e.user_id, e.title, to_char(e.date, 'YYYY-MM-DD'), COALESCE(to_char(e.time, 'HH24:MI'), ''),
	e.type, COALESCE(e.notes, ''), e.has_alarm, COALESCE(to_char(e.alarm_time, 'HH24:MI'), ''), e.notified`

type calendarRepo struct {
	db *pgxpool.Pool
}

func NewCalendarEventRepository(db *pgxpool.Pool) domain.CalendarEventRepository {
	return &calendarRepo{db: db}
}

func scanEvent(row pgx.Row, extra ...interface{}) (*domain.CalendarEvent, error) {
	var e domain.CalendarEvent
	dest := []interface{}{
		&e.ID, &e.UserID, &e.Title, &e.Date, &e.Time,
		&e.Type, &e.Notes, &e.HasAlarm, &e.AlarmTime, &e.Notified,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapError(err)
	}
	return &e, nil
}

func (r *calendarRepo) Create(ctx context.Context, e *domain.CalendarEvent) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO calendar_events (id, user_id, title, date, time, type, notes, has_alarm, alarm_time, notified)
		VALUES ($1, $2, $3, $4::date, $5::time, $6, $7, $8, $9::time, $10)`,
		e.ID, e.UserID, e.Title, e.Date, nullable(e.Time), e.Type, nullable(e.Notes),
		e.HasAlarm, nullable(e.AlarmTime), e.Notified,
	)
	return mapError(err)
}

func (r *calendarRepo) GetByID(ctx context.Context, id string) (*domain.CalendarEvent, error) {
	return scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM calendar_events e WHERE e.id = $1`, id))
}

func (r *calendarRepo) ListByUser(ctx context.Context, userID string) ([]domain.CalendarEvent, error) {
	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+` FROM calendar_events e
		WHERE e.user_id = $1
		ORDER BY e.date ASC, e.time ASC NULLS FIRST`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.CalendarEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *calendarRepo) Update(ctx context.Context, e *domain.CalendarEvent) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE calendar_events
		SET title = $2, date = $3::date, time = $4::time, type = $5, notes = $6,
			has_alarm = $7, alarm_time = $8::time, notified = $9
		WHERE id = $1`,
		e.ID, e.Title, e.Date, nullable(e.Time), e.Type, nullable(e.Notes),
		e.HasAlarm, nullable(e.AlarmTime), e.Notified,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *calendarRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *calendarRepo) ExistsPendingAlarm(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM calendar_events WHERE has_alarm AND NOT notified)`).Scan(&exists)
	return exists, err
}

// ListDueAlarms compares against the wall-clock date and time of now, so
// the caller decides the time zone.
func (r *calendarRepo) ListDueAlarms(ctx context.Context, now time.Time) ([]domain.DueReminder, error) {
	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+`, u.email, u.full_name
		FROM calendar_events e
		JOIN users u ON u.id = e.user_id
		WHERE e.has_alarm AND NOT e.notified
			AND (e.date < $1::date OR (e.date = $1::date AND e.alarm_time <= $2::time))
		ORDER BY e.date, e.alarm_time`,
		now.Format(domain.DateLayout), now.Format("15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	due := make([]domain.DueReminder, 0)
	for rows.Next() {
		var d domain.DueReminder
		e, err := scanEvent(rows, &d.UserEmail, &d.UserName)
		if err != nil {
			return nil, err
		}
		d.Event = *e
		due = append(due, d)
	}
	return due, rows.Err()
}

func (r *calendarRepo) MarkNotified(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`UPDATE calendar_events SET notified = TRUE WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	return err
}

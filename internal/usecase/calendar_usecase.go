package usecase

import (
	"context"
	"strings"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/apperror"
	"applyfollow-backend/pkg/validation"

	"github.com/google/uuid"
)

type calendarUsecase struct {
	eventRepo domain.CalendarEventRepository
	reminders domain.ReminderTrigger
}

func NewCalendarUsecase(eventRepo domain.CalendarEventRepository, reminders domain.ReminderTrigger) domain.CalendarUsecase {
	return &calendarUsecase{eventRepo: eventRepo, reminders: reminders}
}

func (u *calendarUsecase) List(ctx context.Context, userID string) ([]domain.CalendarEvent, error) {
	events, err := u.eventRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return events, nil
}

func (u *calendarUsecase) Create(ctx context.Context, userID string, req domain.CalendarEventRequest) (*domain.CalendarEvent, error) {
	event := &domain.CalendarEvent{
		ID:     uuid.NewString(),
		UserID: userID,
	}
	if err := applyEventRequest(event, req); err != nil {
		return nil, err
	}

	if err := u.eventRepo.Create(ctx, event); err != nil {
		return nil, apperror.Internal(err)
	}
	if event.HasAlarm {
		u.trigger()
	}
	return event, nil
}

// Update rewrites an owned event. Moving or re-enabling the alarm makes it
// pending again.
func (u *calendarUsecase) Update(ctx context.Context, userID, id string, req domain.CalendarEventRequest) (*domain.CalendarEvent, error) {
	event, err := u.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	before := *event
	if err := applyEventRequest(event, req); err != nil {
		return nil, err
	}

	alarmChanged := event.HasAlarm != before.HasAlarm ||
		event.AlarmTime != before.AlarmTime ||
		event.Date != before.Date
	if alarmChanged {
		event.Notified = false
	}

	if err := u.eventRepo.Update(ctx, event); err != nil {
		return nil, mapRepoError(err, "Event not found")
	}
	if event.HasAlarm && !event.Notified {
		u.trigger()
	}
	return event, nil
}

func (u *calendarUsecase) Delete(ctx context.Context, userID, id string) error {
	if _, err := u.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := u.eventRepo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "Event not found")
	}
	return nil
}

func (u *calendarUsecase) owned(ctx context.Context, userID, id string) (*domain.CalendarEvent, error) {
	event, err := u.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Event not found")
	}
	if event.UserID != userID {
		return nil, apperror.NotFound("Event not found")
	}
	return event, nil
}

func (u *calendarUsecase) trigger() {
	if u.reminders != nil {
		u.reminders.Trigger()
	}
}

// applyEventRequest copies the request onto event. An alarm without its own
// time rings at the event time.
func applyEventRequest(event *domain.CalendarEvent, req domain.CalendarEventRequest) error {
	event.Title = strings.TrimSpace(req.Title)
	event.Date = req.Date
	event.Time = req.Time
	event.Type = strings.ToUpper(strings.TrimSpace(req.Type))
	if event.Type == "" {
		event.Type = domain.EventTypeEvent
	}
	event.Notes = req.Notes
	event.HasAlarm = req.HasAlarm
	event.AlarmTime = ""

	if req.HasAlarm {
		event.AlarmTime = req.AlarmTime
		if event.AlarmTime == "" {
			event.AlarmTime = req.Time
		}
		if event.AlarmTime == "" {
			return apperror.Validation([]validation.FieldError{
				{Field: "alarmTime", Error: "alarmTime is required when hasAlarm is true"},
			})
		}
	}
	return nil
}

package domain

import (
	"context"
	"time"
)

const (
	EventTypeInterview = "INTERVIEW"
	EventTypeDeadline  = "DEADLINE"
	EventTypeEvent     = "EVENT"
)

// Layouts used for calendar dates and times on the wire and in SQL.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type CalendarEvent struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Time      string `json:"time,omitempty"`
	Type      string `json:"type"`
	Notes     string `json:"notes,omitempty"`
	HasAlarm  bool   `json:"hasAlarm"`
	AlarmTime string `json:"alarmTime,omitempty"`
	Notified  bool   `json:"notified"`
}

type CalendarEventRequest struct {
	Title     string `json:"title" binding:"required,max=255"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Time      string `json:"time" binding:"omitempty,datetime=15:04"`
	Type      string `json:"type" binding:"omitempty,oneof=INTERVIEW DEADLINE EVENT"`
	Notes     string `json:"notes" binding:"omitempty,max=4000"`
	HasAlarm  bool   `json:"hasAlarm"`
	AlarmTime string `json:"alarmTime" binding:"omitempty,datetime=15:04"`
}

// DueReminder is a pending alarm joined with its owner for notification.
type DueReminder struct {
	Event     CalendarEvent
	UserEmail string
	UserName  string
}

type CalendarEventRepository interface {
	Create(ctx context.Context, event *CalendarEvent) error
	GetByID(ctx context.Context, id string) (*CalendarEvent, error)
	ListByUser(ctx context.Context, userID string) ([]CalendarEvent, error)
	Update(ctx context.Context, event *CalendarEvent) error
	Delete(ctx context.Context, id string) error
	// ExistsPendingAlarm reports whether any event has an alarm that was not yet sent.
	ExistsPendingAlarm(ctx context.Context) (bool, error)
	// ListDueAlarms returns pending alarms dated before today, or today at or before now.
	ListDueAlarms(ctx context.Context, now time.Time) ([]DueReminder, error)
	MarkNotified(ctx context.Context, ids []string) error
}

// ReminderTrigger is notified when an alarm is added or moved.
type ReminderTrigger interface {
	Trigger()
}

type CalendarUsecase interface {
	List(ctx context.Context, userID string) ([]CalendarEvent, error)
	Create(ctx context.Context, userID string, req CalendarEventRequest) (*CalendarEvent, error)
	Update(ctx context.Context, userID, id string, req CalendarEventRequest) (*CalendarEvent, error)
	Delete(ctx context.Context, userID, id string) error
}

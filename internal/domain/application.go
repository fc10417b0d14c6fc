package domain

import (
	"context"
	"time"
)

// Application status values.
const (
	ApplicationStatusApplied   = "APPLIED"
	ApplicationStatusInterview = "INTERVIEW"
	ApplicationStatusOffer     = "OFFER"
	ApplicationStatusRejected  = "REJECTED"
	ApplicationStatusGhosted   = "GHOSTED"
)

var ApplicationStatuses = []string{
	ApplicationStatusApplied,
	ApplicationStatusInterview,
	ApplicationStatusOffer,
	ApplicationStatusRejected,
	ApplicationStatusGhosted,
}

func IsValidApplicationStatus(s string) bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Application is a job application tracked by a user.
type Application struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CompanyID string    `json:"-"`
	Company   *Company  `json:"company,omitempty"`
	Position  string    `json:"position"`
	Status    string    `json:"status"`
	JobURL    string    `json:"jobUrl,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	AppliedAt time.Time `json:"appliedAt"`
	Contacts  []Contact `json:"contacts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Contact is a person linked to a single application.
type Contact struct {
	ID            string `json:"id"`
	ApplicationID string `json:"applicationId"`
	Name          string `json:"name"`
	Role          string `json:"role,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	LinkedIn      string `json:"linkedin,omitempty"`
}

type ContactInput struct {
	Name     string `json:"name" binding:"required,max=255"`
	Role     string `json:"role" binding:"omitempty,max=255"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone" binding:"omitempty,valid_phone"`
	LinkedIn string `json:"linkedin" binding:"omitempty,url"`
}

type CreateApplicationRequest struct {
	CompanyName string         `json:"companyName" binding:"required,max=255"`
	Position    string         `json:"position" binding:"required,max=255"`
	Status      string         `json:"status" binding:"omitempty,application_status"`
	JobURL      string         `json:"jobUrl" binding:"omitempty,url"`
	Notes       string         `json:"notes" binding:"omitempty,max=10000"`
	AppliedAt   *time.Time     `json:"appliedAt"`
	Contacts    []ContactInput `json:"contacts" binding:"omitempty,dive"`
}

// UpdateApplicationRequest replaces the editable fields and the contact list.
type UpdateApplicationRequest = CreateApplicationRequest

type UpdateNotesRequest struct {
	Notes string `json:"notes" binding:"max=10000"`
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id string) (*Application, error)
	// FindDuplicate looks up the user's application for the same company
	// name (ignoring case) and position.
	FindDuplicate(ctx context.Context, userID, companyName, position string) (*Application, error)
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	// Update writes the application row and replaces its contacts in one transaction.
	Update(ctx context.Context, app *Application) error
	UpdateNotes(ctx context.Context, id, notes string) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	ListContacts(ctx context.Context, applicationID string) ([]Contact, error)
	AddContact(ctx context.Context, contact *Contact) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type ApplicationUsecase interface {
	Create(ctx context.Context, userID string, req CreateApplicationRequest) (*Application, bool, error)
	ListMine(ctx context.Context, userID string) ([]Application, error)
	Get(ctx context.Context, userID, id string) (*Application, error)
	Update(ctx context.Context, userID, id string, req UpdateApplicationRequest) (*Application, error)
	UpdateNotes(ctx context.Context, userID, id, notes string) (*Application, error)
	UpdateStatus(ctx context.Context, userID, id, status string) (*Application, error)
	Delete(ctx context.Context, userID, id string) error
	ListContacts(ctx context.Context, userID, id string) ([]Contact, error)
	AddContact(ctx context.Context, userID, id string, req ContactInput) (*Contact, error)
	// Export renders the user's applications as an .xlsx workbook.
	Export(ctx context.Context, userID string) ([]byte, string, error)
	ListByUserForAdmin(ctx context.Context, userID string) ([]Application, error)
}

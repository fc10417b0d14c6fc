package domain

import (
	"context"
	"time"
)

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name" binding:"required,valid_name"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"omitempty,max=255,no_emoji"`
	Message string `json:"message" binding:"required,max=5000"`
}

// ContactMessage is a stored contact form submission.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Replied   bool      `json:"replied"`
	CreatedAt time.Time `json:"createdAt"`
}

type ContactMessageRepository interface {
	Create(ctx context.Context, msg *ContactMessage) error
	GetByID(ctx context.Context, id string) (*ContactMessage, error)
	List(ctx context.Context, page, pageSize int) ([]ContactMessage, int64, error)
	SetReplied(ctx context.Context, id string, replied bool) error
	Delete(ctx context.Context, id string) error
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// SendContactMessage stores the message and notifies the admin mailbox.
	SendContactMessage(ctx context.Context, req *ContactRequest) (*ContactMessage, error)
}

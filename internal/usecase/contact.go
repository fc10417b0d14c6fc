package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/apperror"
	"applyfollow-backend/pkg/email"
	"applyfollow-backend/pkg/logger"

	"github.com/google/uuid"
)

const contactNotifyTimeout = 30 * time.Second

type contactUsecase struct {
	messageRepo domain.ContactMessageRepository
	mailer      email.Mailer
	adminTo     string

	// wg tracks in-flight notifications so tests and shutdown can wait on them.
	wg sync.WaitGroup
}

// ContactService is the contact usecase plus a way to wait for pending
// admin notifications.
type ContactService interface {
	domain.ContactUsecase
	Wait()
}

// NewContactUsecase creates a new contact usecase. Notifications are skipped
// when adminTo is empty.
func NewContactUsecase(messageRepo domain.ContactMessageRepository, mailer email.Mailer, adminTo string) ContactService {
	return &contactUsecase{
		messageRepo: messageRepo,
		mailer:      mailer,
		adminTo:     strings.TrimSpace(adminTo),
	}
}

// SendContactMessage stores the message, then notifies the admin mailbox
// in the background.
func (uc *contactUsecase) SendContactMessage(ctx context.Context, req *domain.ContactRequest) (*domain.ContactMessage, error) {
	msg := &domain.ContactMessage{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: time.Now().UTC(),
	}
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return nil, apperror.BadRequest("Name, email and message are required")
	}

	if err := uc.messageRepo.Create(ctx, msg); err != nil {
		return nil, apperror.Internal(err)
	}

	if uc.mailer != nil && uc.adminTo != "" {
		uc.wg.Add(1)
		go uc.notify(context.WithoutCancel(ctx), *msg)
	}
	return msg, nil
}

func (uc *contactUsecase) notify(ctx context.Context, msg domain.ContactMessage) {
	defer uc.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, contactNotifyTimeout)
	defer cancel()

	mail, err := email.ContactNotification(uc.adminTo, email.ContactEmailData{
		SenderName:  msg.Name,
		SenderEmail: msg.Email,
		Subject:     msg.Subject,
		Message:     msg.Message,
	})
	if err != nil {
		logger.Log.Error("failed to build contact notification", "message_id", msg.ID, "error", err)
		return
	}
	if err := uc.mailer.Send(ctx, mail); err != nil {
		logger.Log.Error("failed to send contact notification", "message_id", msg.ID, "error", err)
	}
}

func (uc *contactUsecase) Wait() {
	uc.wg.Wait()
}

package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSendContactMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Should store and notify the admin", func(t *testing.T) {
		repo := new(MockMessageRepo)
		mailer := &recordingMailer{}
		uc := usecase.NewContactUsecase(repo, mailer, "admin@applyfollow.app")
		repo.On("Create", ctx, mock.AnythingOfType("*domain.ContactMessage")).Return(nil)

		msg, err := uc.SendContactMessage(ctx, &domain.ContactRequest{
			Name: " Jane ", Email: "Jane@Example.com", Subject: "Hello", Message: "Great app",
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane", msg.Name)
		assert.Equal(t, "jane@example.com", msg.Email)
		assert.False(t, msg.Replied)

		uc.Wait()
		sent := mailer.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "admin@applyfollow.app", sent[0].To)
		assert.Equal(t, "jane@example.com", sent[0].ReplyTo)
		assert.Equal(t, "Contact Form: Hello", sent[0].Subject)
	})

	t.Run("Should still succeed when mail fails", func(t *testing.T) {
		repo := new(MockMessageRepo)
		uc := usecase.NewContactUsecase(repo, &recordingMailer{err: errors.New("smtp down")}, "admin@applyfollow.app")
		repo.On("Create", ctx, mock.AnythingOfType("*domain.ContactMessage")).Return(nil)

		_, err := uc.SendContactMessage(ctx, &domain.ContactRequest{Name: "Jane", Email: "j@example.com", Message: "Hi"})
		require.NoError(t, err)
		uc.Wait()
	})

	t.Run("Should skip notification without an admin address", func(t *testing.T) {
		repo := new(MockMessageRepo)
		mailer := &recordingMailer{}
		uc := usecase.NewContactUsecase(repo, mailer, "")
		repo.On("Create", ctx, mock.AnythingOfType("*domain.ContactMessage")).Return(nil)

		_, err := uc.SendContactMessage(ctx, &domain.ContactRequest{Name: "Jane", Email: "j@example.com", Message: "Hi"})
		require.NoError(t, err)
		uc.Wait()
		assert.Empty(t, mailer.Sent())
	})

	t.Run("Should reject blank message", func(t *testing.T) {
		repo := new(MockMessageRepo)
		uc := usecase.NewContactUsecase(repo, nil, "")

		_, err := uc.SendContactMessage(ctx, &domain.ContactRequest{Name: "Jane", Email: "j@example.com", Message: "   "})
		assertStatus(t, err, http.StatusBadRequest)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

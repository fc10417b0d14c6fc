package email

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"applyfollow-backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderMessage(t *testing.T) {
	msg, err := ReminderMessage("ann@example.com", ReminderData{
		UserName: "Ann",
		Title:    "Interview with Acme",
		Date:     "2024-05-01",
		Time:     "09:30",
	})
	require.NoError(t, err)

	assert.Equal(t, "ann@example.com", msg.To)
	assert.Equal(t, "ApplyFollow Reminder: Interview with Acme", msg.Subject)
	assert.Contains(t, msg.Body, "Hello Ann,")
	assert.Contains(t, msg.Body, "Date: 2024-05-01")
	assert.Contains(t, msg.Body, "Time: 09:30")
	assert.Contains(t, msg.Body, "Notes: -")
	assert.False(t, msg.HTML)
}

func TestContactNotificationEscapesInput(t *testing.T) {
	msg, err := ContactNotification("admin@example.com", ContactEmailData{
		SenderName:  "Eve",
		SenderEmail: "eve@example.com",
		Message:     "<script>alert(1)</script>",
	})
	require.NoError(t, err)

	assert.True(t, msg.HTML)
	assert.Equal(t, "Contact Form: (no subject)", msg.Subject)
	assert.Equal(t, "eve@example.com", msg.ReplyTo)
	assert.NotContains(t, msg.Body, "<script>")
}

func TestSMTPMailerSend(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotMsg string

	m := &SMTPMailer{
		host: "smtp.example.com", port: "587", username: "u", password: "p", fromEmail: "noreply@example.com",
		send: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotTo, gotMsg = addr, to, string(msg)
			return nil
		},
	}

	err := m.Send(context.Background(), Message{To: "ann@example.com", Subject: "Hi\r\nBcc: evil@example.com", Body: "body"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"ann@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: noreply@example.com\r\n"))
	assert.NotContains(t, gotMsg, "\r\nBcc:")
	assert.True(t, strings.HasSuffix(gotMsg, "\r\n\r\nbody"))
}

func TestNewMailerFallsBackToLog(t *testing.T) {
	m := NewMailer(config.SMTPConfig{})
	_, ok := m.(LogMailer)
	assert.True(t, ok)
	assert.NoError(t, m.Send(context.Background(), Message{To: "x@example.com"}))
}

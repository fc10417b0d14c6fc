package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	texttemplate "text/template"

	"applyfollow-backend/config"
	"applyfollow-backend/pkg/logger"
)

// Message is a single outgoing email.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
	HTML    bool
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer returns an SMTP mailer when SMTP is configured and a
// log-only mailer otherwise.
func NewMailer(cfg config.SMTPConfig) Mailer {
	m := &SMTPMailer{
		host:      cfg.Host,
		port:      cfg.Port,
		username:  cfg.Username,
		password:  cfg.Password,
		fromEmail: cfg.From,
		send:      smtp.SendMail,
	}
	if !m.IsConfigured() {
		logger.Log.Warn("SMTP not configured, emails will only be logged")
		return LogMailer{}
	}
	return m
}

// SMTPMailer handles sending emails via SMTP
type SMTPMailer struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	contentType := "text/plain; charset=UTF-8"
	if msg.HTML {
		contentType = "text/html; charset=UTF-8"
	}

	var raw strings.Builder
	fmt.Fprintf(&raw, "From: %s\r\n", s.fromEmail)
	fmt.Fprintf(&raw, "To: %s\r\n", msg.To)
	if msg.ReplyTo != "" {
		fmt.Fprintf(&raw, "Reply-To: %s\r\n", sanitizeHeader(msg.ReplyTo))
	}
	fmt.Fprintf(&raw, "Subject: %s\r\n", sanitizeHeader(msg.Subject))
	raw.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&raw, "Content-Type: %s\r\n\r\n", contentType)
	raw.WriteString(msg.Body)

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{msg.To}, []byte(raw.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the mailer has valid SMTP configuration
func (s *SMTPMailer) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

// LogMailer writes messages to the application log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	logger.Log.Info("email (not sent, SMTP disabled)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

// sanitizeHeader strips CR/LF so user input cannot inject headers.
func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// ReminderData feeds the calendar reminder email.
type ReminderData struct {
	UserName string
	Title    string
	Date     string
	Time     string
	Notes    string
}

const reminderTemplate = `Hello {{.UserName}},

This is a reminder for your event:

Title: {{.Title}}
Date: {{.Date}}
Time: {{if .Time}}{{.Time}}{{else}}All day{{end}}
Notes: {{if .Notes}}{{.Notes}}{{else}}-{{end}}

Best regards,
The ApplyFollow Team
`

var reminderTmpl = texttemplate.Must(texttemplate.New("reminder").Parse(reminderTemplate))

// ReminderMessage builds the plain-text reminder for one event.
func ReminderMessage(to string, data ReminderData) (Message, error) {
	var body bytes.Buffer
	if err := reminderTmpl.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("failed to execute reminder template: %w", err)
	}
	return Message{
		To:      to,
		Subject: "ApplyFollow Reminder: " + data.Title,
		Body:    body.String(),
	}, nil
}

// ContactEmailData holds the data for contact form emails
type ContactEmailData struct {
	SenderName  string
	SenderEmail string
	Subject     string
	Message     string
}

const contactEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Contact Message</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2E7D32; color: white; padding: 16px; text-align: center; }
        .label { font-weight: bold; color: #555; }
        .message-box { background: #f9f9f9; padding: 15px; border-left: 4px solid #2E7D32; margin-top: 10px; white-space: pre-wrap; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h2>New Contact Message</h2></div>
        <p><span class="label">From:</span> {{.SenderName}} ({{.SenderEmail}})</p>
        <p><span class="label">Subject:</span> {{.Subject}}</p>
        <div class="message-box">{{.Message}}</div>
    </div>
</body>
</html>`

var contactTmpl = template.Must(template.New("contact").Parse(contactEmailTemplate))

// ContactNotification builds the admin notification for a contact message.
func ContactNotification(to string, data ContactEmailData) (Message, error) {
	var body bytes.Buffer
	if err := contactTmpl.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("failed to execute email template: %w", err)
	}
	subject := data.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	return Message{
		To:      to,
		ReplyTo: data.SenderEmail,
		Subject: "Contact Form: " + subject,
		Body:    body.String(),
		HTML:    true,
	}, nil
}

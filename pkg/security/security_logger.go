package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventLoginSuccess       EventType = "login_success"
	EventLoginFailed        EventType = "login_failed"
	EventLoginBlocked       EventType = "login_blocked"
	EventOAuth2Failed       EventType = "oauth2_failed"
	EventRegistered         EventType = "user_registered"
	EventPasswordChanged    EventType = "password_changed"
	EventUserStatusChanged  EventType = "user_status_changed"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventForbiddenAccess    EventType = "forbidden_access"
	EventDataExport         EventType = "data_export"
)

// Event is one audit record.
type Event struct {
	Type         EventType
	SubjectType  string // "email", "ip", "user_id"
	SubjectValue string
	IP           string
	UserAgent    string
	RequestID    string
	Details      map[string]interface{}
}

// AuditLogger writes security events as structured JSON through zap,
// separately from the application log.
type AuditLogger struct {
	zapLogger *zap.Logger
}

// NewAuditLogger builds a production zap logger tagged with service and env.
func NewAuditLogger(serviceName, environment string) *AuditLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.FatalLevel))
	if err != nil {
		logger = zap.NewNop()
	}

	return NewAuditLoggerWith(logger.With(
		zap.String("service", serviceName),
		zap.String("env", environment),
		zap.String("log", "security"),
	))
}

// NewAuditLoggerWith wraps an existing zap logger.
func NewAuditLoggerWith(logger *zap.Logger) *AuditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogger{zapLogger: logger}
}

func levelFor(t EventType) zapcore.Level {
	switch t {
	case EventLoginSuccess, EventRegistered, EventPasswordChanged, EventDataExport:
		return zapcore.InfoLevel
	case EventLoginBlocked, EventUserStatusChanged:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

func (l *AuditLogger) Log(_ context.Context, event Event) {
	fields := []zap.Field{zap.String("event", string(event.Type))}
	if event.SubjectType != "" {
		fields = append(fields,
			zap.String("subject_type", event.SubjectType),
			zap.String("subject_value", maskValue(event.SubjectType, event.SubjectValue)),
		)
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	l.zapLogger.Log(levelFor(event.Type), string(event.Type), fields...)
}

func (l *AuditLogger) LoginFailed(ctx context.Context, email, ip, reason string) {
	l.Log(ctx, Event{
		Type:         EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: email,
		IP:           ip,
		Details:      map[string]interface{}{"reason": reason},
	})
}

func (l *AuditLogger) LoginSucceeded(ctx context.Context, userID, ip, provider string) {
	l.Log(ctx, Event{
		Type:         EventLoginSuccess,
		SubjectType:  "user_id",
		SubjectValue: userID,
		IP:           ip,
		Details:      map[string]interface{}{"provider": provider},
	})
}

func (l *AuditLogger) Sync() error {
	return l.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 3 || at < 0 {
		return "***"
	}
	if at <= 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue creates a short SHA256 fingerprint of a value
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func maskValue(subjectType, value string) string {
	switch subjectType {
	case "email":
		return MaskEmail(value)
	case "ip", "user_id":
		return value
	default:
		return HashValue(value)
	}
}

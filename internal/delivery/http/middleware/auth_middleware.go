package middleware

import (
	"context"
	"net/http"
	"strings"

	"applyfollow-backend/internal/delivery/http/response"
	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/auth"
	"applyfollow-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	Validate(token string) (*auth.TokenClaims, error)
}

// AuthMiddleware authenticates the request from the Authorization header
// (or the auth_token cookie) and loads the user to get a current role.
func AuthMiddleware(tokens TokenValidator, authUC domain.AuthUsecase, audit *security.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			logAccessDenied(c, audit, security.EventUnauthorizedAccess, "", "invalid_token")
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		// Role comes from the database, not the token, so a demotion or a
		// disabled account takes effect immediately.
		user, err := authUC.GetCurrentUser(c.Request.Context(), claims.Subject)
		if err != nil {
			logAccessDenied(c, audit, security.EventUnauthorizedAccess, claims.Subject, "user_not_found")
			response.Error(c, http.StatusUnauthorized, "User not found", nil)
			c.Abort()
			return
		}
		if !user.IsActive {
			logAccessDenied(c, audit, security.EventForbiddenAccess, user.ID, "account_disabled")
			response.Error(c, http.StatusForbidden, "Account is disabled", nil)
			c.Abort()
			return
		}

		role := user.Role
		if role == "" {
			role = domain.RoleUser
		}

		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUserEmail), user.Email)
		c.Set(string(domain.KeyUserRole), role)

		ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, user.ID)
		ctx = context.WithValue(ctx, domain.KeyUserEmail, user.Email)
		ctx = context.WithValue(ctx, domain.KeyUserRole, role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole rejects authenticated users whose role is not listed.
func RequireRole(audit *security.AuditLogger, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role := c.GetString(string(domain.KeyUserRole))
		if !allowed[role] {
			logAccessDenied(c, audit, security.EventForbiddenAccess, c.GetString(string(domain.KeyUserID)), "role_"+role)
			response.Error(c, http.StatusForbidden, "Access denied", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

func logAccessDenied(c *gin.Context, audit *security.AuditLogger, event security.EventType, userID, reason string) {
	if audit == nil {
		return
	}
	audit.Log(c.Request.Context(), security.Event{
		Type:         event,
		SubjectType:  "user_id",
		SubjectValue: userID,
		IP:           c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
		RequestID:    c.GetString(string(domain.KeyRequestID)),
		Details:      map[string]interface{}{"path": c.FullPath(), "reason": reason},
	})
}

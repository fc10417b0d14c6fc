package v1

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/apperror"
	"applyfollow-backend/pkg/logger"
	"applyfollow-backend/pkg/oauth"

	"github.com/gin-gonic/gin"
)

// OAuth2Providers is the part of oauth.Registry the handler needs.
type OAuth2Providers interface {
	Has(name string) bool
	AuthCodeURL(provider, state string) (string, error)
	FetchUser(ctx context.Context, provider, code string) (oauth.UserInfo, error)
}

type OAuth2Handler struct {
	authUC             domain.AuthUsecase
	providers          OAuth2Providers
	requests           *oauth.RequestCache
	authorizedRedirect []string
}

func NewOAuth2Handler(public *gin.RouterGroup, authUC domain.AuthUsecase, providers OAuth2Providers, requests *oauth.RequestCache, authorizedRedirect []string) {
	handler := &OAuth2Handler{
		authUC:             authUC,
		providers:          providers,
		requests:           requests,
		authorizedRedirect: authorizedRedirect,
	}

	oauth2 := public.Group("/oauth2")
	{
		oauth2.GET("/authorize/:provider", handler.Authorize)
		oauth2.GET("/callback/:provider", handler.Callback)
	}
}

// Authorize godoc
// @Summary      Start OAuth2 Login
// @Description  Redirect to the provider consent page. The pending request is kept for a few minutes.
// @Tags         oauth2
// @Param        provider      path   string  true   "google or github"
// @Param        redirect_uri  query  string  false  "Frontend URI to return to with ?token="
// @Success      302
// @Failure      400  {object}  response.Response
// @Router       /oauth2/authorize/{provider} [get]
func (h *OAuth2Handler) Authorize(c *gin.Context) {
	provider := strings.ToLower(c.Param("provider"))
	if !h.providers.Has(provider) {
		c.Error(apperror.BadRequest("Unsupported OAuth2 provider: " + provider))
		return
	}

	state, err := newState()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	consentURL, err := h.providers.AuthCodeURL(provider, state)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	h.requests.Save(state, oauth.AuthorizationRequest{
		Provider:    provider,
		RedirectURI: c.Query("redirect_uri"),
	})

	c.Redirect(http.StatusFound, consentURL)
}

// Callback godoc
// @Summary      OAuth2 Callback
// @Description  Exchange the code, sign the user in and redirect to the frontend with ?token=.
// @Tags         oauth2
// @Param        provider  path   string  true  "google or github"
// @Param        code      query  string  true  "Authorization code"
// @Param        state     query  string  true  "State issued by authorize"
// @Success      302
// @Failure      401  {object}  response.Response
// @Router       /oauth2/callback/{provider} [get]
func (h *OAuth2Handler) Callback(c *gin.Context) {
	provider := strings.ToLower(c.Param("provider"))

	pending, ok := h.requests.Take(c.Query("state"))
	if !ok || pending.Provider != provider {
		c.Error(apperror.Unauthorized("Authorization request not found or expired"))
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		c.Error(apperror.Unauthorized("OAuth2 login was cancelled: " + errParam))
		return
	}

	code := c.Query("code")
	if code == "" {
		c.Error(apperror.Unauthorized("Authorization code is missing"))
		return
	}

	info, err := h.providers.FetchUser(c.Request.Context(), provider, code)
	if err != nil {
		if errors.Is(err, oauth.ErrEmailNotFound) {
			c.Error(apperror.Unauthorized("Email not found from OAuth2 provider"))
			return
		}
		logger.Log.Warn("oauth2 user fetch failed", "provider", provider, "error", err)
		c.Error(apperror.New(http.StatusUnauthorized, "OAuth2 authentication failed", err))
		return
	}

	res, err := h.authUC.LoginWithOAuth2(c.Request.Context(), domain.OAuth2UserInfo{
		Provider:   info.Provider,
		ProviderID: info.ProviderID,
		Email:      info.Email,
		Name:       info.Name,
	})
	if err != nil {
		c.Error(err)
		return
	}

	target, err := withToken(h.redirectTarget(pending.RedirectURI), res.Token)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	c.Redirect(http.StatusFound, target)
}

// redirectTarget returns requested when it names an authorized URI (same
// scheme, host, port and path; the query may differ), and the first
// authorized URI otherwise.
func (h *OAuth2Handler) redirectTarget(requested string) string {
	if requested != "" {
		if req, err := url.Parse(requested); err == nil && req.User == nil {
			for _, allowed := range h.authorizedRedirect {
				a, err := url.Parse(allowed)
				if err != nil {
					continue
				}
				if strings.EqualFold(a.Scheme, req.Scheme) &&
					strings.EqualFold(a.Host, req.Host) &&
					redirectPath(a) == redirectPath(req) {
					return requested
				}
			}
		}
	}
	if len(h.authorizedRedirect) == 0 {
		return "/"
	}
	return h.authorizedRedirect[0]
}

func redirectPath(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		return "/"
	}
	return p
}

func withToken(target, token string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

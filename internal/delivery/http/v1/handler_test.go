package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"applyfollow-backend/internal/delivery/http/middleware"
	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/apperror"
	"applyfollow-backend/pkg/oauth"
	"applyfollow-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
		validation.RegisterEnum(v, "application_status", domain.ApplicationStatuses...)
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// asUser stands in for the auth middleware.
func asUser(id, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(domain.KeyUserID), id)
		c.Set(string(domain.KeyUserRole), role)
		c.Next()
	}
}

type mockApplicationUC struct {
	mock.Mock
	domain.ApplicationUsecase
}

func (m *mockApplicationUC) Create(ctx context.Context, userID string, req domain.CreateApplicationRequest) (*domain.Application, bool, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.Application), args.Bool(1), args.Error(2)
}

func (m *mockApplicationUC) Get(ctx context.Context, userID, id string) (*domain.Application, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *mockApplicationUC) Export(ctx context.Context, userID string) ([]byte, string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *mockApplicationUC) ListByUserForAdmin(ctx context.Context, userID string) ([]domain.Application, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func newApplicationEngine(uc domain.ApplicationUsecase, role string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	api := r.Group("/api", asUser("u1", role))
	NewApplicationHandler(api, uc, middleware.RequireRole(nil, domain.RoleAdmin))
	return r
}

func TestApplicationHandlerCreate(t *testing.T) {
	body := `{"companyName":"Acme","position":"Backend Engineer"}`

	t.Run("Should return 201 for a new application", func(t *testing.T) {
		uc := new(mockApplicationUC)
		uc.On("Create", mock.Anything, "u1", mock.MatchedBy(func(req domain.CreateApplicationRequest) bool {
			return req.CompanyName == "Acme" && req.Position == "Backend Engineer"
		})).Return(&domain.Application{ID: "a1", Status: domain.ApplicationStatusApplied}, true, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		newApplicationEngine(uc, domain.RoleUser).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, string(decode(t, w).Data), `"id":"a1"`)
	})

	t.Run("Should return 200 for a duplicate", func(t *testing.T) {
		uc := new(mockApplicationUC)
		uc.On("Create", mock.Anything, "u1", mock.Anything).Return(&domain.Application{ID: "a1"}, false, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		newApplicationEngine(uc, domain.RoleUser).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Application already exists", decode(t, w).Message)
	})

	t.Run("Should reject an unknown status before the usecase", func(t *testing.T) {
		uc := new(mockApplicationUC)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/applications",
			strings.NewReader(`{"companyName":"Acme","position":"Dev","status":"HIRED"}`))
		req.Header.Set("Content-Type", "application/json")
		newApplicationEngine(uc, domain.RoleUser).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, "Validation failed", env.Message)
		assert.Contains(t, string(env.Error), `"field":"status"`)
		uc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestApplicationHandlerNotOwned(t *testing.T) {
	uc := new(mockApplicationUC)
	uc.On("Get", mock.Anything, "u1", "a9").Return(nil, apperror.NotFound("Application not found"))

	w := httptest.NewRecorder()
	newApplicationEngine(uc, domain.RoleUser).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/applications/a9", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplicationHandlerExport(t *testing.T) {
	uc := new(mockApplicationUC)
	uc.On("Export", mock.Anything, "u1").Return([]byte("PK"), "applications_20240501_100000.xlsx", nil)

	w := httptest.NewRecorder()
	newApplicationEngine(uc, domain.RoleUser).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/applications/export", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "applications_20240501_100000.xlsx")
	assert.Equal(t, "PK", w.Body.String())
}

func TestApplicationHandlerAdminListing(t *testing.T) {
	t.Run("Should forbid regular users", func(t *testing.T) {
		uc := new(mockApplicationUC)
		w := httptest.NewRecorder()
		newApplicationEngine(uc, domain.RoleUser).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/applications/user/u2", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		uc.AssertNotCalled(t, "ListByUserForAdmin", mock.Anything, mock.Anything)
	})

	t.Run("Should list for admins", func(t *testing.T) {
		uc := new(mockApplicationUC)
		uc.On("ListByUserForAdmin", mock.Anything, "u2").Return([]domain.Application{{ID: "a1"}}, nil)

		w := httptest.NewRecorder()
		newApplicationEngine(uc, domain.RoleAdmin).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/applications/user/u2", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

type mockAuthUC struct {
	mock.Mock
	domain.AuthUsecase
}

func (m *mockAuthUC) LoginWithOAuth2(ctx context.Context, info domain.OAuth2UserInfo) (*domain.AuthResponse, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResponse), args.Error(1)
}

type fakeProviders struct {
	info oauth.UserInfo
	err  error
}

func (f *fakeProviders) Has(name string) bool { return name == oauth.ProviderGoogle }

func (f *fakeProviders) AuthCodeURL(provider, state string) (string, error) {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state), nil
}

func (f *fakeProviders) FetchUser(_ context.Context, provider, code string) (oauth.UserInfo, error) {
	return f.info, f.err
}

func newOAuth2Engine(uc domain.AuthUsecase, providers OAuth2Providers, cache *oauth.RequestCache) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	NewOAuth2Handler(r.Group("/api"), uc, providers, cache, []string{"http://localhost:3000/oauth2/redirect"})
	return r
}

func TestOAuth2Flow(t *testing.T) {
	t.Run("Should reject unknown providers", func(t *testing.T) {
		cache := oauth.NewRequestCache(5 * time.Minute)
		w := httptest.NewRecorder()
		newOAuth2Engine(new(mockAuthUC), &fakeProviders{}, cache).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/oauth2/authorize/facebook", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, cache.Len())
	})

	t.Run("Should reject a callback with an unknown state", func(t *testing.T) {
		w := httptest.NewRecorder()
		newOAuth2Engine(new(mockAuthUC), &fakeProviders{}, oauth.NewRequestCache(5*time.Minute)).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/oauth2/callback/google?code=c&state=nope", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should sign in and redirect with the token", func(t *testing.T) {
		cache := oauth.NewRequestCache(5 * time.Minute)
		uc := new(mockAuthUC)
		providers := &fakeProviders{info: oauth.UserInfo{Provider: "google", ProviderID: "g-1", Email: "jane@example.com", Name: "Jane"}}
		uc.On("LoginWithOAuth2", mock.Anything, domain.OAuth2UserInfo{
			Provider: "google", ProviderID: "g-1", Email: "jane@example.com", Name: "Jane",
		}).Return(&domain.AuthResponse{Token: "jwt-token"}, nil)
		engine := newOAuth2Engine(uc, providers, cache)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/api/oauth2/authorize/google?redirect_uri="+url.QueryEscape("http://localhost:3000/oauth2/redirect"), nil))
		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, 1, cache.Len())

		consent, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		state := consent.Query().Get("state")
		require.NotEmpty(t, state)

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/api/oauth2/callback/google?code=abc&state="+url.QueryEscape(state), nil))

		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "http://localhost:3000/oauth2/redirect?token=jwt-token", w.Header().Get("Location"))
		assert.Zero(t, cache.Len())

		// A state is single use.
		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/api/oauth2/callback/google?code=abc&state="+url.QueryEscape(state), nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should surface a provider conflict as 401", func(t *testing.T) {
		cache := oauth.NewRequestCache(5 * time.Minute)
		cache.Save("s1", oauth.AuthorizationRequest{Provider: "google"})
		uc := new(mockAuthUC)
		uc.On("LoginWithOAuth2", mock.Anything, mock.Anything).
			Return(nil, apperror.Unauthorized("Looks like you're signed up with GitHub account. Please use your GitHub account to login."))

		w := httptest.NewRecorder()
		newOAuth2Engine(uc, &fakeProviders{info: oauth.UserInfo{Provider: "google", Email: "a@b.c"}}, cache).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/oauth2/callback/google?code=abc&state=s1", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, decode(t, w).Message, "GitHub account")
	})
}

func TestRedirectTarget(t *testing.T) {
	h := &OAuth2Handler{authorizedRedirect: []string{"http://localhost:3000/oauth2/redirect", "https://app.example.com/cb"}}

	t.Run("Should accept an authorized URI with its own query", func(t *testing.T) {
		assert.Equal(t, "https://app.example.com/cb", h.redirectTarget("https://app.example.com/cb"))
		assert.Equal(t, "https://APP.example.com/cb?from=login", h.redirectTarget("https://APP.example.com/cb?from=login"))
	})

	t.Run("Should fall back when the path differs", func(t *testing.T) {
		assert.Equal(t, "http://localhost:3000/oauth2/redirect", h.redirectTarget("https://app.example.com/other"))
		assert.Equal(t, "http://localhost:3000/oauth2/redirect", h.redirectTarget("https://app.example.com/cb/../admin"))
		assert.Equal(t, "http://localhost:3000/oauth2/redirect", h.redirectTarget("http://localhost:3000/"))
	})

	t.Run("Should fall back for foreign hosts and credentials", func(t *testing.T) {
		assert.Equal(t, "http://localhost:3000/oauth2/redirect", h.redirectTarget("https://evil.example/cb"))
		assert.Equal(t, "http://localhost:3000/oauth2/redirect", h.redirectTarget("http://localhost:3001/oauth2/redirect"))
		assert.Equal(t, "http://localhost:3000/oauth2/redirect", h.redirectTarget("https://user@app.example.com/cb"))
		assert.Equal(t, "http://localhost:3000/oauth2/redirect", h.redirectTarget(""))
	})

	t.Run("Should use the root when nothing is authorized", func(t *testing.T) {
		assert.Equal(t, "/", (&OAuth2Handler{}).redirectTarget("https://app.example.com/cb"))
	})

	target, err := withToken("http://localhost:3000/cb?x=1", "t")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/cb?token=t&x=1", target)
}

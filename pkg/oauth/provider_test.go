package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestParseUserInfo(t *testing.T) {
	t.Run("google style sub", func(t *testing.T) {
		info, err := ParseUserInfo("google", map[string]interface{}{
			"sub": "1234", "email": "Ann@Example.com", "name": "Ann Lee",
		})
		require.NoError(t, err)
		assert.Equal(t, UserInfo{Provider: "google", ProviderID: "1234", Email: "ann@example.com", Name: "Ann Lee"}, info)
	})

	t.Run("numeric github id and login fallback", func(t *testing.T) {
		info, err := ParseUserInfo("github", map[string]interface{}{
			"id": float64(987654), "email": "dev@example.com", "login": "octo",
		})
		require.NoError(t, err)
		assert.Equal(t, "987654", info.ProviderID)
		assert.Equal(t, "octo", info.Name)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := ParseUserInfo("google", map[string]interface{}{"sub": "1"})
		assert.ErrorIs(t, err, ErrEmailNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := ParseUserInfo("google", map[string]interface{}{"email": "a@b.c"})
		assert.ErrorIs(t, err, ErrIDNotFound)
	})
}

func TestRegistryAuthCodeURL(t *testing.T) {
	r := NewRegistry(NewGoogleProvider("client", "secret", "http://api/callback/google"))

	raw, err := r.AuthCodeURL("google", "state-1")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "state-1", u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))

	_, err = r.AuthCodeURL("gitlab", "s")
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Equal(t, []string{"google"}, r.Names())
}

func TestRegistryFetchUserFallsBackToEmailsEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": 42, "login": "octo", "email": nil})
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]githubEmail{
			{Email: "old@example.com", Verified: true},
			{Email: "main@example.com", Primary: true, Verified: true},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := &Provider{
		Name: ProviderGitHub,
		Config: &oauth2.Config{
			ClientID:     "id",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		},
		UserInfoURL: srv.URL + "/user",
		EmailsURL:   srv.URL + "/user/emails",
	}

	info, err := NewRegistry(p).FetchUser(context.Background(), ProviderGitHub, "code")
	require.NoError(t, err)
	assert.Equal(t, "42", info.ProviderID)
	assert.Equal(t, "main@example.com", info.Email)
	assert.Equal(t, "octo", info.Name)
}

package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

var (
	ErrUnknownProvider = errors.New("oauth2 provider is not configured")
	ErrEmailNotFound   = errors.New("email not found from OAuth2 provider")
	ErrIDNotFound      = errors.New("user id not found from OAuth2 provider")
)

// UserInfo is the normalised profile extracted from a provider response.
type UserInfo struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
}

// Provider wraps an oauth2.Config with the endpoints that describe the user.
type Provider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
	// EmailsURL is consulted when the profile has no public email (GitHub).
	EmailsURL string
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		Name: ProviderGoogle,
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		UserInfoURL: "https://www.googleapis.com/oauth2/v3/userinfo",
	}
}

func NewGitHubProvider(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		Name: ProviderGitHub,
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		UserInfoURL: "https://api.github.com/user",
		EmailsURL:   "https://api.github.com/user/emails",
	}
}

// Registry holds the configured providers by name.
type Registry struct {
	providers map[string]*Provider
}

func NewRegistry(providers ...*Provider) *Registry {
	r := &Registry{providers: make(map[string]*Provider)}
	for _, p := range providers {
		if p != nil {
			r.providers[p.Name] = p
		}
	}
	return r
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Has(name string) bool {
	_, ok := r.providers[name]
	return ok
}

func (r *Registry) AuthCodeURL(provider, state string) (string, error) {
	p, ok := r.providers[provider]
	if !ok {
		return "", ErrUnknownProvider
	}
	return p.Config.AuthCodeURL(state), nil
}

// FetchUser exchanges the authorization code and loads the user's profile.
func (r *Registry) FetchUser(ctx context.Context, provider, code string) (UserInfo, error) {
	p, ok := r.providers[provider]
	if !ok {
		return UserInfo{}, ErrUnknownProvider
	}

	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return UserInfo{}, fmt.Errorf("exchange code: %w", err)
	}
	client := p.Config.Client(ctx, token)

	var attrs map[string]interface{}
	if err := getJSON(ctx, client, p.UserInfoURL, &attrs); err != nil {
		return UserInfo{}, fmt.Errorf("fetch user info: %w", err)
	}

	if p.EmailsURL != "" && stringAttr(attrs, "email") == "" {
		if email, err := primaryEmail(ctx, client, p.EmailsURL); err == nil && email != "" {
			attrs["email"] = email
		}
	}

	return ParseUserInfo(p.Name, attrs)
}

// ParseUserInfo extracts the social id (from "id" or "sub"), email and
// display name from a provider attribute map.
func ParseUserInfo(provider string, attrs map[string]interface{}) (UserInfo, error) {
	id := stringAttr(attrs, "id")
	if id == "" {
		id = stringAttr(attrs, "sub")
	}
	if id == "" {
		return UserInfo{}, ErrIDNotFound
	}

	email := strings.TrimSpace(stringAttr(attrs, "email"))
	if email == "" {
		return UserInfo{}, ErrEmailNotFound
	}

	name := stringAttr(attrs, "name")
	if name == "" {
		name = stringAttr(attrs, "login")
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	return UserInfo{
		Provider:   provider,
		ProviderID: id,
		Email:      strings.ToLower(email),
		Name:       name,
	}, nil
}

// stringAttr reads a string attribute. GitHub returns numeric ids, which
// JSON decodes as float64.
func stringAttr(attrs map[string]interface{}, key string) string {
	switch v := attrs[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func primaryEmail(ctx context.Context, client *http.Client, url string) (string, error) {
	var emails []githubEmail
	if err := getJSON(ctx, client, url, &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	return "", nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

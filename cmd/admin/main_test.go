package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	domain.UserRepository
	byEmail  map[string]*domain.User
	password map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*domain.User{}, password: map[string]string{}}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) Update(_ context.Context, u *domain.User) error {
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	m.password[id] = hash
	return nil
}

func TestHashPasswordCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"hash-password", "s3cret!"})

	require.NoError(t, cmd.Execute())
	assert.True(t, auth.CheckPasswordHash("s3cret!", strings.TrimSpace(out.String())))
}

func TestCreateAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create a new admin", func(t *testing.T) {
		users := newMemUsers()
		var out bytes.Buffer

		require.NoError(t, createAdmin(ctx, &out, users, " Root@Example.com ", "Root", "password"))

		u := users.byEmail["root@example.com"]
		require.NotNil(t, u)
		assert.Equal(t, domain.RoleAdmin, u.Role)
		assert.Equal(t, domain.ProviderLocal, u.Provider)
		assert.True(t, u.IsActive)
		assert.True(t, auth.CheckPasswordHash("password", u.PasswordHash))
		assert.Contains(t, out.String(), "created admin root@example.com")
	})

	t.Run("Should promote an existing user", func(t *testing.T) {
		users := newMemUsers()
		users.byEmail["jane@example.com"] = &domain.User{ID: "u1", Email: "jane@example.com", Role: domain.RoleUser}
		var out bytes.Buffer

		require.NoError(t, createAdmin(ctx, &out, users, "jane@example.com", "Jane", "newpass"))

		assert.Equal(t, domain.RoleAdmin, users.byEmail["jane@example.com"].Role)
		assert.True(t, auth.CheckPasswordHash("newpass", users.password["u1"]))
		assert.Contains(t, out.String(), "promoted")
	})
}

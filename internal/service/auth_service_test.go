package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabdrill/internal/repository"
	"vocabdrill/internal/security"
)

func newTestAuthService(t *testing.T) *AuthService {
	db := newTestDB(t)
	return NewAuthService(repository.NewUserRepository(db), security.NewTokenIssuer("test-secret", time.Hour), nil)
}

func TestAuthServiceAddAdmin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	has, err := svc.HasAdmins()
	require.NoError(t, err)
	assert.False(t, has)

	user, err := svc.AddAdmin(ctx, " Admin@Example.com ", "password123", "Admin")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.True(t, user.IsAdmin)

	_, err = svc.AddAdmin(ctx, "admin@example.com", "password123", "Admin")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.AddAdmin(ctx, "other@example.com", "short", "Other")
	assert.Error(t, err)

	has, err = svc.HasAdmins()
	require.NoError(t, err)
	assert.True(t, has)
}

func TestAuthServiceLogin(t *testing.T) {
	svc := newTestAuthService(t)
	_, err := svc.AddAdmin(context.Background(), "admin@example.com", "password123", "Admin")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "wrong password", email: "admin@example.com", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "ghost@example.com", password: "password123", wantErr: ErrInvalidCredentials},
		{name: "case insensitive email", email: "ADMIN@example.com", password: "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, user, err := svc.Login(tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, token.Token)
			assert.False(t, token.IsExpired())

			authed, err := svc.Authenticate(token.Token)
			require.NoError(t, err)
			assert.Equal(t, user.ID, authed.ID)
		})
	}

	_, err = svc.Authenticate("not-a-token")
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc := newTestAuthService(t)
	user, err := svc.AddAdmin(context.Background(), "admin@example.com", "password123", "Admin")
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(user.ID, "new-password-1"))
	_, _, err = svc.Login("admin@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login("admin@example.com", "new-password-1")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(999, "new-password-1"), ErrUserNotFound)
}

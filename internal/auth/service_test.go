package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-hq/meridian/internal/shared"
)

type fakeRepo struct {
	users map[string]*User
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) IsActive(_ context.Context, userID int64) (bool, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return u.IsActive, nil
		}
	}
	return false, shared.ErrNotFound
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1234"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &fakeRepo{users: map[string]*User{
		"ana@x.com": {ID: 1, Email: "ana@x.com", PasswordHash: string(hash), Role: RoleWorker, IsActive: true},
		"off@x.com": {ID: 2, Email: "off@x.com", PasswordHash: string(hash), Role: RoleWorker, IsActive: false},
	}}
	return NewService(repo), repo
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Authenticate(context.Background(), "ana@x.com", "secret1234")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
	require.Equal(t, RoleWorker, user.Role)
}

func TestAuthenticateRejections(t *testing.T) {
	svc, _ := newTestService(t)

	// Wrong password, unknown account and disabled account all collapse to
	// the same error so callers cannot probe which emails exist.
	cases := []struct{ email, password string }{
		{"ana@x.com", "wrong"},
		{"nobody@x.com", "secret1234"},
		{"off@x.com", "secret1234"},
	}
	for _, tc := range cases {
		_, err := svc.Authenticate(context.Background(), tc.email, tc.password)
		require.ErrorIs(t, err, shared.ErrInvalidCredentials, "%s must be rejected", tc.email)
	}
}

func TestCheckActive(t *testing.T) {
	svc, repo := newTestService(t)

	require.NoError(t, svc.CheckActive(context.Background(), 1))
	require.ErrorIs(t, svc.CheckActive(context.Background(), 2), shared.ErrAccountDisabled)

	repo.users["ana@x.com"].IsActive = false
	require.ErrorIs(t, svc.CheckActive(context.Background(), 1), shared.ErrAccountDisabled)
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"forest/internal/core"
	"forest/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthService, *storage.SQLiteRepository) {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return NewAuthService(repo, time.Hour, newTestLogger()), repo
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "carol", "Carol@Example.com", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", user.Email, "email is normalized to lowercase")

	logged, token, err := svc.Login(ctx, "carol@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Len(t, token, 64)

	resolved, err := svc.ResolveSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, user.Email, resolved.Email)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.ResolveSession(ctx, token)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "dave@example.com", "s3cretpass")
	assert.True(t, errors.Is(err, core.ErrValidation))

	_, err = svc.Register(ctx, "dave", "not-an-email", "s3cretpass")
	assert.True(t, errors.Is(err, core.ErrValidation))

	_, err = svc.Register(ctx, "dave", "dave@example.com", "short")
	assert.True(t, errors.Is(err, core.ErrValidation))

	_, err = svc.Register(ctx, "dave", "dave@example.com", "s3cretpass")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "dave", "dave@example.com", "s3cretpass")
	assert.True(t, errors.Is(err, core.ErrConflict))
}

func TestAuthService_LoginDoesNotRevealAccounts(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol", "carol@example.com", "s3cretpass")
	require.NoError(t, err)

	_, _, errMissing := svc.Login(ctx, "nobody@example.com", "whatever")
	_, _, errWrongPw := svc.Login(ctx, "carol@example.com", "wrongpass")

	assert.True(t, errors.Is(errMissing, core.ErrValidation))
	assert.True(t, errors.Is(errWrongPw, core.ErrValidation))
	assert.Equal(t, errMissing.Error(), errWrongPw.Error())
}

func TestAuthService_ExpiredSessionRejected(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	svc := NewAuthService(repo, time.Hour, newTestLogger())
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "eve", "eve@example.com", "hash")
	require.NoError(t, err)

	require.NoError(t, repo.CreateSession(ctx, "stale-token", user.ID, time.Now().Add(-time.Minute)))

	_, err = svc.ResolveSession(ctx, "stale-token")
	assert.True(t, errors.Is(err, core.ErrNotFound))

	require.NoError(t, svc.PruneSessions(ctx))
}

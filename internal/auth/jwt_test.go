package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcore/identity/internal/common"
	"github.com/shopcore/identity/internal/config"
)

func newTestService(accessTTL, refreshTTL time.Duration) *Service {
	return NewService(&config.Config{
		SecretKey:       "test-secret",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
	})
}

func TestIssueAndVerifyAccess_Roundtrip(t *testing.T) {
	svc := newTestService(time.Hour, 2*time.Hour)

	token, err := svc.IssueAccess("acc-1", "seller", map[string]any{"surface": "web"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID())
	assert.Equal(t, "seller", claims.Role)
}

func TestVerifyAccess_Expired(t *testing.T) {
	svc := newTestService(-time.Minute, time.Hour)

	token, err := svc.IssueAccess("acc-1", "user", nil)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(token)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestVerifyAccess_RejectsRefreshToken(t *testing.T) {
	svc := newTestService(time.Hour, time.Hour)

	refresh, err := svc.IssueRefresh("acc-1")
	require.NoError(t, err)

	_, err = svc.VerifyAccess(refresh)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestVerifyRefresh_RejectsAccessToken(t *testing.T) {
	svc := newTestService(time.Hour, time.Hour)

	access, err := svc.IssueAccess("acc-1", "user", nil)
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(access)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := newTestService(time.Hour, time.Hour)
	verifier := NewService(&config.Config{
		SecretKey:       "other-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: time.Hour,
	})

	token, err := issuer.IssueAccess("acc-1", "user", nil)
	require.NoError(t, err)

	_, err = verifier.VerifyAccess(token)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestVerify_Garbage(t *testing.T) {
	svc := newTestService(time.Hour, time.Hour)

	_, err := svc.VerifyAccess("not.a.token")
	assert.True(t, errors.Is(err, common.ErrInvalidToken))

	_, err = svc.VerifyRefresh("")
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestIssueAccess_ExtraClaimsCannotOverrideReserved(t *testing.T) {
	svc := newTestService(time.Hour, time.Hour)

	token, err := svc.IssueAccess("acc-1", "user", map[string]any{
		"sub":  "someone-else",
		"role": "admin",
	})
	require.NoError(t, err)

	claims, err := svc.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID())
	assert.Equal(t, "user", claims.Role)
}

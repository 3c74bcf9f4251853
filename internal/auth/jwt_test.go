package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(
		[]byte("test-access-secret"),
		[]byte("test-refresh-secret"),
		15*time.Minute,
		7*24*time.Hour,
	)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_EmptySecrets(t *testing.T) {
	_, err := NewJWTService(nil, []byte("refresh"), time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewJWTService([]byte("access"), nil, time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	token, err := svc.CreateAccessToken(userID, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_RefreshTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	token, err := svc.CreateRefreshToken(userID, "alice@example.com")
	require.NoError(t, err)

	claims, err := svc.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_TokensAreUnique(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	// Same user, same instant: the jti claim must still make every token
	// distinct, or rotation would re-issue the string it just revoked.
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		access, err := svc.CreateAccessToken(userID, "alice@example.com")
		require.NoError(t, err)
		refresh, err := svc.CreateRefreshToken(userID, "alice@example.com")
		require.NoError(t, err)

		assert.False(t, seen[access], "duplicate access token issued")
		assert.False(t, seen[refresh], "duplicate refresh token issued")
		seen[access] = true
		seen[refresh] = true
	}
}

func TestJWTService_TokenKindsAreNotInterchangeable(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	accessToken, err := svc.CreateAccessToken(userID, "alice@example.com")
	require.NoError(t, err)
	refreshToken, err := svc.CreateRefreshToken(userID, "alice@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyRefreshToken(accessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyAccessToken(refreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc, err := NewJWTService(
		[]byte("test-access-secret"),
		[]byte("test-refresh-secret"),
		-time.Minute,
		-time.Minute,
	)
	require.NoError(t, err)

	token, err := svc.CreateAccessToken(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_TamperedToken(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.CreateAccessToken(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = svc.VerifyAccessToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := newTestJWTService(t)
	other, err := NewJWTService(
		[]byte("different-access-secret"),
		[]byte("different-refresh-secret"),
		15*time.Minute,
		7*24*time.Hour,
	)
	require.NoError(t, err)

	token, err := svc.CreateAccessToken(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_GarbageInput(t *testing.T) {
	svc := newTestJWTService(t)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.VerifyAccessToken(input)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
	}
}

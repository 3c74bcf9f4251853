package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/im-rizwan/track-your-life/internal/user"
)

func newProtectedHandler(t *testing.T, f *serviceFixture) (http.Handler, *user.User) {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authed, ok := GetUserFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User-Email", authed.Email)
		w.WriteHeader(http.StatusOK)
	})

	mw := NewMiddleware(f.service, f.codec)
	resp := f.register(t, "alice@example.com", "Sup3rSecret")
	return mw.RequireAuth(next), resp.User
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	f := newServiceFixture(t)
	handler, authed := newProtectedHandler(t, f)

	token, err := f.codec.CreateAccessToken(authed.ID, authed.Email)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, authed.Email, rec.Header().Get("X-User-Email"))
}

func TestRequireAuth_CookieFallback(t *testing.T) {
	f := newServiceFixture(t)
	handler, authed := newProtectedHandler(t, f)

	token, err := f.codec.CreateAccessToken(authed.ID, authed.Email)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_Rejections(t *testing.T) {
	f := newServiceFixture(t)
	handler, authed := newProtectedHandler(t, f)

	validToken, err := f.codec.CreateAccessToken(authed.ID, authed.Email)
	require.NoError(t, err)

	// refresh tokens must not pass as access tokens
	refreshToken, err := f.codec.CreateRefreshToken(authed.ID, authed.Email)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"no credentials", ""},
		{"malformed header", "Bearer"},
		{"wrong scheme", "Basic " + validToken},
		{"garbage token", "Bearer garbage"},
		{"refresh token", "Bearer " + refreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireAuth_DeactivatedUser(t *testing.T) {
	f := newServiceFixture(t)
	handler, authed := newProtectedHandler(t, f)

	token, err := f.codec.CreateAccessToken(authed.ID, authed.Email)
	require.NoError(t, err)

	f.users.users[authed.ID].IsActive = false

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	f := newServiceFixture(t)
	handler, authed := newProtectedHandler(t, f)

	token, err := f.codec.CreateAccessToken(authed.ID, authed.Email)
	require.NoError(t, err)

	delete(f.users.users, authed.ID)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

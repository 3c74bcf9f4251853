package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/im-rizwan/track-your-life/internal/httputil"
	"github.com/im-rizwan/track-your-life/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	// UserContextKey holds the authenticated *user.User
	UserContextKey ContextKey = "user"
)

// Middleware handles authentication for protected routes
type Middleware struct {
	service *Service
	codec   TokenService
}

func NewMiddleware(service *Service, codec TokenService) *Middleware {
	return &Middleware{service: service, codec: codec}
}

// RequireAuth validates the access token and resolves the user behind it.
// A token whose user has been deleted or deactivated does not authenticate,
// even while the token itself is still unexpired.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string

		// Priority 1: Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			} else {
				httputil.RespondError(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
				return
			}
		}

		// Priority 2: Cookie (fallback)
		if token == "" {
			cookieToken, err := GetAccessTokenFromCookie(r)
			if err != nil {
				httputil.RespondError(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
				return
			}
			token = cookieToken
		}

		claims, err := m.codec.VerifyAccessToken(token)
		if err != nil {
			httputil.RespondError(w, "invalid or expired token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			httputil.RespondError(w, "invalid or expired token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		authedUser, err := m.service.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				httputil.RespondError(w, "invalid or expired token", httputil.CodeInvalidToken, http.StatusUnauthorized)
				return
			}
			httputil.RespondError(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}
		if !authedUser.IsActive {
			httputil.RespondError(w, "invalid or expired token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, authedUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext extracts the authenticated user from the request context
func GetUserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*user.User)
	return u, ok
}

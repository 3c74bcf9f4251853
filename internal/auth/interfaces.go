package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/im-rizwan/track-your-life/internal/user"
)

// TokenService signs and verifies access and refresh tokens with
// independent secrets and lifetimes.
type TokenService interface {
	CreateAccessToken(userID uuid.UUID, email string) (string, error)
	CreateRefreshToken(userID uuid.UUID, email string) (string, error)
	VerifyAccessToken(tokenStr string) (*TokenClaims, error)
	VerifyRefreshToken(tokenStr string) (*TokenClaims, error)
}

// UserStore is the slice of user persistence the auth service needs.
type UserStore interface {
	Create(ctx context.Context, params user.CreateParams) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

// RefreshTokenRepository defines the interface for refresh token storage.
// Only the auth service creates or deletes rows through it.
type RefreshTokenRepository interface {
	Store(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	Find(ctx context.Context, token string) (*RefreshToken, error)
	// Delete reports whether a row was actually removed. Two racing deletes
	// of the same token see exactly one true.
	Delete(ctx context.Context, token string) (bool, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

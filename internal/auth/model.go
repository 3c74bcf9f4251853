package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/im-rizwan/track-your-life/internal/user"
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// RefreshToken is a stored refresh token row together with its owning user.
type RefreshToken struct {
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
	User      *user.User
}

// Tokens is an access/refresh token pair.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned from register and login.
type AuthResponse struct {
	User   *user.User `json:"user"`
	Tokens Tokens     `json:"tokens"`
}

// hashToken returns the SHA-256 hex of a token string. Only the hash is
// persisted, so a database leak does not expose usable refresh tokens.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

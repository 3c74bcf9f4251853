package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for every token verification failure: bad
// signature, malformed structure, wrong signing method or expired claims.
// Callers cannot tell which check failed.
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims are the claims carried by both token kinds.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 tokens. Access and refresh tokens use
// independent secrets and lifetimes, so neither kind verifies as the other.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewJWTService(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) (*JWTService, error) {
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		return nil, fmt.Errorf("signing secrets must not be empty")
	}
	return &JWTService{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// CreateAccessToken issues a short-lived access token.
func (s *JWTService) CreateAccessToken(userID uuid.UUID, email string) (string, error) {
	return s.create(userID, email, s.accessSecret, s.accessTTL)
}

// CreateRefreshToken issues a long-lived refresh token.
func (s *JWTService) CreateRefreshToken(userID uuid.UUID, email string) (string, error) {
	return s.create(userID, email, s.refreshSecret, s.refreshTTL)
}

// VerifyAccessToken validates an access token and returns its claims.
func (s *JWTService) VerifyAccessToken(tokenStr string) (*TokenClaims, error) {
	return s.verify(tokenStr, s.accessSecret)
}

// VerifyRefreshToken validates a refresh token and returns its claims.
func (s *JWTService) VerifyRefreshToken(tokenStr string) (*TokenClaims, error) {
	return s.verify(tokenStr, s.refreshSecret)
}

func (s *JWTService) create(userID uuid.UUID, email string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID: userID.String(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti claim makes every token unique: timestamps alone have
			// second granularity, and two identical refresh tokens would
			// collide in the store and defeat rotation.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) verify(tokenStr string, secret []byte) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

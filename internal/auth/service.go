package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/im-rizwan/track-your-life/internal/logging"
	"github.com/im-rizwan/track-your-life/internal/user"
)

// Service owns the token lifecycle: it decides when refresh token rows are
// created and deleted, and nothing else mutates them.
type Service struct {
	users  UserStore
	tokens RefreshTokenRepository
	codec  TokenService
	hasher *PasswordHasher
	logger *logging.Logger
}

func NewService(
	users UserStore,
	tokens RefreshTokenRepository,
	codec TokenService,
	hasher *PasswordHasher,
	logger *logging.Logger,
) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		codec:  codec,
		hasher: hasher,
		logger: logger,
	}
}

// RegisterInput carries the registration fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// Register creates a new account and signs it in.
// Returns user.ErrDuplicateEmail when the normalized email is taken.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := user.NormalizeEmail(input.Email)
	if err := user.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := user.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, user.CreateParams{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, newUser.ID, newUser.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: newUser, Tokens: tokens}, nil
}

// Login authenticates a user and issues a fresh token pair. A new refresh
// token row is created per login, so concurrent sessions are independent.
// Unknown email, wrong password and deactivated account all return the same
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	existing, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !existing.IsActive {
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, existing.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.TouchLastLogin(ctx, existing.ID); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	tokens, err := s.issueTokens(ctx, existing.ID, existing.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: existing, Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a new pair. Rotation is mandatory:
// the old row is deleted before the new pair is issued, so every refresh
// token is single-use. Any failure is reported as ErrInvalidRefreshToken
// without revealing which check rejected the token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := s.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	stored, err := s.tokens.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			// Never issued, already rotated, or logged out.
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if time.Now().After(stored.ExpiresAt) {
		// Lazy expiry: drop the stale row on the way out.
		if _, err := s.tokens.Delete(ctx, refreshToken); err != nil {
			s.logger.Warn("failed to delete expired refresh token", "error", err.Error())
		}
		return nil, ErrInvalidRefreshToken
	}

	if stored.User == nil || !stored.User.IsActive {
		return nil, ErrInvalidRefreshToken
	}

	// Rotate. The delete is atomic on the token primary key: of two
	// concurrent refreshes with the same token, exactly one observes the
	// row and proceeds.
	deleted, err := s.tokens.Delete(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to delete refresh token: %w", err)
	}
	if !deleted {
		return nil, ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	tokens, err := s.issueTokens(ctx, userID, claims.Email)
	if err != nil {
		return nil, err
	}

	return &tokens, nil
}

// Logout invalidates a refresh token. Deleting a token that is already gone
// is not an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// LogoutAll invalidates every refresh token of a user. Outstanding access
// tokens stay valid until their own short expiry.
func (s *Service) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.tokens.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user refresh tokens: %w", err)
	}
	return nil
}

// GetUserByID returns the user or user.ErrNotFound. The auth middleware
// treats not-found as unauthenticated.
func (s *Service) GetUserByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, userID)
}

// issueTokens creates an access/refresh pair and persists the refresh row.
// The row's expires_at is read back from the refresh token's own signed exp
// claim, so the store and the token cannot disagree.
func (s *Service) issueTokens(ctx context.Context, userID uuid.UUID, email string) (Tokens, error) {
	accessToken, err := s.codec.CreateAccessToken(userID, email)
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := s.codec.CreateRefreshToken(userID, email)
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	claims, err := s.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to verify issued refresh token: %w", err)
	}

	if err := s.tokens.Store(ctx, userID, refreshToken, claims.ExpiresAt.Time); err != nil {
		return Tokens{}, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/im-rizwan/track-your-life/internal/database"
	"github.com/im-rizwan/track-your-life/internal/user"
)

// Repository handles refresh token persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Store inserts a refresh token row keyed by the token's hash.
func (r *Repository) Store(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	dbToken := &database.RefreshToken{
		TokenHash: hashToken(token),
		UserID:    userID,
		ExpiresAt: expiresAt,
	}

	_, err := r.db.NewInsert().
		Model(dbToken).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

// Find retrieves a refresh token row by the literal token string, with the
// owning user join-loaded.
func (r *Repository) Find(ctx context.Context, token string) (*RefreshToken, error) {
	dbToken := new(database.RefreshToken)
	err := r.db.NewSelect().
		Model(dbToken).
		Relation("User").
		Where("token_hash = ?", hashToken(token)).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return mapDBRefreshTokenToModel(dbToken), nil
}

// Delete removes a refresh token row and reports whether one existed.
// The single-row delete on the primary key is atomic, so concurrent deletes
// of the same token see exactly one true result.
func (r *Repository) Delete(ctx context.Context, token string) (bool, error) {
	result, err := r.db.NewDelete().
		Model((*database.RefreshToken)(nil)).
		Where("token_hash = ?", hashToken(token)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete refresh token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// DeleteAllForUser removes every refresh token belonging to a user.
func (r *Repository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*database.RefreshToken)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user refresh tokens: %w", err)
	}

	return nil
}

// DeleteExpired removes rows whose expiry has passed. Run periodically.
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.NewDelete().
		Model((*database.RefreshToken)(nil)).
		Where("expires_at < NOW()").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rowsAffected, nil
}

// mapDBRefreshTokenToModel converts database model to domain model
func mapDBRefreshTokenToModel(dbt *database.RefreshToken) *RefreshToken {
	rt := &RefreshToken{
		TokenHash: dbt.TokenHash,
		UserID:    dbt.UserID,
		ExpiresAt: dbt.ExpiresAt,
		CreatedAt: dbt.CreatedAt,
	}
	if dbt.User != nil {
		rt.User = &user.User{
			ID:           dbt.User.ID,
			Email:        dbt.User.Email,
			PasswordHash: dbt.User.PasswordHash,
			FirstName:    dbt.User.FirstName,
			LastName:     dbt.User.LastName,
			IsActive:     dbt.User.IsActive,
			LastLoginAt:  dbt.User.LastLoginAt,
			CreatedAt:    dbt.User.CreatedAt,
			UpdatedAt:    dbt.User.UpdatedAt,
		}
	}
	return rt
}

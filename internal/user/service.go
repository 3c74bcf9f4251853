package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Store defines the persistence operations the service depends on.
type Store interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PasswordHasher hashes plaintext passwords for storage.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Service handles user management business logic
type Service struct {
	store  Store
	hasher PasswordHasher
}

func NewService(store Store, hasher PasswordHasher) *Service {
	return &Service{store: store, hasher: hasher}
}

// CreateUserInput carries the fields for an administrative user creation.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// UpdateUserInput carries the mutable fields; nil means unchanged.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// CreateUser creates a user with a hashed password.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	email := NormalizeEmail(input.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.store.Create(ctx, CreateParams{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    trimmed(input.FirstName),
		LastName:     trimmed(input.LastName),
	})
	if err != nil {
		return nil, err
	}

	return newUser, nil
}

// GetUserByID returns a user or ErrNotFound.
func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.store.GetByID(ctx, id)
}

// GetUserByEmail returns a user by normalized email or ErrNotFound.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.store.GetByEmail(ctx, NormalizeEmail(email))
}

// ListUsers returns a page of users, newest first.
func (s *Service) ListUsers(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset := (page - 1) * limit

	users, err := s.store.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit

	return &Page{
		Users:      users,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// UpdateUser applies the given changes, checking email uniqueness when the
// email is changing.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*User, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	params := UpdateParams{
		FirstName: trimmed(input.FirstName),
		LastName:  trimmed(input.LastName),
	}

	if input.Email != nil {
		email := NormalizeEmail(*input.Email)
		if err := ValidateEmail(email); err != nil {
			return nil, err
		}
		if email != existing.Email {
			if _, err := s.store.GetByEmail(ctx, email); err == nil {
				return nil, ErrDuplicateEmail
			} else if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			params.Email = &email
		}
	}

	return s.store.Update(ctx, id, params)
}

// DeleteUser removes a user or returns ErrNotFound.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

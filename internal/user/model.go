package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never expose password hash in JSON
	FirstName    *string    `json:"firstName,omitempty"`
	LastName     *string    `json:"lastName,omitempty"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// CreateParams carries the fields needed to insert a user.
type CreateParams struct {
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
}

// UpdateParams carries the mutable user fields; nil means unchanged.
type UpdateParams struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// Page is a paginated list of users.
type Page struct {
	Users      []User `json:"users"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
}

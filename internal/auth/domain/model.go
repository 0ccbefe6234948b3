package domain

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// User is the account mirror row kept in Postgres. Firebase owns the
// identity; this record exists so profile data survives independently
// of the real-time store.
type User struct {
	FirebaseUID string     `json:"firebase_uid" db:"firebase_uid"`
	Email       string     `json:"email" db:"email"`
	DisplayName *string    `json:"display_name,omitempty" db:"display_name"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// CreateUserRequest represents data needed to sync a Firebase user
type CreateUserRequest struct {
	FirebaseUID string
	Email       string
	DisplayName *string
}

// UpdateUserRequest represents data for updating a user profile
type UpdateUserRequest struct {
	DisplayName *string
}

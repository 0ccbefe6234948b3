package repository

import (
	"database/sql"

	"github.com/oksam-app/eco-todo-backend/internal/auth/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByFirebaseUID retrieves a user by their Firebase UID
func (r *UserRepository) GetByFirebaseUID(uid string) (*domain.User, error) {
	query := `
		SELECT firebase_uid, email, display_name, created_at, updated_at, last_login_at
		FROM users
		WHERE firebase_uid = $1
	`

	var user domain.User
	var displayName sql.NullString
	var lastLoginAt sql.NullTime

	err := r.db.QueryRow(query, uid).Scan(
		&user.FirebaseUID,
		&user.Email,
		&displayName,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLoginAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if displayName.Valid {
		user.DisplayName = &displayName.String
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}

	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(user *domain.User) error {
	query := `
		INSERT INTO users (firebase_uid, email, display_name)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		user.FirebaseUID,
		user.Email,
		user.DisplayName,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

// Update persists profile changes for an existing user
func (r *UserRepository) Update(user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, display_name = $3, updated_at = NOW()
		WHERE firebase_uid = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		user.FirebaseUID,
		user.Email,
		user.DisplayName,
	).Scan(&user.UpdatedAt)

	if err == sql.ErrNoRows {
		return domain.ErrUserNotFound
	}
	return err
}

// RecordLogin stamps last_login_at for the user
func (r *UserRepository) RecordLogin(uid string) error {
	_, err := r.db.Exec(`UPDATE users SET last_login_at = NOW() WHERE firebase_uid = $1`, uid)
	return err
}

package domain

import "errors"

var (
	ErrUserNotFound     = errors.New("user record not found")
	ErrInvalidPoints    = errors.New("points must be a positive integer")
	ErrStoreUnavailable = errors.New("real-time store unavailable")
)

package types

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrLocationNotFound = errors.New("location not found")
	ErrListingNotFound  = errors.New("listing not found")
	ErrSessionNotFound  = errors.New("session not found")
)

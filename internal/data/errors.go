package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrUserNotFound is returned when a profile row does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrCredentialsNotFound is returned when a user has no stored credential row.
	ErrCredentialsNotFound = errors.New("credentials not found")
)

package services

import "errors"

var (
	// ErrRecordNotFound is returned when an identifier does not resolve to a record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrUserNotFound is returned when no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when a username/password pair does not match an account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already taken")
)

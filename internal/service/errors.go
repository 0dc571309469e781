package service

import "errors"

var (
	// ErrInvalidCredentials never says whether the email or the password was wrong
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrAccountExists      = errors.New("an account with this email already exists")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrNotFound           = errors.New("not found")
)

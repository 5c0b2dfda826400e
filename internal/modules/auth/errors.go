package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user does not exist")
	ErrUserAlreadyExists   = errors.New("username or email already exists")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

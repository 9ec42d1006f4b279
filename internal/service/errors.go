// Package service holds the application's business rules on top of the
// repositories.
package service

import "errors"

var (
	// ErrInvalidCredentials covers unknown users, wrong passwords and
	// deactivated accounts alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound is returned when a username does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidImage is returned for uploads that do not decode as an image.
	ErrInvalidImage = errors.New("invalid image")
	// ErrImageTooLarge is returned for uploads over the configured size cap
	// or declaring more than MaxImagePixels.
	ErrImageTooLarge = errors.New("image too large")
)

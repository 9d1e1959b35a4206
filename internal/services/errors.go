package services

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong password and inactive
	// accounts alike, so the response never signals which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken means a token is malformed, has a bad signature, or is
	// unknown to the store.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired means the token's lifetime has run out.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked means the refresh token was blacklisted and can never
	// be used again, regardless of expiry.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrMissingToken means the request body carried no refresh token.
	ErrMissingToken = errors.New("refresh token not provided")

	// ErrEmailTaken and ErrUsernameTaken map unique-constraint violations on
	// registration.
	ErrEmailTaken    = errors.New("email already taken")
	ErrUsernameTaken = errors.New("username already taken")

	// ErrUserNotFound is returned for lookups that match no user record.
	ErrUserNotFound = errors.New("user not found")

	// ErrTaskNotFound is returned both when a task does not exist and when
	// the caller is not allowed to see it, so existence is never leaked.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTokenCollision means the bounded retries for generating a unique
	// refresh token were exhausted.
	ErrTokenCollision = errors.New("refresh token collision")
)

// ValidationError aggregates every failed input check so the client sees all
// of them at once instead of one per round trip.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

package models

import "time"

// RefreshToken is the persisted record of an issued refresh token. Only the
// SHA-256 hash of the opaque token is stored; the row doubles as the
// revocation record and is kept until the token's natural expiry.
type RefreshToken struct {
	TokenHash string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// TokenPair is the access/refresh credential pair returned on register and
// login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Caller is the identity resolved from a verified access token for the
// current request.
type Caller struct {
	ID       string
	Username string
	IsStaff  bool
}

package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kaddachi/tasktrack-be/internal/models"
)

// TokenServiceProvider defines the interface for token services.
type TokenServiceProvider interface {
	IssuePair(ctx context.Context, user models.User) (models.TokenPair, error)
	VerifyAccess(tokenStr string) (models.Caller, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Revoke(ctx context.Context, refreshToken string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Claims defines the JWT claims carried by access tokens.
type Claims struct {
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

// TokenService issues short-lived signed access tokens and long-lived opaque
// refresh tokens. Refresh tokens are persisted only as SHA-256 hashes; the
// stored row is also the revocation record. Access tokens are deliberately
// not revocable and stay valid until expiry even after logout.
type TokenService struct {
	db         *sql.DB
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a new TokenService.
func NewTokenService(db *sql.DB, secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		db:         db,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair mints an access/refresh token pair for a user.
func (s *TokenService) IssuePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	access, err := s.generateAccess(user, time.Now().UTC())
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := s.generateRefresh(ctx, user.ID)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// VerifyAccess parses and validates an access token and resolves the caller
// identity embedded in it.
func (s *TokenService) VerifyAccess(tokenStr string) (models.Caller, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Caller{}, ErrTokenExpired
		}
		return models.Caller{}, ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return models.Caller{}, ErrInvalidToken
	}

	return models.Caller{
		ID:       claims.Subject,
		Username: claims.Username,
		IsStaff:  claims.IsStaff,
	}, nil
}

// Refresh mints a new access token from a valid, unrevoked refresh token.
// The refresh token itself is not rotated; it stays usable until revoked or
// expired.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	record, err := s.lookupRefresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	user, err := userByID(ctx, s.db, record.UserID)
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", ErrInvalidToken
	}

	return s.generateAccess(user, time.Now().UTC())
}

// Revoke blacklists a refresh token. Every later Refresh or Revoke call with
// the same token fails with ErrTokenRevoked.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrMissingToken
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked = 1 WHERE token_hash = ? AND revoked = 0",
		hashToken(refreshToken))
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var revoked bool
		err := s.db.QueryRowContext(ctx,
			"SELECT revoked FROM refresh_tokens WHERE token_hash = ?",
			hashToken(refreshToken)).Scan(&revoked)
		if err == sql.ErrNoRows {
			return ErrInvalidToken
		}
		if err != nil {
			return err
		}
		return ErrTokenRevoked
	}
	return nil
}

// DeleteExpired garbage-collects revocation records whose tokens have passed
// their natural expiry. Returns the number of rows removed.
func (s *TokenService) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE expires_at <= ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TokenService) generateAccess(user models.User, now time.Time) (string, error) {
	claims := &Claims{
		Username: user.Username,
		IsStaff:  user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) generateRefresh(ctx context.Context, userID string) (string, error) {
	const maxAttempts = 5

	for attempt := 0; attempt < maxAttempts; attempt++ {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("failed to generate refresh token: %w", err)
		}
		plain := base64.RawURLEncoding.EncodeToString(b)

		now := time.Now().UTC()
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO refresh_tokens(token_hash, user_id, created_at, expires_at, revoked) VALUES(?, ?, ?, ?, 0)",
			hashToken(plain), userID, now, now.Add(s.refreshTTL))
		if err != nil {
			if isUniqueViolation(err) {
				// Hash collision, retry with a fresh token.
				continue
			}
			return "", err
		}
		return plain, nil
	}

	return "", ErrTokenCollision
}

func (s *TokenService) lookupRefresh(ctx context.Context, plain string) (models.RefreshToken, error) {
	var record models.RefreshToken
	err := s.db.QueryRowContext(ctx,
		"SELECT token_hash, user_id, created_at, expires_at, revoked FROM refresh_tokens WHERE token_hash = ?",
		hashToken(plain)).Scan(
		&record.TokenHash, &record.UserID, &record.CreatedAt, &record.ExpiresAt, &record.Revoked)
	if err == sql.ErrNoRows {
		return models.RefreshToken{}, ErrInvalidToken
	}
	if err != nil {
		return models.RefreshToken{}, err
	}

	if record.Revoked {
		return models.RefreshToken{}, ErrTokenRevoked
	}
	if time.Now().UTC().After(record.ExpiresAt) {
		return models.RefreshToken{}, ErrTokenExpired
	}
	return record, nil
}

// hashToken derives the storage key for a refresh token; the plaintext never
// touches the database.
func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

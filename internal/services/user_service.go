package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/kaddachi/tasktrack-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, username, email, password1, password2 string) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context, caller models.Caller) ([]models.User, error)
}

// UserService provides business logic for user accounts.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// Register validates the registration payload, hashes the password and
// creates the user. All failing checks are reported together in a single
// ValidationError rather than one at a time.
func (s *UserService) Register(ctx context.Context, username, email, password1, password2 string) (models.User, error) {
	var msgs []string

	username = strings.TrimSpace(username)
	if username == "" {
		msgs = append(msgs, "username is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		msgs = append(msgs, "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		msgs = append(msgs, "email is not a valid address")
	}

	if password1 != password2 {
		msgs = append(msgs, "passwords do not match")
	}
	if len(password1) < 8 {
		msgs = append(msgs, "password must be at least 8 characters")
	}

	if len(msgs) > 0 {
		return models.User{}, &ValidationError{Messages: msgs}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password1), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users(id, username, email, password_hash, is_staff, is_active) VALUES(?, ?, ?, ?, 0, 1)",
		user.ID, user.Username, user.Email, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "users.email") {
				return models.User{}, ErrEmailTaken
			}
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies an email/password pair. Unknown email, wrong password
// and inactive account all fail with the same ErrInvalidCredentials so the
// response carries no enumeration signal.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, is_staff, is_active, created_at FROM users WHERE email = ?",
		email).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsStaff, &user.IsActive, &user.CreatedAt)
	if err == sql.ErrNoRows {
		// Burn a comparison anyway so the timing profile matches the
		// wrong-password path.
		bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return models.User{}, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// GetByID retrieves a single user by their ID.
func (s *UserService) GetByID(ctx context.Context, id string) (models.User, error) {
	user, err := userByID(ctx, s.db, id)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// List returns all users for staff callers, and only the caller's own record
// otherwise. The filter is applied here, server-side, never from client
// input.
func (s *UserService) List(ctx context.Context, caller models.Caller) ([]models.User, error) {
	if !caller.IsStaff {
		// Non-staff callers only ever see themselves.
		user, err := s.GetByID(ctx, caller.ID)
		if err != nil {
			return nil, err
		}
		return []models.User{user}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username, email, is_staff, is_active, created_at FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.IsStaff, &user.IsActive, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// userByID is shared with the token service, which resolves users during
// refresh.
func userByID(ctx context.Context, db *sql.DB, id string) (models.User, error) {
	var user models.User
	err := db.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, is_staff, is_active, created_at FROM users WHERE id = ?",
		id).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsStaff, &user.IsActive, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// isUniqueViolation reports whether err is a sqlite unique-constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

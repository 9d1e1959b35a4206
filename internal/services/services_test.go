package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/kaddachi/tasktrack-be/internal/database"
	"github.com/kaddachi/tasktrack-be/internal/models"
	"github.com/stretchr/testify/require"
)

// newTestDB opens an in-memory SQLite database and applies migrations.
// A shared cache keeps the database alive across pooled connections.
func newTestDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// registerUser creates a user through the real registration path.
func registerUser(t *testing.T, db *sql.DB, username, email string) models.User {
	t.Helper()
	user, err := NewUserService(db).Register(context.Background(), username, email, "longpass1", "longpass1")
	require.NoError(t, err)
	return user
}

// promoteToStaff flips the staff flag directly in storage; there is no API
// surface for it.
func promoteToStaff(t *testing.T, db *sql.DB, userID string) {
	t.Helper()
	_, err := db.Exec("UPDATE users SET is_staff = 1 WHERE id = ?", userID)
	require.NoError(t, err)
}

func asCaller(user models.User, staff bool) models.Caller {
	return models.Caller{ID: user.ID, Username: user.Username, IsStaff: staff}
}

func newTestTokenService(db *sql.DB, accessTTL, refreshTTL time.Duration) *TokenService {
	return NewTokenService(db, "unit-secret", accessTTL, refreshTTL)
}

func taskUpdateWith(title, description *string, completed, favoris *bool) models.TaskUpdate {
	return models.TaskUpdate{Title: title, Description: description, Completed: completed, Favoris: favoris}
}

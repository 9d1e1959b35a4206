package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/kaddachi/tasktrack-be/internal/models"
)

// EventServiceProvider defines the interface for audit event services.
type EventServiceProvider interface {
	Record(ctx context.Context, eventType, level, message string, userID *string) error
	Recent(ctx context.Context, limit int) ([]models.Event, error)
}

// EventService keeps an append-only audit log of auth and task lifecycle
// actions. Writes are best-effort; callers log failures and move on.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// Record appends a new audit event.
func (s *EventService) Record(ctx context.Context, eventType, level, message string, userID *string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, user_id) VALUES (?, ?, ?, ?, ?)",
		uuid.New().String(), eventType, level, message, userID)
	return err
}

// Recent retrieves the most recent audit events.
func (s *EventService) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, level, message, user_id, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

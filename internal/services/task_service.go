package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kaddachi/tasktrack-be/internal/models"
	"github.com/kaddachi/tasktrack-be/internal/policy"
)

// maxTitleLength bounds task titles, matching the legacy schema.
const maxTitleLength = 100

// TaskServiceProvider defines the interface for task services.
type TaskServiceProvider interface {
	List(ctx context.Context, caller models.Caller) ([]models.Task, error)
	Create(ctx context.Context, caller models.Caller, title, description string) (models.Task, error)
	Get(ctx context.Context, caller models.Caller, id int64) (models.Task, error)
	Update(ctx context.Context, caller models.Caller, id int64, fields models.TaskUpdate) (models.Task, error)
	Delete(ctx context.Context, caller models.Caller, id int64) error
}

// TaskService provides business logic for tasks. Every operation is scoped
// through policy.CanAccess before anything is returned or mutated; a denied
// single-resource access is reported as ErrTaskNotFound so the existence of
// another user's task is never leaked.
type TaskService struct {
	db *sql.DB
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *sql.DB) *TaskService {
	return &TaskService{db: db}
}

// List returns every task for staff callers and only the caller's own tasks
// otherwise. The ownership filter lives in the query, not in client input.
func (s *TaskService) List(ctx context.Context, caller models.Caller) ([]models.Task, error) {
	const base = "SELECT id, user_id, title, description, completed, favoris, created_at, updated_at FROM tasks"

	var (
		rows *sql.Rows
		err  error
	)
	if caller.IsStaff {
		rows, err = s.db.QueryContext(ctx, base+" ORDER BY id")
	} else {
		rows, err = s.db.QueryContext(ctx, base+" WHERE user_id = ? ORDER BY id", caller.ID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// Create persists a new task. The owner is always the caller; any owner field
// a client may have supplied upstream is ignored by construction.
func (s *TaskService) Create(ctx context.Context, caller models.Caller, title, description string) (models.Task, error) {
	if err := validateTitle(title); err != nil {
		return models.Task{}, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks(user_id, title, description, completed, favoris, created_at, updated_at) VALUES(?, ?, ?, 0, 0, ?, ?)",
		caller.ID, strings.TrimSpace(title), description, now, now)
	if err != nil {
		return models.Task{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, err
	}
	return s.Get(ctx, caller, id)
}

// Get retrieves a single task the caller is allowed to see.
func (s *TaskService) Get(ctx context.Context, caller models.Caller, id int64) (models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, title, description, completed, favoris, created_at, updated_at FROM tasks WHERE id = ?", id)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return models.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, err
	}

	if !policy.CanAccess(caller, task.UserID) {
		return models.Task{}, ErrTaskNotFound
	}
	return task, nil
}

// Update applies a partial update to a task and refreshes updated_at. Nil
// fields keep their stored values.
func (s *TaskService) Update(ctx context.Context, caller models.Caller, id int64, fields models.TaskUpdate) (models.Task, error) {
	task, err := s.Get(ctx, caller, id)
	if err != nil {
		return models.Task{}, err
	}

	if fields.Title != nil {
		if err := validateTitle(*fields.Title); err != nil {
			return models.Task{}, err
		}
		task.Title = strings.TrimSpace(*fields.Title)
	}
	if fields.Description != nil {
		task.Description = *fields.Description
	}
	if fields.Completed != nil {
		task.Completed = *fields.Completed
	}
	if fields.Favoris != nil {
		task.Favoris = *fields.Favoris
	}
	task.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		"UPDATE tasks SET title = ?, description = ?, completed = ?, favoris = ?, updated_at = ? WHERE id = ?",
		task.Title, task.Description, task.Completed, task.Favoris, task.UpdatedAt, task.ID)
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Delete removes a task the caller is allowed to mutate.
func (s *TaskService) Delete(ctx context.Context, caller models.Caller, id int64) error {
	// The access check runs before the delete, same masking as Get.
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	return err
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	var msgs []string
	if title == "" {
		msgs = append(msgs, "title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		msgs = append(msgs, "title must be at most 100 characters")
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// scanTask is a helper to scan a task from a row or rows object.
func scanTask(scanner interface{ Scan(...interface{}) error }) (models.Task, error) {
	var task models.Task
	err := scanner.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description,
		&task.Completed, &task.Favoris, &task.CreatedAt, &task.UpdatedAt,
	)
	return task, err
}

package models

import "time"

// Task represents a single to-do item owned by a user.
// The owner is fixed at creation and never changes afterwards.
type Task struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Favoris     bool      `json:"favoris"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskUpdate carries a partial update for a task. Nil fields are left
// untouched.
type TaskUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	Favoris     *bool   `json:"favoris"`
}

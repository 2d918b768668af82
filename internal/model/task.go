package model

import (
	"strings"
	"time"

	"taskdeck/internal/recurrence"
)

// MaxTextLength is the longest task text accepted after trimming.
const MaxTextLength = 200

// Task is one task occurrence owned by a single user. Occurrences of a
// recurring task form a chain: each one points at its immediate predecessor
// through ParentTaskID.
type Task struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	OwnerID           string    `gorm:"index" json:"-"`
	Text              string    `json:"text"`
	Completed         bool      `gorm:"default:false" json:"completed"`
	DueDate           *Date     `json:"due_date,omitempty"`
	IsRecurring       bool      `gorm:"default:false" json:"is_recurring"`
	RecurrencePattern *string   `json:"recurrence_pattern,omitempty"`
	ParentTaskID      *string   `gorm:"index" json:"parent_task_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateTaskRequest represents the request body for creating a task.
type CreateTaskRequest struct {
	Text              string  `json:"text"`
	DueDate           *Date   `json:"due_date"`
	IsRecurring       bool    `json:"is_recurring"`
	RecurrencePattern *string `json:"recurrence_pattern"`
}

// Validate trims the text and checks the request against the task rules:
// text 1-200 chars, and a recurrence pattern exactly when is_recurring is
// set. A pattern on a non-recurring task is rejected rather than dropped.
func (r *CreateTaskRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return ErrTextRequired
	}
	if len(r.Text) > MaxTextLength {
		return ErrTextTooLong
	}
	if r.IsRecurring {
		if r.RecurrencePattern == nil {
			return ErrPatternRequired
		}
		if _, err := recurrence.ParsePattern(*r.RecurrencePattern); err != nil {
			return ErrInvalidPattern
		}
	} else if r.RecurrencePattern != nil {
		return ErrPatternNotRecurring
	}
	return nil
}

// UpdateTaskRequest represents the request body for partially updating a
// task. Nil fields are left unchanged. JSON null is indistinguishable from
// an absent field on a pointer, so clearing the due date goes through the
// explicit ClearDueDate flag.
type UpdateTaskRequest struct {
	Text              *string `json:"text,omitempty"`
	Completed         *bool   `json:"completed,omitempty"`
	DueDate           *Date   `json:"due_date,omitempty"`
	ClearDueDate      bool    `json:"clear_due_date,omitempty"`
	IsRecurring       *bool   `json:"is_recurring,omitempty"`
	RecurrencePattern *string `json:"recurrence_pattern,omitempty"`
}

// Validate checks the fields that can be verified without the stored task.
// The recurring/pattern invariant depends on current state and is enforced
// again when the update is applied.
func (r *UpdateTaskRequest) Validate() error {
	if r.Text != nil {
		trimmed := strings.TrimSpace(*r.Text)
		if trimmed == "" {
			return ErrTextRequired
		}
		if len(trimmed) > MaxTextLength {
			return ErrTextTooLong
		}
		r.Text = &trimmed
	}
	if r.RecurrencePattern != nil {
		if _, err := recurrence.ParsePattern(*r.RecurrencePattern); err != nil {
			return ErrInvalidPattern
		}
	}
	return nil
}

// TaskError represents a domain error for tasks.
type TaskError struct {
	Message string
}

func (e TaskError) Error() string {
	return e.Message
}

var (
	ErrTaskNotFound        = TaskError{Message: "task not found"}
	ErrTextRequired        = TaskError{Message: "text is required"}
	ErrTextTooLong         = TaskError{Message: "text must be at most 200 characters"}
	ErrPatternRequired     = TaskError{Message: "recurrence_pattern is required for recurring tasks"}
	ErrPatternNotRecurring = TaskError{Message: "recurrence_pattern is only valid on recurring tasks"}
	ErrInvalidPattern      = TaskError{Message: "recurrence_pattern must be one of daily, weekly, monthly, yearly"}
	ErrInvalidTheme        = TaskError{Message: "theme must be dark or light"}
)

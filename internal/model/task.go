package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status represents the current state of a task
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every known status in board order
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

var (
	// ErrUnknownStatus is returned when a status is outside the known set
	ErrUnknownStatus = errors.New("unknown status")

	// ErrInvalidPriority is returned when a priority is outside 0..5
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrEmptyTitle is returned when a task would have a blank title
	ErrEmptyTitle = errors.New("title is required")
)

// Priority bounds. Zero means "no priority".
const (
	PriorityNone = 0
	PriorityMin  = 0
	PriorityMax  = 5
)

// ParseStatus validates a raw status value
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if st.Valid() {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Valid returns true if the status is one of the known values
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// String returns the display name for a status
func (s Status) String() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// ValidatePriority checks a priority against the stored range
func ValidatePriority(p int) error {
	if p < PriorityMin || p > PriorityMax {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidPriority, p, PriorityMin, PriorityMax)
	}
	return nil
}

// Task represents a single board item
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    int        `json:"priority"`
	AreaID      *string    `json:"area_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Position    int        `json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate checks the closed fields of a task
func (t *Task) Validate() error {
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return err
	}
	return ValidatePriority(t.Priority)
}

// IsOverdue returns true if the task is past its due date
func (t *Task) IsOverdue() bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	return time.Now().After(*t.DueDate)
}

// IsDueToday returns true if the task is due today
func (t *Task) IsDueToday() bool {
	if t.DueDate == nil {
		return false
	}
	now := time.Now()
	return t.DueDate.Year() == now.Year() &&
		t.DueDate.YearDay() == now.YearDay()
}

// NewTask holds the fields accepted when creating a task
type NewTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status,omitempty"`
	Priority    int        `json:"priority"`
	AreaID      *string    `json:"area_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Validate fills defaults and checks the creation fields
func (n *NewTask) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	if n.Status == "" {
		n.Status = StatusTodo
	}
	if !n.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, n.Status)
	}
	return ValidatePriority(n.Priority)
}

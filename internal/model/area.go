package model

import (
	"time"
)

// InboxAreaID is the default owner of new tasks
const InboxAreaID = "inbox"

// Area represents a life area (health, work, home...) that owns tasks
type Area struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	Archived  bool      `json:"archived"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Computed fields (not stored)
	TaskCount int `json:"task_count,omitempty"`
	DoneCount int `json:"done_count,omitempty"`
}

// IsInbox returns true if this is the default inbox area
func (a *Area) IsInbox() bool {
	return a.ID == InboxAreaID
}

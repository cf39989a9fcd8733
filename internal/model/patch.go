package model

import (
	"fmt"
	"strings"
	"time"
)

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Status      *Status    `json:"status,omitempty" cbor:"1,keyasint,omitempty"`
	Priority    *int       `json:"priority,omitempty" cbor:"2,keyasint,omitempty"`
	Title       *string    `json:"title,omitempty" cbor:"3,keyasint,omitempty"`
	Description *string    `json:"description,omitempty" cbor:"4,keyasint,omitempty"`
	AreaID      *string    `json:"area_id,omitempty" cbor:"5,keyasint,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty" cbor:"6,keyasint,omitempty"`
}

// StatusPatch returns a patch that only sets the status
func StatusPatch(s Status) TaskPatch {
	return TaskPatch{Status: &s}
}

// PriorityPatch returns a patch that only sets the priority
func PriorityPatch(p int) TaskPatch {
	return TaskPatch{Priority: &p}
}

// IsEmpty returns true if the patch changes nothing
func (p TaskPatch) IsEmpty() bool {
	return p.Status == nil && p.Priority == nil && p.Title == nil &&
		p.Description == nil && p.AreaID == nil && p.DueDate == nil
}

// Validate checks the fields the patch sets
func (p TaskPatch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, *p.Status)
	}
	if p.Priority != nil {
		if err := ValidatePriority(*p.Priority); err != nil {
			return err
		}
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Apply returns a copy of t with the patch applied
func (p TaskPatch) Apply(t Task) Task {
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.AreaID != nil {
		area := *p.AreaID
		t.AreaID = &area
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	return t
}

// String renders the patch for logs and status messages
func (p TaskPatch) String() string {
	var parts []string
	if p.Status != nil {
		parts = append(parts, "status="+string(*p.Status))
	}
	if p.Priority != nil {
		parts = append(parts, fmt.Sprintf("priority=%d", *p.Priority))
	}
	if p.Title != nil {
		parts = append(parts, fmt.Sprintf("title=%q", *p.Title))
	}
	if p.Description != nil {
		parts = append(parts, "description")
	}
	if p.AreaID != nil {
		parts = append(parts, "area="+*p.AreaID)
	}
	if p.DueDate != nil {
		parts = append(parts, "due="+p.DueDate.Format("2006-01-02"))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"todo", StatusTodo, false},
		{"in_progress", StatusInProgress, false},
		{"done", StatusDone, false},
		{"pending", "", true},
		{"", "", true},
		{"DONE", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownStatus) {
				t.Errorf("ParseStatus(%q) error = %v, want ErrUnknownStatus", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStatus(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidatePriority(t *testing.T) {
	for p := PriorityMin; p <= PriorityMax; p++ {
		if err := ValidatePriority(p); err != nil {
			t.Errorf("ValidatePriority(%d) unexpected error: %v", p, err)
		}
	}
	for _, p := range []int{-1, 6, 100} {
		if err := ValidatePriority(p); !errors.Is(err, ErrInvalidPriority) {
			t.Errorf("ValidatePriority(%d) error = %v, want ErrInvalidPriority", p, err)
		}
	}
}

func TestNewTaskValidateDefaults(t *testing.T) {
	n := NewTask{Title: "Stretch"}
	if err := n.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if n.Status != StatusTodo {
		t.Errorf("default status = %q, want todo", n.Status)
	}

	n = NewTask{Title: "x", Status: "blocked"}
	if err := n.Validate(); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}

	n = NewTask{}
	if err := n.Validate(); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestTaskPatchApply(t *testing.T) {
	area := "health"
	task := Task{ID: "1", Title: "Run", Status: StatusTodo, Priority: 2}

	got := StatusPatch(StatusDone).Apply(task)
	if got.Status != StatusDone || got.Priority != 2 || got.Title != "Run" {
		t.Errorf("status patch applied wrong fields: %+v", got)
	}
	if task.Status != StatusTodo {
		t.Error("Apply must not modify the input task")
	}

	got = PriorityPatch(5).Apply(task)
	if got.Priority != 5 || got.Status != StatusTodo {
		t.Errorf("priority patch applied wrong fields: %+v", got)
	}

	got = TaskPatch{AreaID: &area}.Apply(task)
	if got.AreaID == nil || *got.AreaID != "health" {
		t.Errorf("area patch not applied: %+v", got)
	}
}

func TestTaskPatchValidate(t *testing.T) {
	bad := Status("archived")
	if err := (TaskPatch{Status: &bad}).Validate(); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
	if err := PriorityPatch(9).Validate(); !errors.Is(err, ErrInvalidPriority) {
		t.Errorf("expected ErrInvalidPriority, got %v", err)
	}
	empty := "  "
	if err := (TaskPatch{Title: &empty}).Validate(); err == nil {
		t.Error("expected error for blank title")
	}
	if !(TaskPatch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}
	if PriorityPatch(0).IsEmpty() {
		t.Error("priority patch to 0 is not empty")
	}
}

func TestIsOverdue(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	task := Task{Status: StatusTodo, DueDate: &past}
	if !task.IsOverdue() {
		t.Error("task due an hour ago should be overdue")
	}
	task.Status = StatusDone
	if task.IsOverdue() {
		t.Error("done tasks are never overdue")
	}
}

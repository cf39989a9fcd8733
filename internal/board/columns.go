// Package board partitions tasks into kanban columns and drives drag
// sessions between them.
//
// The package is free of rendering and I/O. A Controller owns the
// current grouping mode and the derived GroupedView; the UI feeds it
// fetched tasks and gesture events, and it hands committed moves to a
// Dispatcher as DragCommands. The task collection itself is never
// mutated here: the board only requests changes and waits for the next
// authoritative fetch.
package board

import (
	"fmt"
)

// Mode is the dimension used to partition tasks into columns
type Mode string

const (
	ModeStatus   Mode = "status"
	ModePriority Mode = "priority"
)

// ParseMode validates a grouping mode name
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStatus, ModePriority:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown grouping mode %q (want status or priority)", s)
}

// Next returns the other grouping mode
func (m Mode) Next() Mode {
	if m == ModeStatus {
		return ModePriority
	}
	return ModeStatus
}

// ColumnID identifies a column within a grouping mode
type ColumnID string

// Priority column ids
const (
	ColumnHigh   ColumnID = "high"
	ColumnMedium ColumnID = "medium"
	ColumnLow    ColumnID = "low"
)

// Column describes one board column
type Column struct {
	ID    ColumnID
	Title string
	Color string

	// Value is the priority written to a task dropped into this
	// column. Only set in priority mode.
	Value *int
}

// ColumnTableVersion is bumped whenever the column table changes shape
const ColumnTableVersion = 1

func intPtr(v int) *int { return &v }

var columnTable = map[Mode][]Column{
	ModeStatus: {
		{ID: "todo", Title: "To Do", Color: "#5E81AC"},
		{ID: "in_progress", Title: "In Progress", Color: "#EBCB8B"},
		{ID: "done", Title: "Done", Color: "#A3BE8C"},
	},
	ModePriority: {
		{ID: ColumnHigh, Title: "High Priority", Color: "#BF616A", Value: intPtr(5)},
		{ID: ColumnMedium, Title: "Medium Priority", Color: "#EBCB8B", Value: intPtr(3)},
		{ID: ColumnLow, Title: "Low Priority", Color: "#A3BE8C", Value: intPtr(1)},
	},
}

// Columns returns the column definitions for a mode in display order.
// Unknown modes have no columns.
func Columns(mode Mode) []Column {
	src := columnTable[mode]
	out := make([]Column, len(src))
	for i, c := range src {
		out[i] = c
		if c.Value != nil {
			out[i].Value = intPtr(*c.Value)
		}
	}
	return out
}

// IsColumn returns true if id names a column of the given mode
func IsColumn(mode Mode, id string) bool {
	for _, c := range columnTable[mode] {
		if string(c.ID) == id {
			return true
		}
	}
	return false
}

// column looks up a column definition by id
func column(mode Mode, id ColumnID) (Column, bool) {
	for _, c := range Columns(mode) {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

package board

import (
	"github.com/dori/lifeos/internal/model"
)

// GroupedView maps each column to the tasks it holds. It is derived
// from the task collection and rebuilt on every change.
type GroupedView struct {
	mode    Mode
	columns []Column
	tasks   map[ColumnID][]model.Task

	// Unmatched holds tasks whose status fits no column. They are not
	// shown on the board.
	Unmatched []model.Task
}

// Classify partitions tasks into the columns of mode. The partition is
// stable: tasks keep their input order within a column.
func Classify(tasks []model.Task, mode Mode) GroupedView {
	v := GroupedView{
		mode:    mode,
		columns: Columns(mode),
		tasks:   make(map[ColumnID][]model.Task),
	}
	for _, c := range v.columns {
		v.tasks[c.ID] = nil
	}

	for _, t := range tasks {
		id, ok := classifyTask(t, mode)
		if !ok {
			v.Unmatched = append(v.Unmatched, t)
			continue
		}
		v.tasks[id] = append(v.tasks[id], t)
	}
	return v
}

func classifyTask(t model.Task, mode Mode) (ColumnID, bool) {
	switch mode {
	case ModeStatus:
		if IsColumn(ModeStatus, string(t.Status)) {
			return ColumnID(t.Status), true
		}
		return "", false
	case ModePriority:
		return PriorityColumn(t.Priority), true
	}
	return "", false
}

// PriorityColumn buckets a five point priority into three columns.
// It is not the inverse of Column.Value: a task dropped into "high"
// gets priority 5, but 4 also reads back as high.
func PriorityColumn(p int) ColumnID {
	switch {
	case p >= 4:
		return ColumnHigh
	case p == 3:
		return ColumnMedium
	default:
		return ColumnLow
	}
}

// Mode returns the grouping mode the view was built for
func (v GroupedView) Mode() Mode {
	return v.mode
}

// Columns returns the view's columns in display order
func (v GroupedView) Columns() []Column {
	return v.columns
}

// Tasks returns the tasks in a column
func (v GroupedView) Tasks(id ColumnID) []model.Task {
	return v.tasks[id]
}

// Index returns the display index of a column, or -1
func (v GroupedView) Index(id ColumnID) int {
	for i, c := range v.columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Len returns the number of tasks placed in columns
func (v GroupedView) Len() int {
	n := 0
	for _, ts := range v.tasks {
		n += len(ts)
	}
	return n
}

// Find returns the task with the given id if it is on the board
func (v GroupedView) Find(taskID string) (model.Task, bool) {
	for _, c := range v.columns {
		for _, t := range v.tasks[c.ID] {
			if t.ID == taskID {
				return t, true
			}
		}
	}
	return model.Task{}, false
}

package board

import (
	"testing"

	"github.com/dori/lifeos/internal/model"
)

func task(id string, status model.Status, priority int) model.Task {
	return model.Task{ID: id, Title: "Task " + id, Status: status, Priority: priority}
}

func ids(ts []model.Task) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestClassifyByStatus(t *testing.T) {
	tasks := []model.Task{
		task("1", model.StatusTodo, 2),
		task("2", model.StatusDone, 5),
		task("3", model.StatusInProgress, 0),
		task("4", model.StatusTodo, 3),
	}

	v := Classify(tasks, ModeStatus)

	want := map[ColumnID][]string{
		"todo":        {"1", "4"},
		"in_progress": {"3"},
		"done":        {"2"},
	}
	for col, wantIDs := range want {
		if got := ids(v.Tasks(col)); !equalIDs(got, wantIDs) {
			t.Errorf("column %s = %v, want %v", col, got, wantIDs)
		}
	}
	if v.Len() != len(tasks) {
		t.Errorf("Len() = %d, want %d", v.Len(), len(tasks))
	}
	if len(v.Unmatched) != 0 {
		t.Errorf("Unmatched = %v, want none", ids(v.Unmatched))
	}
}

func TestClassifyPriorityBoundaries(t *testing.T) {
	tests := []struct {
		priority int
		want     ColumnID
	}{
		{5, ColumnHigh},
		{4, ColumnHigh},
		{3, ColumnMedium},
		{2, ColumnLow},
		{1, ColumnLow},
		{0, ColumnLow},
	}

	for _, tt := range tests {
		if got := PriorityColumn(tt.priority); got != tt.want {
			t.Errorf("PriorityColumn(%d) = %s, want %s", tt.priority, got, tt.want)
		}

		v := Classify([]model.Task{task("x", model.StatusTodo, tt.priority)}, ModePriority)
		if got := ids(v.Tasks(tt.want)); !equalIDs(got, []string{"x"}) {
			t.Errorf("priority %d: column %s = %v, want [x]", tt.priority, tt.want, got)
		}
	}
}

func TestClassifyUnknownStatus(t *testing.T) {
	tasks := []model.Task{
		task("1", model.StatusTodo, 1),
		task("2", model.Status("archived"), 4),
	}

	v := Classify(tasks, ModeStatus)
	if v.Len() != 1 {
		t.Errorf("Len() = %d, want 1", v.Len())
	}
	if got := ids(v.Unmatched); !equalIDs(got, []string{"2"}) {
		t.Errorf("Unmatched = %v, want [2]", got)
	}

	// Priority mode places every task regardless of status.
	v = Classify(tasks, ModePriority)
	if v.Len() != 2 || len(v.Unmatched) != 0 {
		t.Errorf("priority mode: Len() = %d Unmatched = %d, want 2 and 0", v.Len(), len(v.Unmatched))
	}
}

func TestClassifyIdempotent(t *testing.T) {
	tasks := []model.Task{
		task("a", model.StatusDone, 1),
		task("b", model.StatusTodo, 4),
		task("c", model.StatusTodo, 3),
	}

	for _, mode := range []Mode{ModeStatus, ModePriority} {
		first := Classify(tasks, mode)
		second := Classify(tasks, mode)
		for _, c := range first.Columns() {
			if !equalIDs(ids(first.Tasks(c.ID)), ids(second.Tasks(c.ID))) {
				t.Errorf("%s/%s differs between runs", mode, c.ID)
			}
		}
	}
}

func TestClassifyEmptyColumnsPresent(t *testing.T) {
	v := Classify(nil, ModePriority)
	cols := v.Columns()
	if len(cols) != 3 {
		t.Fatalf("got %d columns, want 3", len(cols))
	}
	for _, c := range cols {
		if len(v.Tasks(c.ID)) != 0 {
			t.Errorf("column %s not empty", c.ID)
		}
	}
	if v.Index(ColumnMedium) != 1 {
		t.Errorf("Index(medium) = %d, want 1", v.Index(ColumnMedium))
	}
	if v.Index("todo") != -1 {
		t.Errorf("Index(todo) in priority mode = %d, want -1", v.Index("todo"))
	}
}

func TestColumnsReturnsCopy(t *testing.T) {
	cols := Columns(ModePriority)
	*cols[0].Value = 1
	cols[0].Title = "changed"

	again := Columns(ModePriority)
	if *again[0].Value != 5 || again[0].Title != "High Priority" {
		t.Errorf("column table was mutated through Columns(): %+v", again[0])
	}
}

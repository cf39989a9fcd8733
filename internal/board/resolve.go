package board

// Resolve returns the column that owns id. A column id owns itself
// (a drop on an empty column's area); a task id is owned by the column
// holding that task. The bool is false when id is in neither set, and
// callers must abort without mutating anything.
func Resolve(v GroupedView, id string) (ColumnID, bool) {
	if id == "" {
		return "", false
	}
	for _, c := range v.columns {
		if string(c.ID) == id {
			return c.ID, true
		}
	}
	for _, c := range v.columns {
		for _, t := range v.tasks[c.ID] {
			if t.ID == id {
				return c.ID, true
			}
		}
	}
	return "", false
}

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dori/lifeos/internal/model"
	"github.com/google/uuid"
)

const taskColumns = `id, title, description, status, priority, area_id,
	due_date, completed_at, position, created_at, updated_at`

// GetTasks returns every task with a known status, in board order.
// Rows with an unknown status are skipped and logged.
func (db *DB) GetTasks() ([]model.Task, error) {
	rows, err := db.Query(`
		SELECT ` + taskColumns + `
		FROM tasks
		ORDER BY position, created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.scanTasks(rows)
}

// GetTask returns a single task by ID
func (db *DB) GetTask(id string) (*model.Task, error) {
	row := db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, err
}

// CreateTask creates a new task at the end of its column
func (db *DB) CreateTask(n model.NewTask) (*model.Task, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	// Use inbox as default area
	if n.AreaID == nil {
		inbox := model.InboxAreaID
		n.AreaID = &inbox
	}

	t := &model.Task{
		ID:          uuid.New().String(),
		Title:       n.Title,
		Description: n.Description,
		Status:      n.Status,
		Priority:    n.Priority,
		AreaID:      n.AreaID,
		DueDate:     n.DueDate,
		CreatedAt:   time.Now(),
	}
	t.UpdatedAt = t.CreatedAt
	if t.Status == model.StatusDone {
		completed := t.CreatedAt
		t.CompletedAt = &completed
	}

	var maxPos sql.NullInt64
	if err := db.QueryRow("SELECT MAX(position) FROM tasks").Scan(&maxPos); err != nil {
		return nil, err
	}
	if maxPos.Valid {
		t.Position = int(maxPos.Int64) + 1
	}

	_, err := db.Exec(`
		INSERT INTO tasks (id, title, description, status, priority, area_id,
		                   due_date, completed_at, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, nullString(t.Description), string(t.Status), t.Priority, t.AreaID,
		t.DueDate, t.CompletedAt, t.Position, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// UpdateTask applies a partial update and returns the stored task.
// Moving into done stamps completed_at; moving out of done clears it.
func (db *DB) UpdateTask(id string, patch model.TaskPatch) (*model.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var updated *model.Task
	err := db.Transaction(func(tx *sql.Tx) error {
		current, err := scanTask(tx.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}

		t := patch.Apply(*current)
		t.UpdatedAt = time.Now()
		if t.Status == model.StatusDone && current.Status != model.StatusDone {
			completed := t.UpdatedAt
			t.CompletedAt = &completed
		} else if t.Status != model.StatusDone {
			t.CompletedAt = nil
		}

		_, err = tx.Exec(`
			UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?,
			       area_id = ?, due_date = ?, completed_at = ?, updated_at = ?
			WHERE id = ?
		`, t.Title, nullString(t.Description), string(t.Status), t.Priority,
			t.AreaID, t.DueDate, t.CompletedAt, t.UpdatedAt, id)
		if err != nil {
			return err
		}
		updated = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTask deletes a task
func (db *DB) DeleteTask(id string) error {
	res, err := db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// Helper functions

// scanTasks collects rows, dropping tasks whose status is outside the
// known set so they never reach the board.
func (db *DB) scanTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		if !t.Status.Valid() {
			db.logger.Warn("skipping task row with unknown status", "task_id", t.ID, "status", string(t.Status))
			continue
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*model.Task, error) {
	var t model.Task
	var description, areaID sql.NullString
	var dueDate, completedAt sql.NullTime
	var status string

	err := s.Scan(
		&t.ID, &t.Title, &description, &status, &t.Priority, &areaID,
		&dueDate, &completedAt, &t.Position, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = model.Status(status)
	t.Description = description.String
	if areaID.Valid {
		t.AreaID = &areaID.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}

	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dori/lifeos/internal/model"
	"github.com/google/uuid"
)

// ErrInboxArea is returned when archiving or deleting the default area
var ErrInboxArea = errors.New("the inbox area cannot be removed")

// GetAreas returns all non-archived areas
func (db *DB) GetAreas() ([]model.Area, error) {
	rows, err := db.Query(`
		SELECT a.id, a.name, a.color, a.archived, a.position, a.created_at, a.updated_at,
		       (SELECT COUNT(*) FROM tasks WHERE area_id = a.id) as task_count,
		       (SELECT COUNT(*) FROM tasks WHERE area_id = a.id AND status = 'done') as done_count
		FROM areas a
		WHERE a.archived = 0
		ORDER BY a.position, a.created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []model.Area
	for rows.Next() {
		var a model.Area
		var archived int
		var color sql.NullString
		err := rows.Scan(
			&a.ID, &a.Name, &color, &archived, &a.Position,
			&a.CreatedAt, &a.UpdatedAt, &a.TaskCount, &a.DoneCount,
		)
		if err != nil {
			return nil, err
		}
		a.Archived = archived == 1
		a.Color = color.String
		areas = append(areas, a)
	}

	return areas, rows.Err()
}

// GetArea returns a single area by ID
func (db *DB) GetArea(id string) (*model.Area, error) {
	var a model.Area
	var archived int
	var color sql.NullString

	err := db.QueryRow(`
		SELECT id, name, color, archived, position, created_at, updated_at
		FROM areas WHERE id = ?
	`, id).Scan(&a.ID, &a.Name, &color, &archived, &a.Position, &a.CreatedAt, &a.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("area %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	a.Archived = archived == 1
	a.Color = color.String
	return &a, nil
}

// CreateArea creates a new area
func (db *DB) CreateArea(name, color string) (*model.Area, error) {
	if name == "" {
		return nil, errors.New("area name is required")
	}
	id := uuid.New().String()
	now := time.Now()

	var maxPos sql.NullInt64
	if err := db.QueryRow("SELECT MAX(position) FROM areas").Scan(&maxPos); err != nil {
		return nil, err
	}
	position := 0
	if maxPos.Valid {
		position = int(maxPos.Int64) + 1
	}

	_, err := db.Exec(`
		INSERT INTO areas (id, name, color, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, name, nullString(color), position, now, now)
	if err != nil {
		return nil, err
	}

	return &model.Area{
		ID:        id,
		Name:      name,
		Color:     color,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ArchiveArea hides an area from listings
func (db *DB) ArchiveArea(id string) error {
	if id == model.InboxAreaID {
		return fmt.Errorf("archive: %w", ErrInboxArea)
	}
	res, err := db.Exec(`UPDATE areas SET archived = 1, updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("area %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteArea deletes an area (moves tasks to inbox)
func (db *DB) DeleteArea(id string) error {
	if id == model.InboxAreaID {
		return fmt.Errorf("delete: %w", ErrInboxArea)
	}
	return db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE tasks SET area_id = ? WHERE area_id = ?`, model.InboxAreaID, id)
		if err != nil {
			return err
		}

		res, err := tx.Exec(`DELETE FROM areas WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("area %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

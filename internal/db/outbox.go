package db

import (
	"fmt"
	"time"

	"github.com/dori/lifeos/internal/model"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// OutboxEntry is a move that was accepted by the board but not yet
// confirmed by the backend.
type OutboxEntry struct {
	ID        string
	TaskID    string
	Seq       uint64
	Patch     model.TaskPatch
	Attempts  int
	CreatedAt time.Time
}

var patchEncMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// PutCommand stores the pending patch for a task, replacing any older
// one for the same task.
func (db *DB) PutCommand(taskID string, seq uint64, patch model.TaskPatch) (*OutboxEntry, error) {
	blob, err := patchEncMode.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}

	e := &OutboxEntry{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Seq:       seq,
		Patch:     patch,
		CreatedAt: time.Now(),
	}
	_, err = db.Exec(`
		INSERT INTO outbox (id, task_id, seq, patch, attempts, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
		ON CONFLICT(task_id) DO UPDATE SET
			id = excluded.id, seq = excluded.seq, patch = excluded.patch,
			attempts = 0, created_at = excluded.created_at
	`, e.ID, e.TaskID, int64(e.Seq), blob, e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// MarkAttempt bumps the attempt counter of a stored command
func (db *DB) MarkAttempt(id string) error {
	_, err := db.Exec(`UPDATE outbox SET attempts = attempts + 1 WHERE id = ?`, id)
	return err
}

// DeleteCommand removes a stored command by row id. A newer command for
// the same task has a fresh id and is left alone.
func (db *DB) DeleteCommand(id string) error {
	_, err := db.Exec(`DELETE FROM outbox WHERE id = ?`, id)
	return err
}

// PendingCommands returns stored commands, oldest first
func (db *DB) PendingCommands() ([]OutboxEntry, error) {
	rows, err := db.Query(`
		SELECT id, task_id, seq, patch, attempts, created_at
		FROM outbox
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}

	// Collect before returning the connection; SetMaxOpenConns(1)
	var entries []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		var seq int64
		var blob []byte
		if err := rows.Scan(&e.ID, &e.TaskID, &seq, &blob, &e.Attempts, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		e.Seq = uint64(seq)
		if err := cbor.Unmarshal(blob, &e.Patch); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decode patch for task %s: %w", e.TaskID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	return entries, rows.Close()
}

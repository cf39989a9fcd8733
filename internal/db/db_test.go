package db

import (
	"bytes"
	"database/sql"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dori/lifeos/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestNestedQueriesNoDeadlock is a regression test for the SQLite deadlock
// where a query issued while rows are still open blocks forever because
// SetMaxOpenConns(1) leaves no second connection.
func TestNestedQueriesNoDeadlock(t *testing.T) {
	db := openTestDB(t)

	area, err := db.CreateArea("Health", "#A3BE8C")
	if err != nil {
		t.Fatalf("Failed to create area: %v", err)
	}
	for i := 0; i < 5; i++ {
		_, err := db.CreateTask(model.NewTask{Title: "Task", AreaID: &area.ID, Priority: i})
		if err != nil {
			t.Fatalf("Failed to create task: %v", err)
		}
	}
	if _, err := db.PutCommand("x", 1, model.StatusPatch(model.StatusDone)); err != nil {
		t.Fatalf("Failed to store command: %v", err)
	}

	done := make(chan bool, 1)
	go func() {
		tasks, err := db.GetTasks()
		if err != nil {
			t.Errorf("GetTasks failed: %v", err)
			done <- false
			return
		}
		// Lookups after the task rows are closed
		for _, task := range tasks {
			if _, err := db.GetArea(*task.AreaID); err != nil {
				t.Errorf("GetArea failed: %v", err)
				done <- false
				return
			}
		}
		if _, err := db.PendingCommands(); err != nil {
			t.Errorf("PendingCommands failed: %v", err)
			done <- false
			return
		}
		if _, err := db.GetTasks(); err != nil {
			t.Errorf("GetTasks after PendingCommands failed: %v", err)
			done <- false
			return
		}
		done <- true
	}()

	select {
	case success := <-done:
		if !success {
			t.Fatal("Test failed during execution")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Test timed out - possible deadlock detected")
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	db := openTestDB(t)

	task, err := db.CreateTask(model.NewTask{Title: "Write report"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Status != model.StatusTodo {
		t.Errorf("status = %s, want todo", task.Status)
	}
	if task.AreaID == nil || *task.AreaID != model.InboxAreaID {
		t.Errorf("area = %v, want inbox", task.AreaID)
	}

	got, err := db.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "Write report" || got.Priority != 0 {
		t.Errorf("stored task = %+v", got)
	}
}

func TestCreateTaskRejectsInvalid(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.CreateTask(model.NewTask{Title: "x", Status: "archived"}); !errors.Is(err, model.ErrUnknownStatus) {
		t.Errorf("unknown status error = %v", err)
	}
	if _, err := db.CreateTask(model.NewTask{Title: "x", Priority: 9}); !errors.Is(err, model.ErrInvalidPriority) {
		t.Errorf("bad priority error = %v", err)
	}
	if _, err := db.CreateTask(model.NewTask{}); err == nil {
		t.Error("expected error for empty title")
	}
}

func TestUpdateTaskCompletedAt(t *testing.T) {
	db := openTestDB(t)

	task, err := db.CreateTask(model.NewTask{Title: "Ship it", Priority: 2})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	updated, err := db.UpdateTask(task.ID, model.StatusPatch(model.StatusDone))
	if err != nil {
		t.Fatalf("UpdateTask(done): %v", err)
	}
	if updated.Status != model.StatusDone || updated.CompletedAt == nil {
		t.Errorf("after done: status = %s completed_at = %v", updated.Status, updated.CompletedAt)
	}
	if updated.Priority != 2 {
		t.Errorf("status patch changed priority to %d", updated.Priority)
	}

	stored, err := db.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if stored.CompletedAt == nil {
		t.Error("completed_at not persisted")
	}

	reopened, err := db.UpdateTask(task.ID, model.StatusPatch(model.StatusInProgress))
	if err != nil {
		t.Fatalf("UpdateTask(in_progress): %v", err)
	}
	if reopened.CompletedAt != nil {
		t.Error("completed_at not cleared when leaving done")
	}
}

func TestUpdateTaskPriority(t *testing.T) {
	db := openTestDB(t)

	task, _ := db.CreateTask(model.NewTask{Title: "Call dentist", Priority: 2})
	updated, err := db.UpdateTask(task.ID, model.PriorityPatch(5))
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Priority != 5 || updated.Status != model.StatusTodo {
		t.Errorf("updated = priority %d status %s", updated.Priority, updated.Status)
	}

	if _, err := db.UpdateTask(task.ID, model.PriorityPatch(6)); !errors.Is(err, model.ErrInvalidPriority) {
		t.Errorf("priority 6 error = %v, want ErrInvalidPriority", err)
	}
}

func TestMissingTask(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.GetTask("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTask error = %v, want ErrNotFound", err)
	}
	if _, err := db.UpdateTask("nope", model.PriorityPatch(1)); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTask error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteTask("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTask error = %v, want ErrNotFound", err)
	}
}

func TestGetTasksSkipsUnknownStatus(t *testing.T) {
	var logs bytes.Buffer
	db, err := Open(filepath.Join(t.TempDir(), "test.db"),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.CreateTask(model.NewTask{Title: "ok"}); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	_, err = db.Exec(`INSERT INTO tasks (id, title, status, priority, created_at, updated_at)
		VALUES ('legacy', 'Old task', 'pending', 1, ?, ?)`, now, now)
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	tasks, err := db.GetTasks()
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "ok" {
		t.Errorf("GetTasks = %+v, want only the valid task", tasks)
	}
	if !strings.Contains(logs.String(), "task_id=legacy") {
		t.Errorf("skipped row not logged through the store logger: %q", logs.String())
	}
}

func TestDeleteAreaMovesTasksToInbox(t *testing.T) {
	db := openTestDB(t)

	area, err := db.CreateArea("Work", "")
	if err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	task, _ := db.CreateTask(model.NewTask{Title: "Review PR", AreaID: &area.ID})

	if err := db.DeleteArea(area.ID); err != nil {
		t.Fatalf("DeleteArea: %v", err)
	}
	got, _ := db.GetTask(task.ID)
	if got.AreaID == nil || *got.AreaID != model.InboxAreaID {
		t.Errorf("task area = %v, want inbox", got.AreaID)
	}
	if _, err := db.GetArea(area.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetArea after delete = %v, want ErrNotFound", err)
	}
	if err := db.DeleteArea(model.InboxAreaID); !errors.Is(err, ErrInboxArea) {
		t.Errorf("DeleteArea(inbox) = %v, want ErrInboxArea", err)
	}
}

func TestAreaCountsAndArchive(t *testing.T) {
	db := openTestDB(t)

	area, _ := db.CreateArea("Home", "#EBCB8B")
	db.CreateTask(model.NewTask{Title: "a", AreaID: &area.ID})
	db.CreateTask(model.NewTask{Title: "b", AreaID: &area.ID, Status: model.StatusDone})

	areas, err := db.GetAreas()
	if err != nil {
		t.Fatalf("GetAreas: %v", err)
	}
	var found bool
	for _, a := range areas {
		if a.ID == area.ID {
			found = true
			if a.TaskCount != 2 || a.DoneCount != 1 {
				t.Errorf("counts = %d/%d, want 2/1", a.TaskCount, a.DoneCount)
			}
		}
	}
	if !found {
		t.Fatal("created area missing from GetAreas")
	}

	if err := db.ArchiveArea(model.InboxAreaID); !errors.Is(err, ErrInboxArea) {
		t.Errorf("ArchiveArea(inbox) = %v, want ErrInboxArea", err)
	}
	if err := db.ArchiveArea(area.ID); err != nil {
		t.Fatalf("ArchiveArea: %v", err)
	}
	areas, _ = db.GetAreas()
	for _, a := range areas {
		if a.ID == area.ID {
			t.Error("archived area still listed")
		}
	}
}

func TestOutboxRoundTrip(t *testing.T) {
	db := openTestDB(t)

	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	patch := model.TaskPatch{Priority: new(int), DueDate: &due}
	*patch.Priority = 3

	first, err := db.PutCommand("t1", 1, model.StatusPatch(model.StatusInProgress))
	if err != nil {
		t.Fatalf("PutCommand: %v", err)
	}
	// Replaces the first command for the same task, even with the same seq
	second, err := db.PutCommand("t1", 1, patch)
	if err != nil {
		t.Fatalf("PutCommand: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("replacement kept the old row id")
	}
	if err := db.MarkAttempt(first.ID); err != nil {
		t.Fatalf("MarkAttempt: %v", err)
	}
	if err := db.MarkAttempt(second.ID); err != nil {
		t.Fatalf("MarkAttempt: %v", err)
	}

	entries, err := db.PendingCommands()
	if err != nil {
		t.Fatalf("PendingCommands: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.ID != second.ID || e.Seq != 1 || e.Attempts != 1 || e.Patch.Status != nil {
		t.Errorf("entry = %+v", e)
	}
	if e.Patch.Priority == nil || *e.Patch.Priority != 3 {
		t.Errorf("priority = %v, want 3", e.Patch.Priority)
	}
	if e.Patch.DueDate == nil || !e.Patch.DueDate.Equal(due) {
		t.Errorf("due = %v, want %v", e.Patch.DueDate, due)
	}

	// Stale delete leaves the newer command
	db.DeleteCommand(first.ID)
	if entries, _ := db.PendingCommands(); len(entries) != 1 {
		t.Errorf("stale delete removed the command")
	}
	db.DeleteCommand(second.ID)
	if entries, _ := db.PendingCommands(); len(entries) != 0 {
		t.Errorf("got %d entries after delete, want 0", len(entries))
	}
}

func TestTransactionRollsBack(t *testing.T) {
	db := openTestDB(t)

	boom := errors.New("boom")
	err := db.Transaction(func(tx *sql.Tx) error {
		now := time.Now()
		if _, err := tx.Exec(`INSERT INTO areas (id, name, created_at, updated_at) VALUES ('tmp', 'Tmp', ?, ?)`, now, now); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction = %v, want boom", err)
	}
	if _, err := db.GetArea("tmp"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetArea(tmp) = %v, want ErrNotFound after rollback", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		if _, err := db.GetArea(model.InboxAreaID); err != nil {
			t.Errorf("Open #%d: inbox missing: %v", i+1, err)
		}
		db.Close()
	}
}

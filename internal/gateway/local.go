package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/dori/lifeos/internal/db"
	"github.com/dori/lifeos/internal/model"
)

// Local serves the board straight from the SQLite store
type Local struct {
	db *db.DB
}

// NewLocal wraps an open store
func NewLocal(store *db.DB) *Local {
	return &Local{db: store}
}

func (l *Local) FetchTasks(ctx context.Context) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.db.GetTasks()
}

func (l *Local) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := l.db.UpdateTask(id, patch)
	return t, translate(err)
}

func (l *Local) CreateTask(ctx context.Context, n model.NewTask) (*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.db.CreateTask(n)
}

func (l *Local) DeleteTask(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return translate(l.db.DeleteTask(id))
}

func (l *Local) FetchAreas(ctx context.Context) ([]model.Area, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.db.GetAreas()
}

// translate maps store errors onto gateway errors
func translate(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

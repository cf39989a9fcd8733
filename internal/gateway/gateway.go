// Package gateway moves task data between the board and a backend.
//
// A Gateway is either the REST client (HTTPClient) or the local SQLite
// store (Local). The Dispatcher sits in front of either one and turns
// committed drag moves into update requests without blocking the UI.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dori/lifeos/internal/model"
)

// Gateway is the persistence boundary of the board
type Gateway interface {
	FetchTasks(ctx context.Context) ([]model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)
	CreateTask(ctx context.Context, n model.NewTask) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	FetchAreas(ctx context.Context) ([]model.Area, error)
}

// ErrNotFound is returned when the task does not exist on the backend
var ErrNotFound = errors.New("task not found")

// StatusError is a non-2xx response other than 404
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Message)
}

// Temporary reports whether retrying the same request may succeed
func (e *StatusError) Temporary() bool {
	switch {
	case e.Code >= 500:
		return true
	case e.Code == http.StatusRequestTimeout, e.Code == http.StatusTooManyRequests:
		return true
	}
	return false
}

// IsPermanent reports whether err will fail again on retry. Validation
// errors, missing tasks and 4xx responses are permanent; transport
// failures and 5xx are not.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, ErrNotFound) ||
		errors.Is(err, model.ErrUnknownStatus) ||
		errors.Is(err, model.ErrInvalidPriority) ||
		errors.Is(err, model.ErrEmptyTitle) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return !se.Temporary()
	}
	return false
}

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dori/lifeos/internal/board"
	"github.com/dori/lifeos/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, h http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewHTTPClient(srv.URL, 2*time.Second, quietLogger())
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	return c
}

func TestFetchTasksSkipsInvalid(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/tasks" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id":"1","title":"a","status":"todo","priority":2},
			{"id":"2","title":"b","status":"blocked","priority":1},
			{"id":"3","title":"c","status":"done","priority":9},
			{"id":"4","title":"d","status":"in_progress","priority":5}
		]`)
	}))

	tasks, err := c.FetchTasks(context.Background())
	if err != nil {
		t.Fatalf("FetchTasks: %v", err)
	}
	if len(tasks) != 3 || tasks[0].ID != "1" || tasks[1].ID != "3" || tasks[2].ID != "4" {
		t.Errorf("FetchTasks = %+v, want tasks 1, 3 and 4", tasks)
	}
}

func TestFetchTasksKeepsOutOfRangePriority(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id":"a","title":"urgent","status":"todo","priority":7},
			{"id":"b","title":"later","status":"todo","priority":-2},
			{"id":"c","title":"normal","status":"todo","priority":2}
		]`)
	}))

	tasks, err := c.FetchTasks(context.Background())
	if err != nil {
		t.Fatalf("FetchTasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("FetchTasks returned %d tasks, want 3", len(tasks))
	}

	view := board.Classify(tasks, board.ModePriority)
	high := view.Tasks(board.ColumnHigh)
	if len(high) != 1 || high[0].ID != "a" {
		t.Errorf("high = %+v, want task a", high)
	}
	low := view.Tasks(board.ColumnLow)
	if len(low) != 2 {
		t.Errorf("low = %+v, want tasks b and c", low)
	}
}

func TestUpdateTaskSendsPatch(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/tasks/abc" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(model.Task{ID: "abc", Title: "x", Status: model.StatusDone, Priority: 1})
	}))

	task, err := c.UpdateTask(context.Background(), "abc", model.StatusPatch(model.StatusDone))
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.Status != model.StatusDone {
		t.Errorf("status = %s, want done", task.Status)
	}
	if len(got) != 1 || got["status"] != "done" {
		t.Errorf("body = %v, want only status=done", got)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		code      int
		body      string
		notFound  bool
		permanent bool
		message   string
	}{
		{http.StatusNotFound, `{"error":"task not found"}`, true, true, ""},
		{http.StatusBadRequest, `{"error":"invalid priority"}`, false, true, "invalid priority"},
		{http.StatusConflict, `conflict`, false, true, "conflict"},
		{http.StatusTooManyRequests, ``, false, false, ""},
		{http.StatusRequestTimeout, ``, false, false, ""},
		{http.StatusInternalServerError, `{"error":"boom"}`, false, false, "boom"},
		{http.StatusBadGateway, ``, false, false, ""},
	}

	for _, tt := range tests {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.code)
			io.WriteString(w, tt.body)
		}))

		_, err := c.UpdateTask(context.Background(), "t", model.PriorityPatch(3))
		if err == nil {
			t.Errorf("%d: expected error", tt.code)
			continue
		}
		if errors.Is(err, ErrNotFound) != tt.notFound {
			t.Errorf("%d: errors.Is(ErrNotFound) = %v", tt.code, !tt.notFound)
		}
		if IsPermanent(err) != tt.permanent {
			t.Errorf("%d: IsPermanent = %v, want %v", tt.code, !tt.permanent, tt.permanent)
		}
		var se *StatusError
		if errors.As(err, &se) && se.Message != tt.message {
			t.Errorf("%d: message = %q, want %q", tt.code, se.Message, tt.message)
		}
	}
}

func TestUpdateTaskRejectsBadPatchLocally(t *testing.T) {
	called := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := c.UpdateTask(context.Background(), "t", model.PriorityPatch(7))
	if !errors.Is(err, model.ErrInvalidPriority) {
		t.Errorf("error = %v, want ErrInvalidPriority", err)
	}
	if !IsPermanent(err) {
		t.Error("validation error should be permanent")
	}
	if called {
		t.Error("invalid patch reached the server")
	}
}

func TestTransportErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := NewHTTPClient(url, time.Second, quietLogger())
	_, err := c.FetchTasks(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if IsPermanent(err) {
		t.Errorf("transport error %v treated as permanent", err)
	}
}

func TestNewHTTPClientRejectsBadURL(t *testing.T) {
	for _, u := range []string{"ftp://host", "not a url", ""} {
		if _, err := NewHTTPClient(u, time.Second, nil); err == nil {
			t.Errorf("NewHTTPClient(%q) accepted", u)
		}
	}
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dori/lifeos/internal/model"
)

// HTTPClient talks to the lifeos REST API
type HTTPClient struct {
	baseURL *url.URL
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewHTTPClient creates a REST gateway rooted at baseURL. timeout bounds
// each request.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid remote url %q: scheme must be http or https", baseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		baseURL: u,
		client:  &http.Client{},
		timeout: timeout,
		logger:  logger,
	}, nil
}

// BaseURL returns the API root
func (c *HTTPClient) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// FetchTasks returns every task with a valid status
func (c *HTTPClient) FetchTasks(ctx context.Context) ([]model.Task, error) {
	var raw []model.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &raw); err != nil {
		return nil, err
	}

	tasks := raw[:0]
	for _, t := range raw {
		if _, err := model.ParseStatus(string(t.Status)); err != nil {
			c.logger.Warn("skipping task with unknown status", "task_id", t.ID, "error", err)
			continue
		}
		// Out of range priorities still land in the outer priority columns
		if err := model.ValidatePriority(t.Priority); err != nil {
			c.logger.Warn("task priority out of range", "task_id", t.ID, "priority", t.Priority)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// UpdateTask sends a partial update
func (c *HTTPClient) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var t model.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), patch, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask creates a task
func (c *HTTPClient) CreateTask(ctx context.Context, n model.NewTask) (*model.Task, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	var t model.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", n, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask deletes a task
func (c *HTTPClient) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

// FetchAreas returns the active areas
func (c *HTTPClient) FetchAreas(ctx context.Context) ([]model.Area, error) {
	var areas []model.Area
	if err := c.do(ctx, http.MethodGet, "/api/areas", nil, &areas); err != nil {
		return nil, err
	}
	return areas, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// readErrorMessage extracts {"error": "..."} or falls back to the raw body
func readErrorMessage(r io.Reader) string {
	buf, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(buf) == 0 {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(buf, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(buf))
}

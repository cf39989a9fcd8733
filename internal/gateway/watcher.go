package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second

	// Time allowed to write a control frame
	writeWait = 10 * time.Second

	// The server pings well inside this window
	pongWait = 60 * time.Second
)

// Event is a change notification pushed by the server
type Event struct {
	Type   string
	TaskID string
}

type wireEvent struct {
	Type string `json:"type"`
	Data struct {
		TaskID string `json:"task_id"`
	} `json:"data"`
}

// Watcher subscribes to server change notifications
type Watcher struct {
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger
}

// NewWatcher creates a watcher for the API rooted at base
func NewWatcher(base *url.URL, logger *slog.Logger) *Watcher {
	u := *base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = u.Path + "/api/ws"
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		url:    u.String(),
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger: logger,
	}
}

// Run delivers events to fn until ctx ends, reconnecting with
// exponential backoff when the connection drops.
func (w *Watcher) Run(ctx context.Context, fn func(Event)) {
	backoff := reconnectBackoff()
	for {
		connected, err := w.stream(ctx, fn)
		if ctx.Err() != nil {
			return
		}
		if connected {
			backoff = reconnectBackoff()
		}
		wait, _ := backoff.Next()
		w.logger.Warn("change stream disconnected",
			"url", w.url,
			"error", err,
			"backoff", wait,
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// reconnectBackoff doubles from initialBackoff up to maxBackoff and never
// gives up
func reconnectBackoff() retry.Backoff {
	return retry.WithCappedDuration(maxBackoff, retry.NewExponential(initialBackoff))
}

// stream runs one connection. connected reports whether the handshake
// succeeded, so a long-lived connection resets the backoff.
func (w *Watcher) stream(ctx context.Context, fn func(Event)) (connected bool, err error) {
	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		conn.Close()
	})
	defer stop()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})

	// A fresh connection may have missed changes
	fn(Event{Type: "invalidate"})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var ev wireEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			w.logger.Debug("ignoring malformed event", "error", err)
			continue
		}
		fn(Event{Type: ev.Type, TaskID: ev.Data.TaskID})
	}
}

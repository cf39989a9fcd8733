package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestReconnectBackoff(t *testing.T) {
	b := reconnectBackoff()
	want := []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 30 * time.Second, 30 * time.Second,
	}
	for i, w := range want {
		got, stop := b.Next()
		if stop {
			t.Fatalf("attempt %d: backoff gave up", i)
		}
		if got != w {
			t.Errorf("attempt %d: wait = %v, want %v", i, got, w)
		}
	}
}

func TestWatcherDeliversEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ws" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"invalidate","data":{"task_id":"t1"}}`))
		// Hold the connection until the client closes it
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	base, _ := url.Parse(srv.URL)
	w := NewWatcher(base, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan Event, 4)
	done := make(chan struct{})
	go func() {
		w.Run(ctx, func(ev Event) { events <- ev })
		close(done)
	}()

	// The connect signal, then the pushed change; the malformed frame
	// is skipped
	for i, wantID := range []string{"", "t1"} {
		select {
		case ev := <-events:
			if ev.Type != "invalidate" || ev.TaskID != wantID {
				t.Errorf("event %d = %+v, want invalidate for %q", i, ev, wantID)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

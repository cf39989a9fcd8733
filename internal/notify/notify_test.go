package notify

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestNotificationArgs(t *testing.T) {
	args := Notification{
		Title:   "Title",
		Body:    "Body",
		Urgency: UrgencyCritical,
		Timeout: 2 * time.Second,
		Icon:    "icon",
	}.Args()

	want := []string{"-u", "critical", "-t", "2000", "-i", "icon", "-a", "lifeos", "Title", "Body"}
	if !slices.Equal(args, want) {
		t.Errorf("Args() = %v, want %v", args, want)
	}
}

func TestSendMoveFailed(t *testing.T) {
	var gotName string
	var gotArgs []string
	n := &Notifier{enabled: true, run: func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}}

	if err := n.SendMoveFailed("Write report", "Done", errors.New("backend returned 500")); err != nil {
		t.Fatal(err)
	}
	if gotName != "notify-send" {
		t.Errorf("command = %q", gotName)
	}
	body := gotArgs[len(gotArgs)-1]
	if !strings.Contains(body, "Write report") || !strings.Contains(body, "500") {
		t.Errorf("body = %q", body)
	}
}

func TestDisabledNotifierDoesNothing(t *testing.T) {
	called := false
	n := &Notifier{enabled: false, run: func(string, ...string) error {
		called = true
		return nil
	}}
	n.SendSimple("a", "b")
	if called {
		t.Error("disabled notifier ran notify-send")
	}

	var nilNotifier *Notifier
	if err := nilNotifier.SendSimple("a", "b"); err != nil {
		t.Errorf("nil notifier Send = %v", err)
	}
}

package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
	run     func(name string, args ...string) error
}

// NewNotifier creates a new notifier. It is disabled when notify-send
// is not installed.
func NewNotifier() *Notifier {
	_, err := exec.LookPath("notify-send")
	return &Notifier{
		enabled: err == nil,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Args builds the notify-send argument list
func (notification Notification) Args() []string {
	args := []string{}

	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// Timeout in milliseconds
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}

	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	args = append(args, "-a", "lifeos")

	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}
	return args
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(notification Notification) error {
	if n == nil || !n.enabled {
		return nil
	}
	return n.run("notify-send", notification.Args()...)
}

// SendSimple sends a simple notification with title and body
func (n *Notifier) SendSimple(title, body string) error {
	return n.Send(Notification{
		Title:   title,
		Body:    body,
		Urgency: UrgencyNormal,
		Timeout: 5 * time.Second,
	})
}

// SendMoveFailed reports a board move that was given up after retries
func (n *Notifier) SendMoveFailed(taskTitle, target string, err error) error {
	return n.Send(Notification{
		Title:   "Move not saved",
		Body:    fmt.Sprintf("%s → %s: %v", taskTitle, target, err),
		Urgency: UrgencyCritical,
		Timeout: 15 * time.Second,
		Icon:    "dialog-error-symbolic",
	})
}

// SendMovesReplayed reports moves restored from an earlier session
func (n *Notifier) SendMovesReplayed(count int) error {
	return n.Send(Notification{
		Title:   "Resending unsaved moves",
		Body:    fmt.Sprintf("%d move(s) from the last session are being sent again", count),
		Urgency: UrgencyLow,
		Timeout: 5 * time.Second,
	})
}

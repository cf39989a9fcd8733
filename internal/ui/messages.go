package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/lifeos/internal/gateway"
	"github.com/dori/lifeos/internal/ui/views"
)

// statusTTL is how long a status or error line stays visible
const statusTTL = 4 * time.Second

// ErrorMsg contains an error to display
type ErrorMsg struct {
	Err error
}

// StatusMsg contains a status message to display
type StatusMsg struct {
	Message string
}

// ThemeChangedMsg indicates the theme was changed
type ThemeChangedMsg struct {
	ThemeName string
}

// clearStatusMsg fades the status line set with the same id
type clearStatusMsg struct {
	id int
}

// replayedMsg reports moves resent from the outbox at startup
type replayedMsg struct {
	count int
	err   error
}

func clearStatusAfter(id int) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

// waitForResult blocks until the dispatcher reports a finished move
func waitForResult(results <-chan gateway.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-results
		if !ok {
			return nil
		}
		return views.MoveResultMsg{Result: r}
	}
}

// waitForEvent blocks until the watcher reports a backend change
func waitForEvent(events <-chan gateway.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return views.InvalidateMsg{TaskID: ev.TaskID}
	}
}

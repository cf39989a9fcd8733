package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/lifeos/internal/app"
	"github.com/dori/lifeos/internal/board"
	"github.com/dori/lifeos/internal/gateway"
	"github.com/dori/lifeos/internal/notify"
	"github.com/dori/lifeos/internal/ui/theme"
	"github.com/dori/lifeos/internal/ui/views"
)

// headerHeight is the number of lines above the board
const headerHeight = 1

// RootModel is the main application model. It hosts the board and
// wires the dispatcher and change watcher into the event loop.
type RootModel struct {
	keys   KeyMap
	help   help.Model
	width  int
	height int

	board       views.BoardView
	backend     string
	helpVisible bool

	dispatcher *gateway.Dispatcher
	watcher    *gateway.Watcher
	notifier   *notify.Notifier
	logger     *slog.Logger
	results    chan gateway.Result
	events     chan gateway.Event
	ctx        context.Context
	cancel     context.CancelFunc

	// Status message
	statusMsg string
	errorMsg  string
	statusID  int
}

// NewRootModel creates the root model for an application. Call Close
// after the program exits.
func NewRootModel(application *app.App, mode board.Mode) RootModel {
	h := help.New()
	h.ShowAll = true

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan gateway.Result, 64)
	events := make(chan gateway.Event, 64)

	dispatcher := application.NewDispatcher(func(r gateway.Result) {
		select {
		case results <- r:
		case <-ctx.Done():
		}
	})
	ctrl := board.NewController(mode, dispatcher, application.Logger)

	return RootModel{
		keys:       DefaultKeyMap(),
		help:       h,
		board:      views.NewBoardView(application.Gateway, ctrl, application.Notifier, application.Logger),
		backend:    application.Backend(),
		dispatcher: dispatcher,
		watcher:    application.NewWatcher(),
		notifier:   application.Notifier,
		logger:     application.Logger,
		results:    results,
		events:     events,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Init loads the board, resends unsaved moves and starts listening
func (m RootModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.board.Init(),
		m.replay(),
		waitForResult(m.results),
	}
	if m.watcher != nil {
		cmds = append(cmds, m.watch(), waitForEvent(m.events))
	}
	return tea.Batch(cmds...)
}

func (m RootModel) replay() tea.Cmd {
	d := m.dispatcher
	return func() tea.Msg {
		n, err := d.Replay()
		return replayedMsg{count: n, err: err}
	}
}

// watch runs the change watcher for the lifetime of the model
func (m RootModel) watch() tea.Cmd {
	w, ctx, events := m.watcher, m.ctx, m.events
	return func() tea.Msg {
		w.Run(ctx, func(ev gateway.Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		})
		return nil
	}
}

// Close stops the watcher and waits briefly for in-flight moves. Moves
// still unanswered stay in the outbox for the next start.
func (m RootModel) Close() error {
	m.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.dispatcher.Close(ctx)
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	m.logger.Debug("root update", "msg", fmt.Sprintf("%T", msg))

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header (1 line) and footer (up to 3 lines)
		m.board = m.board.SetSize(m.width, m.height-headerHeight-3)

	case tea.MouseMsg:
		if m.helpVisible {
			return m, nil
		}
		// The board works in its own coordinates
		msg.Y -= headerHeight
		newBoard, cmd := m.board.Update(msg)
		m.board = newBoard.(views.BoardView)
		return m, cmd

	case tea.KeyMsg:
		isInputMode := m.board.IsInputMode()

		// Global keybindings
		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			next := theme.Next(theme.Current.Theme.Name)
			theme.SetTheme(next)
			return m, func() tea.Msg { return ThemeChangedMsg{ThemeName: next.Name} }
		}

		if isInputMode {
			break
		}

		if m.helpVisible {
			if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
				m.helpVisible = false
			}
			return m, nil
		}
		if key.Matches(msg, m.keys.Help) {
			m.helpVisible = true
			return m, nil
		}

	case views.MoveResultMsg:
		// Keep listening for the next result
		cmds = append(cmds, waitForResult(m.results))

	case views.InvalidateMsg:
		cmds = append(cmds, waitForEvent(m.events))

	case replayedMsg:
		if msg.err != nil {
			m.logger.Error("outbox replay failed", "error", msg.err)
			return m, m.setStatus("Could not read unsaved moves: "+msg.err.Error(), true)
		}
		if msg.count == 0 {
			return m, nil
		}
		notifier, count := m.notifier, msg.count
		return m, tea.Batch(
			m.setStatus(fmt.Sprintf("Resending %d unsaved move(s)", count), false),
			func() tea.Msg {
				notifier.SendMovesReplayed(count)
				return nil
			},
		)

	case views.NoticeMsg:
		return m, m.setStatus(msg.Text, msg.Err)

	case ErrorMsg:
		return m, m.setStatus(msg.Err.Error(), true)

	case StatusMsg:
		return m, m.setStatus(msg.Message, false)

	case ThemeChangedMsg:
		return m, m.setStatus(fmt.Sprintf("Theme: %s", msg.ThemeName), false)

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.statusMsg = ""
			m.errorMsg = ""
		}
		return m, nil
	}

	// Delegate to the board
	newBoard, cmd := m.board.Update(msg)
	m.board = newBoard.(views.BoardView)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// setStatus shows a status or error line and schedules its fade
func (m *RootModel) setStatus(text string, isError bool) tea.Cmd {
	m.statusID++
	if isError {
		m.errorMsg, m.statusMsg = text, ""
	} else {
		m.statusMsg, m.errorMsg = text, ""
	}
	return clearStatusAfter(m.statusID)
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	contentHeight := m.height - headerHeight - 3
	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		content = m.board.View()
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("lifeos")

	subtle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	mode := subtle.Render(fmt.Sprintf("[by %s]", m.board.Controller().Mode()))
	right := subtle.Render(fmt.Sprintf("%s · theme: %s", m.backend, t.Name))

	left := lipgloss.JoinHorizontal(lipgloss.Center, title, mode)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderFooter renders the status line and key hints
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var lines []string
	if m.errorMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg))
	} else if m.statusMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg))
	}

	switch {
	case m.helpVisible:
		lines = append(lines, key("?/esc", "close help"))
	case m.board.IsInputMode():
		lines = append(lines, key("enter", "confirm")+sep+key("esc", "cancel"))
	case m.board.IsDragging():
		lines = append(lines, key("h/l", "target")+sep+
			key("enter/space", "drop")+sep+
			key("esc", "cancel"))
	default:
		lines = append(lines, key("space", "pick up")+sep+
			key("h/l", "columns")+sep+
			key("j/k", "navigate")+sep+
			key("g", "group")+sep+
			key("a", "add")+sep+
			key("d", "del"))
		lines = append(lines, key("r", "refresh")+sep+
			key("mouse", "drag cards")+sep+
			key("ctrl+t", "theme")+sep+
			key("?", "help")+sep+
			key("q", "quit"))
	}

	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)
	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	var b strings.Builder
	b.WriteString(titleStyle.Render("lifeos Help"))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(descStyle.Render("Drag with the mouse: press on a card, move to a column, release to drop."))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("Releasing outside the board cancels the move."))
	return b.String()
}

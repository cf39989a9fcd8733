package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/lifeos/internal/board"
	"github.com/dori/lifeos/internal/gateway"
	"github.com/dori/lifeos/internal/model"
	"github.com/dori/lifeos/internal/notify"
	"github.com/dori/lifeos/internal/ui/theme"
)

// requestTimeout bounds every gateway call made from the board
const requestTimeout = 15 * time.Second

// Local message types for the board view
type boardLoadedMsg struct {
	tasks []model.Task
	err   error
}

type areasLoadedMsg struct {
	areas []model.Area
	err   error
}

type taskCreatedMsg struct {
	task *model.Task
	err  error
}

type taskDeletedMsg struct {
	title string
	err   error
}

// MoveResultMsg carries a dispatcher result into the event loop
type MoveResultMsg struct {
	Result gateway.Result
}

// InvalidateMsg reports a change on the backend. An empty TaskID means
// everything may have changed.
type InvalidateMsg struct {
	TaskID string
}

// NoticeMsg asks the root model to show a line in the status bar
type NoticeMsg struct {
	Text string
	Err  bool
}

func notice(format string, args ...any) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: fmt.Sprintf(format, args...)} }
}

func failure(format string, args ...any) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: fmt.Sprintf(format, args...), Err: true} }
}

// BoardMode represents the current input mode
type BoardMode int

const (
	BoardModeNormal BoardMode = iota
	BoardModeAdd
	BoardModeConfirmDelete
)

// addStep is the current page of the create wizard
type addStep int

const (
	addStepTitle addStep = iota
	addStepDescription
	addStepPriority
)

// BoardView renders the grouped board and turns keyboard and mouse
// gestures into drag session events.
type BoardView struct {
	gw       gateway.Gateway
	ctrl     *board.Controller
	notifier *notify.Notifier
	logger   *slog.Logger

	width  int
	height int

	// Area names by id
	areas map[string]string

	// Navigation state
	currentColumn int
	cursorRow     int
	columnScroll  map[board.ColumnID]int

	// mouseDrag is set while the drag was started by a mouse press
	mouseDrag bool

	// Input mode
	mode      BoardMode
	textInput textinput.Model
	step      addStep
	draft     model.NewTask

	// For delete confirmation
	deleteTaskID string
	deleteTitle  string
}

// NewBoardView creates a board view over a controller. The controller
// carries the dispatcher; the gateway is used for reads, creates and
// deletes.
func NewBoardView(gw gateway.Gateway, ctrl *board.Controller, notifier *notify.Notifier, logger *slog.Logger) BoardView {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256

	if logger == nil {
		logger = slog.Default()
	}

	return BoardView{
		gw:           gw,
		ctrl:         ctrl,
		notifier:     notifier,
		logger:       logger,
		areas:        make(map[string]string),
		columnScroll: make(map[board.ColumnID]int),
		textInput:    ti,
	}
}

// Init loads the board
func (v BoardView) Init() tea.Cmd {
	return tea.Batch(v.loadTasks(), v.loadAreas())
}

// SetSize sets the view dimensions
func (v BoardView) SetSize(width, height int) BoardView {
	v.width = width
	v.height = height
	return v
}

// Controller exposes the drag controller
func (v BoardView) Controller() *board.Controller {
	return v.ctrl
}

// IsInputMode returns whether the view is capturing text or a y/n answer
func (v BoardView) IsInputMode() bool {
	return v.mode == BoardModeAdd || v.mode == BoardModeConfirmDelete
}

// IsDragging reports whether a drag session is active
func (v BoardView) IsDragging() bool {
	return v.ctrl.State() == board.StateDragging
}

// loadTasks fetches the authoritative task collection
func (v BoardView) loadTasks() tea.Cmd {
	gw := v.gw
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tasks, err := gw.FetchTasks(ctx)
		return boardLoadedMsg{tasks: tasks, err: err}
	}
}

func (v BoardView) loadAreas() tea.Cmd {
	gw := v.gw
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		areas, err := gw.FetchAreas(ctx)
		return areasLoadedMsg{areas: areas, err: err}
	}
}

// Update handles messages
func (v BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		if msg.err != nil {
			v.logger.Warn("fetch tasks failed", "error", msg.err)
			return v, failure("Could not load tasks: %v", msg.err)
		}
		v.ctrl.SetTasks(msg.tasks)
		v.clampCursor()
		return v, nil

	case areasLoadedMsg:
		if msg.err != nil {
			v.logger.Warn("fetch areas failed", "error", msg.err)
			return v, nil
		}
		v.areas = make(map[string]string, len(msg.areas))
		for _, a := range msg.areas {
			v.areas[a.ID] = a.Name
		}
		return v, nil

	case MoveResultMsg:
		cmd := v.handleMoveResult(msg.Result)
		return v, cmd

	case InvalidateMsg:
		return v, v.loadTasks()

	case taskCreatedMsg:
		if msg.err != nil {
			return v, failure("Create failed: %v", msg.err)
		}
		return v, tea.Batch(v.loadTasks(), notice("Added %q", msg.task.Title))

	case taskDeletedMsg:
		if msg.err != nil {
			return v, failure("Delete failed: %v", msg.err)
		}
		return v, tea.Batch(v.loadTasks(), notice("Deleted %q", msg.title))

	case tea.MouseMsg:
		if v.mode != BoardModeNormal {
			return v, nil
		}
		return v.handleMouse(msg)

	case tea.KeyMsg:
		switch v.mode {
		case BoardModeAdd:
			return v.handleAddMode(msg)
		case BoardModeConfirmDelete:
			return v.handleConfirmDeleteMode(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	// Keep the cursor blinking while typing
	if v.mode == BoardModeAdd {
		var cmd tea.Cmd
		v.textInput, cmd = v.textInput.Update(msg)
		return v, cmd
	}

	return v, nil
}

// handleNormalMode handles keys in normal mode
func (v BoardView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	dragging := v.IsDragging()

	switch msg.String() {
	// Column navigation; while dragging this moves the hover target
	case "h", "left":
		if v.currentColumn > 0 {
			v.currentColumn--
			v.clampCursor()
			v.hoverCurrentColumn()
		}
		return v, nil

	case "l", "right":
		if v.currentColumn < len(v.ctrl.Columns())-1 {
			v.currentColumn++
			v.clampCursor()
			v.hoverCurrentColumn()
		}
		return v, nil

	// Row navigation
	case "j", "down":
		if v.cursorRow < len(v.currentTasks())-1 {
			v.cursorRow++
			v.ensureCursorVisible()
		}
		return v, nil

	case "k", "up":
		if v.cursorRow > 0 {
			v.cursorRow--
			v.ensureCursorVisible()
		}
		return v, nil

	// Pick up or drop
	case " ":
		if dragging {
			return v.dropOnCurrentColumn()
		}
		task, ok := v.currentTask()
		if !ok {
			return v, nil
		}
		if v.ctrl.DragStart(task.ID) {
			v.mouseDrag = false
			v.hoverCurrentColumn()
		}
		return v, nil

	case "enter":
		if dragging {
			return v.dropOnCurrentColumn()
		}
		return v, nil

	case "esc":
		if dragging {
			v.ctrl.DragCancel()
			v.mouseDrag = false
			return v, notice("Move cancelled")
		}
		return v, nil

	// Grouping mode
	case "g":
		v.ctrl.SetGroupingMode(v.ctrl.Mode().Next())
		v.mouseDrag = false
		v.currentColumn = 0
		v.cursorRow = 0
		v.columnScroll = make(map[board.ColumnID]int)
		return v, notice("Grouped by %s", v.ctrl.Mode())

	case "r":
		return v, tea.Batch(v.loadTasks(), v.loadAreas())
	}

	if dragging {
		return v, nil
	}

	switch msg.String() {
	case "a":
		v.mode = BoardModeAdd
		v.step = addStepTitle
		v.draft = model.NewTask{}
		v.textInput.SetValue("")
		v.textInput.Placeholder = "Title"
		v.textInput.Focus()
		return v, textinput.Blink

	case "d":
		if task, ok := v.currentTask(); ok {
			v.deleteTaskID = task.ID
			v.deleteTitle = task.Title
			v.mode = BoardModeConfirmDelete
		}
		return v, nil
	}

	return v, nil
}

// hoverCurrentColumn reports the cursor column as the hover target
func (v *BoardView) hoverCurrentColumn() {
	if col, ok := v.columnAt(v.currentColumn); ok {
		v.ctrl.DragOver(string(col.ID))
	}
}

// dropOnCurrentColumn ends a keyboard drag on the cursor column
func (v BoardView) dropOnCurrentColumn() (tea.Model, tea.Cmd) {
	col, ok := v.columnAt(v.currentColumn)
	if !ok {
		v.ctrl.DragCancel()
		return v, nil
	}
	res := v.ctrl.DragEnd(string(col.ID))
	v.mouseDrag = false
	cmd := v.afterDrop(res)
	return v, cmd
}

// afterDrop follows the moved card with the cursor and reports the
// outcome in the status bar.
func (v *BoardView) afterDrop(res board.DropResult) tea.Cmd {
	switch res.Outcome {
	case board.OutcomeCommitted:
		cmd := res.Command
		view := v.ctrl.GroupedView()
		if idx := view.Index(cmd.To); idx >= 0 {
			v.currentColumn = idx
			for i, t := range view.Tasks(cmd.To) {
				if t.ID == cmd.TaskID {
					v.cursorRow = i
				}
			}
			v.ensureCursorVisible()
		}
		title := cmd.TaskID
		if t, ok := view.Find(cmd.TaskID); ok {
			title = t.Title
		}
		return notice("Moved %q to %s", title, v.columnTitle(cmd.Mode, cmd.To))
	case board.OutcomeUnresolved:
		return failure("Drop target not found")
	case board.OutcomeCancelled:
		return notice("Move cancelled")
	}
	v.clampCursor()
	return nil
}

// handleMoveResult settles or reverts the optimistic patch of a
// finished command and refetches.
func (v *BoardView) handleMoveResult(r gateway.Result) tea.Cmd {
	cmd := r.Command
	target := v.columnTitle(cmd.Mode, cmd.To)

	// Replayed commands carry sequence numbers from an earlier session
	if r.Replayed {
		if r.Err != nil {
			return tea.Batch(v.loadTasks(), failure("Saved move of %s could not be sent: %v", cmd.TaskID, r.Err))
		}
		return v.loadTasks()
	}

	if r.Err == nil {
		v.ctrl.Settle(cmd.TaskID, cmd.Seq)
		return v.loadTasks()
	}

	v.ctrl.Revert(cmd.TaskID, cmd.Seq)
	v.clampCursor()

	title := cmd.TaskID
	if t, ok := v.ctrl.GroupedView().Find(cmd.TaskID); ok {
		title = t.Title
	}
	v.logger.Warn("move failed",
		"task_id", cmd.TaskID,
		"to", string(cmd.To),
		"attempts", r.Attempts,
		"error", r.Err,
	)

	cmds := []tea.Cmd{v.loadTasks(), failure("Could not move %q to %s: %v", title, target, r.Err)}
	if !errors.Is(r.Err, context.Canceled) {
		notifier, logger, err := v.notifier, v.logger, r.Err
		cmds = append(cmds, func() tea.Msg {
			if nerr := notifier.SendMoveFailed(title, target, err); nerr != nil {
				logger.Debug("notification failed", "error", nerr)
			}
			return nil
		})
	}
	return tea.Batch(cmds...)
}

// handleMouse maps pointer gestures to drag events. Press on a card
// picks it up, motion with the button held updates the hover target
// and release drops on whatever is under the pointer.
func (v BoardView) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || v.IsDragging() {
			return v, nil
		}
		col, row := v.hitTest(msg.X, msg.Y)
		if col < 0 {
			return v, nil
		}
		v.currentColumn = col
		if row < 0 {
			v.clampCursor()
			return v, nil
		}
		v.cursorRow = row
		task, ok := v.currentTask()
		if ok && v.ctrl.DragStart(task.ID) {
			v.mouseDrag = true
			v.hoverCurrentColumn()
		}
		return v, nil

	case tea.MouseActionMotion:
		if !v.mouseDrag || !v.IsDragging() {
			return v, nil
		}
		v.ctrl.DragOver(v.targetAt(msg.X, msg.Y))
		return v, nil

	case tea.MouseActionRelease:
		if !v.mouseDrag || !v.IsDragging() {
			return v, nil
		}
		v.mouseDrag = false
		res := v.ctrl.DragEnd(v.targetAt(msg.X, msg.Y))
		cmd := v.afterDrop(res)
		return v, cmd
	}
	return v, nil
}

// targetAt returns the id under the pointer: a task id over a card, a
// column id over empty column space, "" outside every column.
func (v BoardView) targetAt(x, y int) string {
	col, row := v.hitTest(x, y)
	if col < 0 {
		return ""
	}
	c, _ := v.columnAt(col)
	if row >= 0 {
		tasks := v.ctrl.GroupedView().Tasks(c.ID)
		if row < len(tasks) {
			return tasks[row].ID
		}
	}
	return string(c.ID)
}

// hitTest returns the column index and task index at view-local x, y.
// col is -1 outside every column and row is -1 when not on a card.
func (v BoardView) hitTest(x, y int) (col, row int) {
	cols := v.ctrl.Columns()
	outer := v.columnWidth() + 2
	if x < 0 || y < 1 || outer <= 0 {
		return -1, -1
	}
	col = x / outer
	// Header row, then the top border, then content lines
	if col >= len(cols) || y > v.contentHeight()+2 {
		return -1, -1
	}

	line := y - 2
	if line < 0 || line >= v.contentHeight() {
		return col, -1
	}
	id := cols[col].ID
	scroll := v.columnScroll[id]
	if scroll > 0 {
		if line == 0 {
			return col, -1
		}
		line--
	}
	if line >= v.visibleFor(id) {
		return col, -1
	}
	idx := scroll + line
	if idx >= len(v.ctrl.GroupedView().Tasks(id)) {
		return col, -1
	}
	return col, idx
}

// handleAddMode drives the create wizard: title, description, priority
func (v BoardView) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.mode = BoardModeNormal
		v.textInput.Blur()
		return v, nil

	case "enter":
		value := strings.TrimSpace(v.textInput.Value())
		switch v.step {
		case addStepTitle:
			if value == "" {
				return v, nil
			}
			v.draft.Title = value
			v.step = addStepDescription
			v.textInput.SetValue("")
			v.textInput.Placeholder = "Description (optional)"
			return v, nil

		case addStepDescription:
			v.draft.Description = value
			v.step = addStepPriority
			v.textInput.SetValue("")
			v.textInput.Placeholder = strconv.Itoa(v.defaultPriority())
			return v, nil

		case addStepPriority:
			priority := v.defaultPriority()
			if value != "" {
				p, err := strconv.Atoi(value)
				if err == nil {
					err = model.ValidatePriority(p)
				}
				if err != nil {
					return v, failure("Priority must be %d-%d", model.PriorityMin, model.PriorityMax)
				}
				priority = p
			}
			v.draft.Priority = priority
			v.draft.Status = v.defaultStatus()
			v.mode = BoardModeNormal
			v.textInput.Blur()
			return v, v.createTask(v.draft)
		}
	}

	var cmd tea.Cmd
	v.textInput, cmd = v.textInput.Update(msg)
	return v, cmd
}

// defaultPriority is the priority of the cursor column in priority mode
func (v BoardView) defaultPriority() int {
	if col, ok := v.columnAt(v.currentColumn); ok && col.Value != nil {
		return *col.Value
	}
	return model.PriorityNone
}

// defaultStatus is the status of the cursor column in status mode
func (v BoardView) defaultStatus() model.Status {
	if v.ctrl.Mode() != board.ModeStatus {
		return model.StatusTodo
	}
	col, ok := v.columnAt(v.currentColumn)
	if !ok {
		return model.StatusTodo
	}
	s, err := model.ParseStatus(string(col.ID))
	if err != nil {
		return model.StatusTodo
	}
	return s
}

// handleConfirmDeleteMode handles keys in delete confirmation mode
func (v BoardView) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = BoardModeNormal
		id, title := v.deleteTaskID, v.deleteTitle
		v.deleteTaskID, v.deleteTitle = "", ""
		return v, v.deleteTask(id, title)
	case "n", "N", "esc":
		v.mode = BoardModeNormal
		v.deleteTaskID, v.deleteTitle = "", ""
		return v, nil
	}
	return v, nil
}

func (v BoardView) createTask(n model.NewTask) tea.Cmd {
	gw := v.gw
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		task, err := gw.CreateTask(ctx, n)
		return taskCreatedMsg{task: task, err: err}
	}
}

func (v BoardView) deleteTask(id, title string) tea.Cmd {
	gw := v.gw
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return taskDeletedMsg{title: title, err: gw.DeleteTask(ctx, id)}
	}
}

// columnAt returns the column at display index i
func (v BoardView) columnAt(i int) (board.Column, bool) {
	cols := v.ctrl.Columns()
	if i < 0 || i >= len(cols) {
		return board.Column{}, false
	}
	return cols[i], true
}

func (v BoardView) columnTitle(mode board.Mode, id board.ColumnID) string {
	for _, c := range board.Columns(mode) {
		if c.ID == id {
			return c.Title
		}
	}
	return string(id)
}

func (v BoardView) currentTasks() []model.Task {
	col, ok := v.columnAt(v.currentColumn)
	if !ok {
		return nil
	}
	return v.ctrl.GroupedView().Tasks(col.ID)
}

func (v BoardView) currentTask() (model.Task, bool) {
	tasks := v.currentTasks()
	if v.cursorRow < 0 || v.cursorRow >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[v.cursorRow], true
}

// clampCursor ensures cursor is valid for current column
func (v *BoardView) clampCursor() {
	if n := len(v.ctrl.Columns()); v.currentColumn >= n {
		v.currentColumn = n - 1
	}
	if v.currentColumn < 0 {
		v.currentColumn = 0
	}
	tasks := v.currentTasks()
	if v.cursorRow >= len(tasks) {
		v.cursorRow = len(tasks) - 1
	}
	if v.cursorRow < 0 {
		v.cursorRow = 0
	}
	v.ensureCursorVisible()
}

// ensureCursorVisible adjusts scroll to keep cursor in view
func (v *BoardView) ensureCursorVisible() {
	col, ok := v.columnAt(v.currentColumn)
	if !ok {
		return
	}
	visible := v.visibleFor(col.ID)
	scroll := v.columnScroll[col.ID]

	if v.cursorRow >= scroll+visible {
		scroll = v.cursorRow - visible + 1
	}
	if v.cursorRow < scroll {
		scroll = v.cursorRow
	}
	v.columnScroll[col.ID] = scroll
}

// columnWidth is the inner width of one column
func (v BoardView) columnWidth() int {
	n := len(v.ctrl.Columns())
	if n == 0 {
		return 0
	}
	w := v.width/n - 2
	if w < 20 {
		w = 20
	}
	return w
}

// contentHeight is the number of lines inside a column border. The
// column header and the footer take one line each.
func (v BoardView) contentHeight() int {
	h := v.height - 4
	if h < 3 {
		return 3
	}
	return h
}

// visibleFor returns how many cards fit in a column. Two lines are kept
// for scroll indicators and three more for the ghost card when the
// column is the hover target.
func (v BoardView) visibleFor(id board.ColumnID) int {
	n := v.contentHeight() - 2
	if target, ok := v.dropTarget(); ok && target == id {
		n -= 3
	}
	if n < 1 {
		return 1
	}
	return n
}

// dropTarget returns the column under the hover target when it differs
// from the dragged card's own column.
func (v BoardView) dropTarget() (board.ColumnID, bool) {
	active, dragging := v.ctrl.Active()
	if !dragging || v.ctrl.Over() == "" {
		return "", false
	}
	view := v.ctrl.GroupedView()
	to, ok := board.Resolve(view, v.ctrl.Over())
	if !ok {
		return "", false
	}
	if from, ok := board.Resolve(view, active); ok && from == to {
		return "", false
	}
	return to, true
}

// View renders the board
func (v BoardView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	styles := theme.Current.Styles
	view := v.ctrl.GroupedView()
	cols := v.ctrl.Columns()
	colWidth := v.columnWidth()
	target, hasTarget := v.dropTarget()
	active, dragging := v.ctrl.Active()

	var headers, rendered []string
	for i, col := range cols {
		tasks := view.Tasks(col.ID)
		isActiveCol := i == v.currentColumn

		hs := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(col.Color)).
			Width(colWidth + 2).
			Align(lipgloss.Center)
		if isActiveCol {
			hs = hs.Background(t.Highlight)
		}
		headers = append(headers, hs.Render(fmt.Sprintf("%s (%d)", col.Title, len(tasks))))

		visible := v.visibleFor(col.ID)
		scroll := v.columnScroll[col.ID]
		start := min(scroll, len(tasks))
		end := min(scroll+visible, len(tasks))

		var items []string
		if scroll > 0 {
			items = append(items, v.scrollIndicator(colWidth, fmt.Sprintf("↑ %d more", scroll)))
		}
		for j := start; j < end; j++ {
			task := tasks[j]
			items = append(items, v.renderCard(task, colWidth, isActiveCol && j == v.cursorRow))
		}
		if end < len(tasks) {
			items = append(items, v.scrollIndicator(colWidth, fmt.Sprintf("↓ %d more", len(tasks)-end)))
		}
		if len(tasks) == 0 {
			items = append(items, lipgloss.NewStyle().
				Foreground(t.Subtle).
				Italic(true).
				Render("(empty)"))
		}

		// Floating copy of the dragged card under the hovered column
		if dragging && hasTarget && target == col.ID {
			if task, ok := view.Find(active); ok {
				items = append(items, styles.CardGhost.Width(colWidth-2).Render(truncate(task.Title, colWidth-4)))
			}
		}

		cs := styles.Column
		switch {
		case hasTarget && target == col.ID:
			cs = styles.ColumnDropTarget
		case isActiveCol:
			cs = styles.ColumnActive
		}
		rendered = append(rendered, cs.Width(colWidth).Height(v.contentHeight()).Render(strings.Join(items, "\n")))
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top, headers...)
	columnsRow := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	return lipgloss.JoinVertical(lipgloss.Left, headerRow, columnsRow, v.renderFooter())
}

// renderFooter renders the input box, the delete prompt or the drag line
func (v BoardView) renderFooter() string {
	t := theme.Current.Theme
	styles := theme.Current.Styles
	input := styles.InputFocused.Width(v.width - 4)

	switch v.mode {
	case BoardModeAdd:
		label := [...]string{"New task", "Description", fmt.Sprintf("Priority %d-%d", model.PriorityMin, model.PriorityMax)}[v.step]
		return input.Render(fmt.Sprintf("%s (%d/3): %s", label, v.step+1, v.textInput.View()))

	case BoardModeConfirmDelete:
		return lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true).
			Render(fmt.Sprintf("Delete '%s'? (y/n)", v.deleteTitle))
	}

	if active, ok := v.ctrl.Active(); ok {
		title := active
		if task, found := v.ctrl.GroupedView().Find(active); found {
			title = task.Title
		}
		over := "nowhere"
		if to, found := v.dropTarget(); found {
			over = v.columnTitle(v.ctrl.Mode(), to)
		}
		return lipgloss.NewStyle().
			Foreground(t.DropTarget).
			Render(fmt.Sprintf("Dragging %q over %s", title, over))
	}
	return ""
}

func (v BoardView) scrollIndicator(width int, text string) string {
	return lipgloss.NewStyle().
		Foreground(theme.Current.Theme.Subtle).
		Width(width).
		Align(lipgloss.Center).
		Render(text)
}

// renderCard renders one task line: priority marker, area, title, due
// and pending markers.
func (v BoardView) renderCard(task model.Task, width int, selected bool) string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	var style lipgloss.Style
	switch {
	case v.ctrl.IsDragging(task.ID):
		style = styles.CardDragged
	case selected:
		style = styles.CardSelected
	case task.Status == model.StatusDone:
		style = styles.CardDone
	default:
		style = styles.Card
	}

	marker := "▽"
	switch board.PriorityColumn(task.Priority) {
	case board.ColumnHigh:
		marker = "▲"
	case board.ColumnMedium:
		marker = "●"
	}
	marker = lipgloss.NewStyle().Foreground(t.PriorityColor(task.Priority)).Render(marker)

	var area string
	if task.AreaID != nil && *task.AreaID != model.InboxAreaID {
		if name, ok := v.areas[*task.AreaID]; ok {
			area = "[" + name + "] "
		}
	}

	var suffix string
	switch {
	case task.IsOverdue():
		suffix = " !"
	case task.IsDueToday():
		suffix = " today"
	}
	var pending string
	if v.ctrl.Pending(task.ID) {
		pending = " ⟳"
	}

	// Padding takes two columns and the marker plus its space two more
	room := width - 4 - len([]rune(area)) - len([]rune(suffix)) - len([]rune(pending))
	title := truncate(task.Title, max(room, 5))

	if area != "" {
		area = styles.Area.Render(area)
	}
	if suffix != "" {
		if task.IsOverdue() {
			suffix = styles.Overdue.Render(suffix)
		} else {
			suffix = styles.DueDate.Render(suffix)
		}
	}
	if pending != "" {
		pending = styles.Pending.Render(pending)
	}

	return style.Width(width).Render(fmt.Sprintf("%s %s%s%s%s", marker, area, title, suffix, pending))
}

// truncate shortens s to n runes with a trailing ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

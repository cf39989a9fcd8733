package board

import (
	"io"
	"log/slog"

	"github.com/dori/lifeos/internal/model"
)

// State is the drag session state
type State int

const (
	StateIdle State = iota
	StateDragging
	StateResolving
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateResolving:
		return "resolving"
	default:
		return "unknown"
	}
}

// Outcome reports what a drop did
type Outcome int

const (
	// OutcomeCommitted means a command was dispatched
	OutcomeCommitted Outcome = iota
	// OutcomeCancelled means there was no drop target or no drag
	OutcomeCancelled
	// OutcomeUnresolved means the dragged task or the target is not on the board
	OutcomeUnresolved
	// OutcomeNoop means the task was dropped back into its own column
	OutcomeNoop
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeUnresolved:
		return "unresolved"
	case OutcomeNoop:
		return "noop"
	default:
		return "unknown"
	}
}

// DropResult is returned by DragEnd
type DropResult struct {
	Outcome Outcome
	Command *DragCommand
}

// Controller owns the grouping mode, the grouped view and the drag
// session. It is not safe for concurrent use; the UI event loop is its
// only caller.
type Controller struct {
	mode       Mode
	tasks      []model.Task
	view       GroupedView
	overlay    *Overlay
	dispatcher Dispatcher
	logger     *slog.Logger

	state  State
	active string
	over   string

	// reported remembers unmatched task ids already logged
	reported map[string]bool
}

// NewController creates a controller for mode. A nil logger discards.
func NewController(mode Mode, dispatcher Dispatcher, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if _, err := ParseMode(string(mode)); err != nil {
		mode = ModeStatus
	}
	c := &Controller{
		mode:       mode,
		overlay:    NewOverlay(),
		dispatcher: dispatcher,
		logger:     logger,
		reported:   make(map[string]bool),
	}
	c.reclassify()
	return c
}

// SetTasks replaces the task collection with a fresh authoritative
// fetch and re-classifies.
func (c *Controller) SetTasks(tasks []model.Task) {
	c.tasks = tasks
	c.overlay.Prune()
	c.reclassify()

	// A task that vanished mid-drag cannot be dropped anywhere.
	if c.state == StateDragging {
		if _, ok := c.view.Find(c.active); !ok {
			c.logger.Debug("dragged task left the board", "task_id", c.active)
			c.reset()
		}
	}
}

// SetGroupingMode switches the grouping dimension and re-classifies.
// An active drag is cancelled since its columns no longer exist.
func (c *Controller) SetGroupingMode(mode Mode) {
	if mode == c.mode {
		return
	}
	c.mode = mode
	c.reset()
	c.reclassify()
}

// Mode returns the active grouping mode
func (c *Controller) Mode() Mode {
	return c.mode
}

// Columns returns the columns of the active mode
func (c *Controller) Columns() []Column {
	return c.view.Columns()
}

// GroupedView returns the current partition
func (c *Controller) GroupedView() GroupedView {
	return c.view
}

// State returns the drag session state
func (c *Controller) State() State {
	return c.state
}

// Active returns the id of the dragged task
func (c *Controller) Active() (string, bool) {
	return c.active, c.state == StateDragging
}

// Over returns the current hover target, if any
func (c *Controller) Over() string {
	return c.over
}

// IsDragging reports whether taskID is the task being dragged
func (c *Controller) IsDragging(taskID string) bool {
	return c.state == StateDragging && c.active == taskID
}

// Pending reports whether taskID has a move waiting for confirmation
func (c *Controller) Pending(taskID string) bool {
	return c.overlay.Pending(taskID)
}

// DragStart begins dragging taskID. Returns false if a drag is already
// active or the task is not on the board.
func (c *Controller) DragStart(taskID string) bool {
	if c.state != StateIdle {
		return false
	}
	if _, ok := c.view.Find(taskID); !ok {
		return false
	}
	c.state = StateDragging
	c.active = taskID
	c.over = ""
	return true
}

// DragOver records the hover target. It is feedback only and never
// dispatches anything.
func (c *Controller) DragOver(overID string) {
	if c.state != StateDragging {
		return
	}
	c.over = overID
}

// DragCancel abandons the drag with no mutation
func (c *Controller) DragCancel() {
	c.reset()
}

// DragEnd drops the dragged task on overID (a column or task id, or
// "" for no target). A cross-column drop dispatches exactly one
// command; every other case returns to idle without one.
func (c *Controller) DragEnd(overID string) DropResult {
	if c.state != StateDragging {
		return DropResult{Outcome: OutcomeCancelled}
	}
	c.state = StateResolving
	defer c.reset()

	if overID == "" {
		return DropResult{Outcome: OutcomeCancelled}
	}

	from, ok := Resolve(c.view, c.active)
	if !ok {
		return DropResult{Outcome: OutcomeUnresolved}
	}
	to, ok := Resolve(c.view, overID)
	if !ok {
		return DropResult{Outcome: OutcomeUnresolved}
	}
	if from == to {
		return DropResult{Outcome: OutcomeNoop}
	}

	col, _ := column(c.mode, to)
	cmd := DragCommand{
		TaskID: c.active,
		From:   from,
		To:     to,
		Mode:   c.mode,
		Patch:  patchFor(c.mode, col),
	}
	cmd.Seq = c.overlay.Put(cmd.TaskID, cmd.Patch)
	c.reclassify()

	if c.dispatcher != nil {
		c.dispatcher.Dispatch(cmd)
	}
	c.logger.Debug("drag committed", "command", cmd.String())
	return DropResult{Outcome: OutcomeCommitted, Command: &cmd}
}

// Settle confirms a dispatched command
func (c *Controller) Settle(taskID string, seq uint64) {
	c.overlay.Settle(taskID, seq)
}

// Revert drops the optimistic patch of a failed command so the board
// shows the authoritative value again.
func (c *Controller) Revert(taskID string, seq uint64) {
	if c.overlay.Revert(taskID, seq) {
		c.reclassify()
	}
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.active = ""
	c.over = ""
}

func (c *Controller) reclassify() {
	c.view = Classify(c.overlay.Apply(c.tasks), c.mode)

	for _, t := range c.view.Unmatched {
		if c.reported[t.ID] {
			continue
		}
		c.reported[t.ID] = true
		c.logger.Warn("task hidden from board: status matches no column",
			"task_id", t.ID,
			"status", string(t.Status),
		)
	}
}

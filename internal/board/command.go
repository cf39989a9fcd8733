package board

import (
	"fmt"

	"github.com/dori/lifeos/internal/model"
)

// DragCommand is a committed cross-column move
type DragCommand struct {
	TaskID string
	From   ColumnID
	To     ColumnID
	Mode   Mode
	Patch  model.TaskPatch

	// Seq orders commands for the same task. Later commands supersede
	// earlier ones.
	Seq uint64
}

// String renders the command for logs
func (c DragCommand) String() string {
	return fmt.Sprintf("move %s %s->%s %s #%d", c.TaskID, c.From, c.To, c.Patch, c.Seq)
}

// Dispatcher accepts committed moves for persistence. Dispatch must not
// block on the network: the drag controller returns to idle as soon as
// the command is handed over.
type Dispatcher interface {
	Dispatch(cmd DragCommand)
}

// DispatchFunc adapts a function to the Dispatcher interface
type DispatchFunc func(cmd DragCommand)

// Dispatch calls f(cmd)
func (f DispatchFunc) Dispatch(cmd DragCommand) { f(cmd) }

// patchFor computes the field update implied by dropping into col
func patchFor(mode Mode, col Column) model.TaskPatch {
	if mode == ModePriority {
		value := 1
		if col.Value != nil {
			value = *col.Value
		}
		return model.PriorityPatch(value)
	}
	return model.StatusPatch(model.Status(col.ID))
}

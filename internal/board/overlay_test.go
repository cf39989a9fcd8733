package board

import (
	"testing"

	"github.com/dori/lifeos/internal/model"
)

func TestOverlayApply(t *testing.T) {
	o := NewOverlay()
	tasks := []model.Task{task("1", model.StatusTodo, 1), task("2", model.StatusTodo, 1)}

	o.Put("1", model.StatusPatch(model.StatusDone))
	got := o.Apply(tasks)

	if got[0].Status != model.StatusDone {
		t.Errorf("patched task status = %s, want done", got[0].Status)
	}
	if got[1].Status != model.StatusTodo {
		t.Errorf("untouched task status = %s, want todo", got[1].Status)
	}
	if tasks[0].Status != model.StatusTodo {
		t.Error("Apply mutated its input")
	}
}

func TestOverlaySettleAndPrune(t *testing.T) {
	o := NewOverlay()
	seq := o.Put("1", model.PriorityPatch(5))

	if !o.Pending("1") {
		t.Fatal("expected task 1 pending after Put")
	}

	o.Settle("1", seq)
	if o.Pending("1") {
		t.Error("task 1 still pending after Settle")
	}
	if o.Len() != 1 {
		t.Errorf("settled patch dropped before Prune: Len() = %d", o.Len())
	}

	o.Prune()
	if o.Len() != 0 {
		t.Errorf("Len() after Prune = %d, want 0", o.Len())
	}
}

func TestOverlayStaleSequence(t *testing.T) {
	o := NewOverlay()
	first := o.Put("1", model.StatusPatch(model.StatusInProgress))
	second := o.Put("1", model.StatusPatch(model.StatusDone))

	if o.Revert("1", first) {
		t.Error("Revert with superseded seq should be ignored")
	}
	o.Settle("1", first)
	if !o.Pending("1") {
		t.Error("Settle with superseded seq confirmed the newer patch")
	}

	got := o.Apply([]model.Task{task("1", model.StatusTodo, 0)})
	if got[0].Status != model.StatusDone {
		t.Errorf("status = %s, want the latest patch (done)", got[0].Status)
	}

	if !o.Revert("1", second) {
		t.Error("Revert with current seq returned false")
	}
	if o.Len() != 0 {
		t.Errorf("Len() = %d after revert, want 0", o.Len())
	}
}

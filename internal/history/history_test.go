package history

import (
	"testing"

	"idCardStudioAPI/internal/scene"
)

func state(texts ...string) []scene.Element {
	els := make([]scene.Element, len(texts))
	for i, txt := range texts {
		els[i] = scene.Element{ID: txt, Type: scene.ElementText, Text: txt, W: 10, H: 10}
	}
	return els
}

func TestUndoRedoRoundTrip(t *testing.T) {
	m := New()
	m.Snapshot(state("a"))
	m.Snapshot(state("a", "b"))
	m.Snapshot(state("a", "b", "c"))

	if !m.CanUndo() {
		t.Fatal("expected undo to be available")
	}

	els, ok := m.Undo()
	if !ok || len(els) != 2 {
		t.Fatalf("first undo: ok=%v len=%d", ok, len(els))
	}
	els, ok = m.Undo()
	if !ok || len(els) != 1 {
		t.Fatalf("second undo: ok=%v len=%d", ok, len(els))
	}
	els, ok = m.Undo()
	if !ok || len(els) != 0 {
		t.Fatalf("third undo should land on the initial empty snapshot: ok=%v len=%d", ok, len(els))
	}

	// Bottom of the stack.
	if _, ok := m.Undo(); ok {
		t.Error("undo past the bottom should report false")
	}

	els, ok = m.Redo()
	if !ok || len(els) != 1 || els[0].Text != "a" {
		t.Fatalf("redo should restore the first snapshot: ok=%v %v", ok, els)
	}
}

func TestRedoTruncatedByFreshEdit(t *testing.T) {
	m := New()
	m.Snapshot(state("a"))
	m.Snapshot(state("a", "b"))

	m.Undo()
	if !m.CanRedo() {
		t.Fatal("redo should be available after undo")
	}

	// A new edit while behind the end drops the redo branch.
	m.Snapshot(state("a", "x"))
	if m.CanRedo() {
		t.Error("fresh edit should truncate the redo branch")
	}
	if m.Len() != 3 {
		t.Errorf("expected 3 entries (empty, a, a+x), got %d", m.Len())
	}
}

func TestDuplicateSnapshotsSuppressed(t *testing.T) {
	m := New()
	m.Snapshot(state("a"))
	m.Snapshot(state("a"))
	m.Snapshot(state("a"))

	if m.Len() != 2 {
		t.Errorf("identical consecutive snapshots should collapse: len=%d", m.Len())
	}
}

func TestUndoReturnsCopies(t *testing.T) {
	m := New()
	m.Snapshot(state("a"))
	m.Snapshot(state("a", "b"))

	els, _ := m.Undo()
	els[0].Text = "mutated"

	restored, _ := m.Redo()
	if restored[0].Text == "mutated" && len(restored) == 1 {
		t.Error("caller mutation leaked into stored history")
	}
	els, _ = m.Undo()
	if els[0].Text != "a" {
		t.Errorf("stored snapshot was mutated: %v", els)
	}
}

func TestRedoUnavailableAtTop(t *testing.T) {
	m := New()
	m.Snapshot(state("a"))
	if _, ok := m.Redo(); ok {
		t.Error("redo at the top of the stack should report false")
	}
	if m.Cursor() != 1 {
		t.Errorf("cursor should stay put, got %d", m.Cursor())
	}
}

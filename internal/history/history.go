package history

import (
	"idCardStudioAPI/internal/scene"
)

// Manager keeps a linear undo/redo stack of element-sequence snapshots.
// A fresh edit while the cursor sits behind the end truncates everything
// after the cursor; no redo branch survives a new mutation.
type Manager struct {
	entries [][]scene.Element
	cursor  int
}

// New starts the stack with one empty snapshot at cursor 0 so the very
// first undo lands on an empty scene.
func New() *Manager {
	return &Manager{
		entries: [][]scene.Element{{}},
		cursor:  0,
	}
}

// Snapshot records the current element sequence. Identical consecutive
// states are ignored, which keeps no-op renders from flooding the stack.
func (m *Manager) Snapshot(elements []scene.Element) {
	if scene.EqualElements(elements, m.entries[m.cursor]) {
		return
	}
	cp := make([]scene.Element, len(elements))
	copy(cp, elements)

	m.entries = append(m.entries[:m.cursor+1], cp)
	m.cursor = len(m.entries) - 1
}

// Undo steps the cursor back and returns that snapshot. At the bottom of
// the stack it returns nil and ok=false, leaving the cursor alone.
func (m *Manager) Undo() ([]scene.Element, bool) {
	if m.cursor <= 0 {
		return nil, false
	}
	m.cursor--
	return m.current(), true
}

// Redo steps the cursor forward if there is a future to return to.
func (m *Manager) Redo() ([]scene.Element, bool) {
	if m.cursor >= len(m.entries)-1 {
		return nil, false
	}
	m.cursor++
	return m.current(), true
}

func (m *Manager) CanUndo() bool {
	return m.cursor > 0
}

func (m *Manager) CanRedo() bool {
	return m.cursor < len(m.entries)-1
}

// Len reports how many snapshots the stack holds.
func (m *Manager) Len() int {
	return len(m.entries)
}

// Cursor reports the current position, 0-based.
func (m *Manager) Cursor() int {
	return m.cursor
}

// current hands out a copy so callers can never mutate stored history.
func (m *Manager) current() []scene.Element {
	entry := m.entries[m.cursor]
	cp := make([]scene.Element, len(entry))
	copy(cp, entry)
	return cp
}

// Package editor drives in-memory document editing: segment mutations,
// synthesis with stale-result discard, and single-level undo.
package editor

// Entry is the pre-regenerate state of one segment, held for undo. Index is
// positional; structural edits after capture may make it point at a
// different segment, which undo resolves by bounds-checking at restore time.
type Entry struct {
	Index    int
	Text     string
	Audio    []byte
	Instruct string
}

// UndoManager holds at most one undoable state. Each successful regenerate
// overwrites the slot; undo pops and clears it, so a second undo in a row
// has nothing to restore.
type UndoManager struct {
	entry *Entry
}

// Capture stores the entry, replacing whatever was held before.
func (m *UndoManager) Capture(e Entry) {
	m.entry = &e
}

// Undo returns the held entry and clears the slot.
func (m *UndoManager) Undo() (Entry, bool) {
	if m.entry == nil {
		return Entry{}, false
	}
	e := *m.entry
	m.entry = nil
	return e, true
}

// CanUndo reports whether the slot is occupied.
func (m *UndoManager) CanUndo() bool {
	return m.entry != nil
}

// Clear empties the slot. Called when a different document is loaded.
func (m *UndoManager) Clear() {
	m.entry = nil
}

package annotation

// Op is the kind of store mutation a history entry reverses.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Entry is one undoable mutation together with the full record it
// touched, so undo can reconstruct a removed annotation exactly.
type Entry struct {
	Op         Op
	Annotation Annotation
}

// History holds the undo and redo stacks for one editing session.
// Entries exist only for user-initiated mutations; records seeded from
// the server at open time are not undoable. Any new mutation clears the
// redo stack.
type History struct {
	undo []Entry
	redo []Entry
}

// NewHistory returns empty undo/redo stacks.
func NewHistory() *History {
	return &History{}
}

// RecordAdd pushes an add mutation and clears the redo stack.
func (h *History) RecordAdd(a Annotation) {
	h.undo = append(h.undo, Entry{Op: OpAdd, Annotation: a})
	h.redo = nil
}

// RecordRemove pushes a remove mutation and clears the redo stack.
func (h *History) RecordRemove(a Annotation) {
	h.undo = append(h.undo, Entry{Op: OpRemove, Annotation: a})
	h.redo = nil
}

// Undo reverses the most recent mutation against the store and moves the
// entry to the redo stack. It reports whether anything was undone.
func (h *History) Undo(s *Store) bool {
	if len(h.undo) == 0 {
		return false
	}
	entry := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	switch entry.Op {
	case OpAdd:
		s.Remove(entry.Annotation.LocalID)
	case OpRemove:
		s.Add(entry.Annotation)
	}
	h.redo = append(h.redo, entry)
	return true
}

// Redo re-applies the most recently undone mutation and moves the entry
// back to the undo stack. It reports whether anything was redone.
func (h *History) Redo(s *Store) bool {
	if len(h.redo) == 0 {
		return false
	}
	entry := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	switch entry.Op {
	case OpAdd:
		s.Add(entry.Annotation)
	case OpRemove:
		s.Remove(entry.Annotation.LocalID)
	}
	h.undo = append(h.undo, entry)
	return true
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

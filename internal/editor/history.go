package editor

import "github.com/fresh-editor/fresh/internal/textbuf"

// HistoryEntry records one reversible edit: the bytes removed and the
// bytes inserted at Pos, enough to construct both the forward edit and
// its inverse.
type HistoryEntry struct {
	Pos      int
	Removed  string
	Inserted string
}

func (e HistoryEntry) inverse() HistoryEntry {
	return HistoryEntry{Pos: e.Pos, Removed: e.Inserted, Inserted: e.Removed}
}

func (e HistoryEntry) apply(buf *textbuf.Buffer) error {
	return buf.ReplaceRange(e.Pos, e.Pos+len(e.Removed), e.Inserted)
}

// History is an undo/redo stack of HistoryEntry. Pushing a new entry
// clears the redo stack, matching the usual editor discipline that a
// fresh edit invalidates any "future" the user undid away from.
type History struct {
	undo []HistoryEntry
	redo []HistoryEntry
}

func (h *History) Push(e HistoryEntry) {
	h.undo = append(h.undo, e)
	h.redo = nil
}

// Undo reverts the most recent entry, applying it to buf.
func (h *History) Undo(buf *textbuf.Buffer) (bool, error) {
	if len(h.undo) == 0 {
		return false, nil
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	if err := e.inverse().apply(buf); err != nil {
		return false, err
	}
	h.redo = append(h.redo, e)
	return true, nil
}

// Redo re-applies the most recently undone entry.
func (h *History) Redo(buf *textbuf.Buffer) (bool, error) {
	if len(h.redo) == 0 {
		return false, nil
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	if err := e.apply(buf); err != nil {
		return false, err
	}
	h.undo = append(h.undo, e)
	return true, nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

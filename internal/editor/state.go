package editor

import (
	"github.com/fresh-editor/fresh/internal/cursor"
	"github.com/fresh-editor/fresh/internal/errors"
	"github.com/fresh-editor/fresh/internal/highlight"
	"github.com/fresh-editor/fresh/internal/textbuf"
)

// DisplayOptions are per-buffer rendering toggles.
type DisplayOptions struct {
	ShowCursors bool
	TabWidth    int
}

func defaultDisplayOptions() DisplayOptions {
	return DisplayOptions{ShowCursors: true, TabWidth: 8}
}

// State is the per-open-buffer editor state: cursor set, viewport,
// highlighter, overlays, annotations, history, and display options.
// Cursors refer to buffer-relative byte offsets only — never to another
// State or Buffer pointer — so the editor's buffer-id → State map stays
// the single owner and no two objects point at each other.
type State struct {
	ID     string
	Buffer *textbuf.Buffer

	Cursors *cursor.Set

	Viewport    Viewport
	Highlighter *highlight.Highlighter
	Overlays    OverlaySet
	VirtualText VirtualTextSet
	Margins     MarginSet
	History     History
	Display     DisplayOptions

	KeyContext KeyContext
}

// NewState creates editor state for a freshly opened buffer.
func NewState(id string, buf *textbuf.Buffer) *State {
	s := &State{
		ID:          id,
		Buffer:      buf,
		Cursors:     cursor.NewSet(cursor.New(0)),
		Viewport:    DefaultViewport(),
		Overlays:    newOverlaySet(),
		VirtualText: newVirtualTextSet(),
		Margins:     newMarginSet(),
		Display:     defaultDisplayOptions(),
		KeyContext:  newKeyContext(),
	}
	buf.SetListener(s.onBufferChange)
	return s
}

func (s *State) onBufferChange(ev textbuf.ChangeEvent) {
	switch ev.Kind {
	case textbuf.Inserted:
		if s.Highlighter != nil {
			s.Highlighter.Invalidate(ev.Pos, ev.Pos+ev.Len)
		}
	case textbuf.Deleted:
		if s.Highlighter != nil {
			s.Highlighter.Invalidate(ev.Pos, ev.Pos+ev.Len)
		}
	}
}

// edit describes one cursor's replacement, in the vocabulary
// ReplaceRange(start, end, text) uses.
type edit struct {
	start, end int
	text       string
}

// applyPerCursor runs makeEdit against each cursor's current state,
// descending by position so earlier edits never shift the offset a
// not-yet-processed cursor was read from (spec.md §4.5 steps 1-4), then
// merges overlapping cursors and scrolls the viewport to the primary.
func (s *State) applyPerCursor(makeEdit func(c cursor.Cursor) (edit, cursor.Cursor, bool)) error {
	order := s.Cursors.DescendingOrder()
	all := s.Cursors.All()

	for _, idx := range order {
		c := all[idx]
		e, newCursor, ok := makeEdit(c)
		if !ok {
			all[idx] = newCursor
			continue
		}
		removed, err := s.Buffer.Read(e.start, e.end-e.start)
		if err != nil {
			return err
		}
		if err := s.Buffer.ReplaceRange(e.start, e.end, e.text); err != nil {
			return err
		}
		s.History.Push(HistoryEntry{Pos: e.start, Removed: string(removed), Inserted: e.text})
		all[idx] = newCursor
	}

	s.Cursors.SetAll(all, s.Cursors.PrimaryIndex())
	s.Cursors.Merge()
	s.scrollToPrimary()
	return nil
}

// InsertText types text at every cursor. A selection at a cursor is
// replaced; a collapsed cursor just gets text inserted.
func (s *State) InsertText(text string) error {
	return s.applyPerCursor(func(c cursor.Cursor) (edit, cursor.Cursor, bool) {
		lo, hi := c.Range()
		newPos := lo + len(text)
		return edit{start: lo, end: hi, text: text}, cursor.New(newPos), true
	})
}

// DeleteBackward removes the selection at each cursor, or one UTF-8
// character before a collapsed cursor (Backspace).
func (s *State) DeleteBackward() error {
	return s.applyPerCursor(func(c cursor.Cursor) (edit, cursor.Cursor, bool) {
		lo, hi := c.Range()
		if !c.Collapsed() {
			return edit{start: lo, end: hi, text: ""}, cursor.New(lo), true
		}
		if lo == 0 {
			return edit{}, c, false
		}
		prev, err := s.Buffer.PrevCharBoundary(lo)
		if err != nil {
			return edit{}, c, false
		}
		return edit{start: prev, end: lo, text: ""}, cursor.New(prev), true
	})
}

// DeleteForward removes the selection at each cursor, or one UTF-8
// character after a collapsed cursor (Delete).
func (s *State) DeleteForward() error {
	return s.applyPerCursor(func(c cursor.Cursor) (edit, cursor.Cursor, bool) {
		lo, hi := c.Range()
		if !c.Collapsed() {
			return edit{start: lo, end: hi, text: ""}, cursor.New(lo), true
		}
		if lo >= s.Buffer.Len() {
			return edit{}, c, false
		}
		next, err := s.Buffer.NextCharBoundary(lo)
		if err != nil {
			return edit{}, c, false
		}
		return edit{start: lo, end: next, text: ""}, cursor.New(lo), true
	})
}

// scrollToPrimary adjusts Viewport.TopByte so the primary cursor's line
// stays within the visible window.
func (s *State) scrollToPrimary() {
	line, _, err := s.Buffer.PositionToLineCol(s.Cursors.Primary().Position)
	if err != nil {
		return
	}
	topLine, _, err := s.Buffer.PositionToLineCol(s.Viewport.TopByte)
	if err != nil {
		return
	}
	height := s.Viewport.Height
	if height <= 0 {
		height = 1
	}

	newTop := topLine
	if line < topLine {
		newTop = line
	} else if line >= topLine+height {
		newTop = line - height + 1
	}
	if newTop == topLine {
		return
	}
	if pos, err := s.Buffer.LineColToPosition(newTop, 0); err == nil {
		s.Viewport.TopByte = pos
	}
}

// AddCursorBelow duplicates the primary cursor's column on the line
// below it (Ctrl-Alt-Down style multi-cursor creation).
func (s *State) AddCursorBelow() error {
	primary := s.Cursors.Primary()
	line, col, err := s.Buffer.PositionToLineCol(primary.Position)
	if err != nil {
		return err
	}
	pos, err := s.Buffer.LineColToPosition(line+1, col)
	if err != nil {
		return err
	}
	s.Cursors.Add(cursor.New(pos))
	return nil
}

// AddNextOccurrence finds the next literal match of the primary
// selection's text and adds it as a new secondary cursor (Ctrl-D).
func (s *State) AddNextOccurrence() error {
	primary := s.Cursors.Primary()
	lo, hi := primary.Range()
	if lo == hi {
		return nil
	}
	text, err := s.Buffer.Read(lo, hi-lo)
	if err != nil {
		return err
	}
	idx, found, err := s.Buffer.FindNextInRange(string(text), hi, s.Buffer.Len())
	if err != nil {
		return err
	}
	if !found {
		idx, found, err = s.Buffer.FindNextInRange(string(text), 0, lo)
		if err != nil {
			return err
		}
	}
	if !found {
		return nil
	}
	s.Cursors.Add(cursor.Cursor{Position: idx + len(text), Anchor: idx, Mode: cursor.Character})
	return nil
}

// SelectAllOccurrences seeds a cursor at every match of the primary
// selection's text in the buffer.
func (s *State) SelectAllOccurrences() error {
	primary := s.Cursors.Primary()
	lo, hi := primary.Range()
	if lo == hi {
		return nil
	}
	text, err := s.Buffer.Read(lo, hi-lo)
	if err != nil {
		return err
	}

	pattern := string(text)
	var cursors []cursor.Cursor
	primaryIdx := 0
	pos := 0
	for pos <= s.Buffer.Len() {
		idx, found, err := s.Buffer.FindNextInRange(pattern, pos, s.Buffer.Len())
		if err != nil {
			return err
		}
		if !found {
			break
		}
		c := cursor.Cursor{Position: idx + len(pattern), Anchor: idx, Mode: cursor.Character}
		if idx == lo {
			primaryIdx = len(cursors)
		}
		cursors = append(cursors, c)
		pos = idx + len(pattern)
	}
	if len(cursors) == 0 {
		return errors.New("editor: no occurrences found")
	}
	s.Cursors.SetAll(cursors, primaryIdx)
	return nil
}

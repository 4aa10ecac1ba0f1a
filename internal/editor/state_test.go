package editor

import (
	"testing"

	"github.com/fresh-editor/fresh/internal/chunktree"
	"github.com/fresh-editor/fresh/internal/cursor"
	"github.com/fresh-editor/fresh/internal/textbuf"
)

var smallCfg = chunktree.Config{ChunkSize: 16, BranchingFactor: 4}

func newTestState(t *testing.T, content string) *State {
	t.Helper()
	buf, err := textbuf.FromSlice([]byte(content), smallCfg)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return NewState("test", buf)
}

func TestInsertTextAtCollapsedCursor(t *testing.T) {
	s := newTestState(t, "hello world")
	s.Cursors.SetAll([]cursor.Cursor{cursor.New(5)}, 0)

	if err := s.InsertText(","); err != nil {
		t.Fatalf("InsertText: %v", err)
	}

	got, err := s.Buffer.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(got) != "hello, world" {
		t.Fatalf("got %q", got)
	}
	if s.Cursors.Primary().Position != 6 {
		t.Fatalf("cursor position = %d, want 6", s.Cursors.Primary().Position)
	}
}

func TestInsertTextMultiCursorAppliesDescending(t *testing.T) {
	s := newTestState(t, "aaa bbb ccc")
	s.Cursors.SetAll([]cursor.Cursor{
		cursor.New(3),
		cursor.New(7),
		cursor.New(11),
	}, 0)

	if err := s.InsertText("!"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}

	got, err := s.Buffer.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(got) != "aaa! bbb! ccc!" {
		t.Fatalf("got %q", got)
	}
}

func TestDeleteBackwardCollapsedRemovesOneChar(t *testing.T) {
	s := newTestState(t, "hello")
	s.Cursors.SetAll([]cursor.Cursor{cursor.New(5)}, 0)

	if err := s.DeleteBackward(); err != nil {
		t.Fatalf("DeleteBackward: %v", err)
	}
	got, _ := s.Buffer.Bytes()
	if string(got) != "hell" {
		t.Fatalf("got %q", got)
	}
	if s.Cursors.Primary().Position != 4 {
		t.Fatalf("position = %d, want 4", s.Cursors.Primary().Position)
	}
}

func TestDeleteBackwardAtStartIsNoop(t *testing.T) {
	s := newTestState(t, "hello")
	s.Cursors.SetAll([]cursor.Cursor{cursor.New(0)}, 0)

	if err := s.DeleteBackward(); err != nil {
		t.Fatalf("DeleteBackward: %v", err)
	}
	got, _ := s.Buffer.Bytes()
	if string(got) != "hello" {
		t.Fatalf("got %q, want unchanged", got)
	}
}

func TestDeleteForwardRemovesSelection(t *testing.T) {
	s := newTestState(t, "hello world")
	s.Cursors.SetAll([]cursor.Cursor{{Position: 5, Anchor: 0, Mode: cursor.Character}}, 0)

	if err := s.DeleteForward(); err != nil {
		t.Fatalf("DeleteForward: %v", err)
	}
	got, _ := s.Buffer.Bytes()
	if string(got) != " world" {
		t.Fatalf("got %q", got)
	}
}

func TestAddNextOccurrenceFindsNextMatch(t *testing.T) {
	s := newTestState(t, "foo bar foo baz")
	// select the first "foo"
	s.Cursors.SetAll([]cursor.Cursor{{Position: 3, Anchor: 0, Mode: cursor.Character}}, 0)

	if err := s.AddNextOccurrence(); err != nil {
		t.Fatalf("AddNextOccurrence: %v", err)
	}
	if s.Cursors.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Cursors.Len())
	}
	found := false
	for _, c := range s.Cursors.All() {
		lo, _ := c.Range()
		if lo == 8 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a cursor at the second occurrence (offset 8)")
	}
}

func TestSelectAllOccurrencesSeedsOneCursorPerMatch(t *testing.T) {
	s := newTestState(t, "cat cat cat")
	s.Cursors.SetAll([]cursor.Cursor{{Position: 3, Anchor: 0, Mode: cursor.Character}}, 0)

	if err := s.SelectAllOccurrences(); err != nil {
		t.Fatalf("SelectAllOccurrences: %v", err)
	}
	if s.Cursors.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Cursors.Len())
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := newTestState(t, "hello")
	s.Cursors.SetAll([]cursor.Cursor{cursor.New(5)}, 0)

	if err := s.InsertText(" world"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	got, _ := s.Buffer.Bytes()
	if string(got) != "hello world" {
		t.Fatalf("got %q", got)
	}

	ok, err := s.History.Undo(s.Buffer)
	if err != nil || !ok {
		t.Fatalf("Undo: ok=%v err=%v", ok, err)
	}
	got, _ = s.Buffer.Bytes()
	if string(got) != "hello" {
		t.Fatalf("after undo got %q, want \"hello\"", got)
	}

	ok, err = s.History.Redo(s.Buffer)
	if err != nil || !ok {
		t.Fatalf("Redo: ok=%v err=%v", ok, err)
	}
	got, _ = s.Buffer.Bytes()
	if string(got) != "hello world" {
		t.Fatalf("after redo got %q, want \"hello world\"", got)
	}
}

// Package textbuf implements the buffer façade (C4): the editable unit
// built on top of the virtual buffer (C2) and the line cache (C3). It owns
// insertion/deletion, search and replace, UTF-8-safe navigation, and the
// byte↔line/column and byte↔LSP position conversions the rest of the
// editor core is built against.
package textbuf

import (
	"os"
	"unicode/utf8"

	"github.com/fresh-editor/fresh/internal/atomicfile"
	"github.com/fresh-editor/fresh/internal/chunktree"
	"github.com/fresh-editor/fresh/internal/errors"
	"github.com/fresh-editor/fresh/internal/linecache"
	"github.com/fresh-editor/fresh/internal/vbuffer"
)

// EventKind distinguishes the two signals a buffer emits after a
// successful mutation, used by the highlighter and overlay sets (C5) to
// invalidate the ranges they cache.
type EventKind int

const (
	Inserted EventKind = iota
	Deleted
)

// ChangeEvent is emitted after every successful edit.
type ChangeEvent struct {
	Kind EventKind
	Pos  int
	Len  int
}

// Buffer is an in-memory mutable UTF-8 text document: a virtual buffer,
// an optional backing file path, a dirty flag, and a line cache.
type Buffer struct {
	vbuf     *vbuffer.Buffer
	lines    *linecache.Cache
	path     string
	dirty    bool
	listener func(ChangeEvent)
}

// New returns an empty, unnamed buffer.
func New(cfg chunktree.Config) *Buffer {
	return newBuffer(vbuffer.Empty(cfg))
}

// FromSlice builds a buffer whose initial content is data.
func FromSlice(data []byte, cfg chunktree.Config) (*Buffer, error) {
	vb, err := vbuffer.FromSlice(data, cfg)
	if err != nil {
		return nil, err
	}
	return newBuffer(vb), nil
}

// Open reads path from disk into a new buffer.
func Open(path string, cfg chunktree.Config) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	b, err := FromSlice(data, cfg)
	if err != nil {
		return nil, err
	}
	b.path = path
	return b, nil
}

func newBuffer(vb *vbuffer.Buffer) *Buffer {
	b := &Buffer{vbuf: vb}
	b.lines = linecache.New(sourceAdapter{vb}, linecache.DefaultConfig())
	return b
}

// SetListener registers the single callback invoked after each successful
// edit. There is one owner of editor state per spec.md's single-writer
// discipline, so a single slot (not a subscriber list) is enough.
func (b *Buffer) SetListener(fn func(ChangeEvent)) { b.listener = fn }

func (b *Buffer) emit(ev ChangeEvent) {
	if b.listener != nil {
		b.listener(ev)
	}
}

// Len returns the buffer's byte length.
func (b *Buffer) Len() int { return b.vbuf.Len() }

// Path returns the backing file path, or "" for an unnamed buffer.
func (b *Buffer) Path() string { return b.path }

// SetPath renames the buffer's backing file path (e.g. after "save as").
func (b *Buffer) SetPath(path string) { b.path = path }

// Dirty reports whether the buffer has unsaved changes.
func (b *Buffer) Dirty() bool { return b.dirty }

// Read copies up to length bytes starting at offset.
func (b *Buffer) Read(offset, length int) ([]byte, error) {
	return b.vbuf.Read(offset, length)
}

// Bytes materialises the whole buffer. Expensive for huge buffers; used
// only where the contract explicitly requires a materialised view (regex
// capture-expansion replace, save).
func (b *Buffer) Bytes() ([]byte, error) {
	return b.vbuf.Read(0, b.vbuf.Len())
}

// IterAt returns a byte cursor over the buffer's current snapshot.
func (b *Buffer) IterAt(offset int) (*vbuffer.ByteCursor, error) {
	return b.vbuf.IterAt(offset)
}

// Insert splices s into the buffer at pos. s must be valid UTF-8; an
// empty s is a no-op. Successful inserts set dirty, fix up the line
// cache, and emit an Inserted change event.
func (b *Buffer) Insert(pos int, s string) error {
	if len(s) == 0 {
		return nil
	}
	if !utf8.ValidString(s) {
		return errors.New("textbuf: insert: invalid UTF-8")
	}
	if err := b.vbuf.Insert(pos, []byte(s)); err != nil {
		return err
	}
	b.dirty = true
	b.lines.HandleInsertion(pos, len(s), countNewlines(s))
	b.emit(ChangeEvent{Kind: Inserted, Pos: pos, Len: len(s)})
	return nil
}

// Delete removes the half-open byte range [start, end). An empty range is
// a no-op.
func (b *Buffer) Delete(start, end int) error {
	if start == end {
		return nil
	}
	removed, err := b.vbuf.Read(start, end-start)
	if err != nil {
		return err
	}
	if err := b.vbuf.Delete(start, end); err != nil {
		return err
	}
	b.dirty = true
	b.lines.HandleDeletion(start, end-start, countNewlinesBytes(removed))
	b.emit(ChangeEvent{Kind: Deleted, Pos: start, Len: end - start})
	return nil
}

// ReplaceRange deletes [start, end) and inserts s at start.
func (b *Buffer) ReplaceRange(start, end int, s string) error {
	if err := b.Delete(start, end); err != nil {
		return err
	}
	return b.Insert(start, s)
}

// Save writes the buffer to its backing path atomically and clears the
// dirty flag. Save to an unnamed buffer is an invalid-argument error.
func (b *Buffer) Save() error {
	if b.path == "" {
		return errors.New("textbuf: save: buffer has no path")
	}
	return b.SaveAs(b.path)
}

// SaveAs writes the buffer to path atomically, clears the dirty flag, and
// adopts path as the buffer's path.
func (b *Buffer) SaveAs(path string) error {
	content, err := b.Bytes()
	if err != nil {
		return err
	}
	if err := atomicfile.Write(path, content); err != nil {
		return errors.Wrap(err, "textbuf: save")
	}
	b.path = path
	b.dirty = false
	return nil
}

func countNewlines(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
		}
	}
	return n
}

func countNewlinesBytes(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}

// sourceAdapter adapts vbuffer.Buffer to linecache.Source so the cache
// never depends on C2's concrete type.
type sourceAdapter struct{ buf *vbuffer.Buffer }

func (s sourceAdapter) Len() int { return s.buf.Len() }

func (s sourceAdapter) IterAt(offset int) (linecache.Cursor, error) {
	c, err := s.buf.IterAt(offset)
	if err != nil {
		return nil, err
	}
	return c, nil
}

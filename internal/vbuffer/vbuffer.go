// Package vbuffer implements the virtual buffer (C2): a thin owner of a
// chunktree.Tree that presents it as a single byte sequence, plus the
// bidirectional byte cursor used to walk it.
package vbuffer

import (
	"github.com/fresh-editor/fresh/internal/chunktree"
	"github.com/fresh-editor/fresh/internal/errors"
)

// Buffer owns one version of a chunktree.Tree at a time. It never mutates
// the tree in place — Insert/Delete swap in the new root returned by the
// tree — so any ByteCursor created before a mutation keeps reading the
// pre-mutation snapshot.
type Buffer struct {
	tree *chunktree.Tree
}

// New wraps an existing tree.
func New(tree *chunktree.Tree) *Buffer {
	return &Buffer{tree: tree}
}

// Empty returns a zero-length virtual buffer.
func Empty(cfg chunktree.Config) *Buffer {
	return &Buffer{tree: chunktree.Empty(cfg)}
}

// FromSlice bulk-loads data into a new virtual buffer.
func FromSlice(data []byte, cfg chunktree.Config) (*Buffer, error) {
	tr, err := chunktree.FromSlice(data, cfg)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Buffer{tree: tr}, nil
}

// Len returns the buffer's current byte length.
func (b *Buffer) Len() int { return b.tree.Len() }

// Read copies up to length bytes starting at offset.
func (b *Buffer) Read(offset, length int) ([]byte, error) {
	return b.tree.Read(offset, length)
}

// Insert splices data into the buffer at offset.
func (b *Buffer) Insert(offset int, data []byte) error {
	tr, err := b.tree.Insert(offset, data)
	if err != nil {
		return err
	}
	b.tree = tr
	return nil
}

// Delete removes the half-open byte range [start, end).
func (b *Buffer) Delete(start, end int) error {
	tr, err := b.tree.Delete(start, end)
	if err != nil {
		return err
	}
	b.tree = tr
	return nil
}

// IterAt returns a restartable, seekable cursor over the buffer's current
// snapshot.
func (b *Buffer) IterAt(offset int) (*ByteCursor, error) {
	cur, err := b.tree.IterAt(offset)
	if err != nil {
		return nil, err
	}
	return &ByteCursor{cur: cur}, nil
}

// ByteCursor is the C2 byte iterator: seekable, bidirectional, O(log N)
// amortised per step. It is a direct pass-through onto chunktree.Cursor,
// which already implements exactly this contract — vbuffer's job is to
// own the tree version a cursor reads from, not to reimplement traversal.
type ByteCursor struct {
	cur *chunktree.Cursor
}

func (c *ByteCursor) Position() int          { return c.cur.Position() }
func (c *ByteCursor) Peek() (byte, bool)     { return c.cur.Peek() }
func (c *ByteCursor) Next() (byte, bool)     { return c.cur.Next() }
func (c *ByteCursor) Prev() (byte, bool)     { return c.cur.Prev() }
func (c *ByteCursor) Seek(offset int) error  { return c.cur.Seek(offset) }

package chunktree

import (
	"testing"

	"github.com/fresh-editor/fresh/internal/test"
)

func TestCursorForwardBackward(t *testing.T) {
	tr, err := FromSlice([]byte("0123456789"), smallCfg)
	test.OK(t, err)

	cur, err := tr.IterAt(0)
	test.OK(t, err)

	b, ok := cur.Peek()
	test.Assert(t, ok && b == '0', "peek at 0, got %q ok=%v", b, ok)

	for i := 1; i <= 9; i++ {
		b, ok := cur.Next()
		test.Assert(t, ok, "next at step %d should succeed", i)
		test.Equals(t, byte('0'+i), b)
	}

	_, ok = cur.Next()
	test.Assert(t, !ok, "next past end should fail")
	test.Equals(t, 10, cur.Position())

	// walking back returns the same bytes in reverse.
	for i := 9; i >= 0; i-- {
		b, ok := cur.Prev()
		test.Assert(t, ok, "prev at step %d should succeed", i)
		test.Equals(t, byte('0'+i), b)
	}

	_, ok = cur.Prev()
	test.Assert(t, !ok, "prev past start should fail")
	test.Equals(t, 0, cur.Position())
}

func TestCursorNextThenPrevReturnsToSamePosition(t *testing.T) {
	tr, err := FromSlice([]byte("hello world"), smallCfg)
	test.OK(t, err)

	cur, err := tr.IterAt(4)
	test.OK(t, err)
	before, _ := cur.Peek()

	cur.Next()
	cur.Prev()

	test.Equals(t, 4, cur.Position())
	after, ok := cur.Peek()
	test.Assert(t, ok, "peek should succeed")
	test.Equals(t, before, after)
}

func TestCursorSeek(t *testing.T) {
	tr, err := FromSlice([]byte("abcdefghij"), smallCfg)
	test.OK(t, err)

	cur, err := tr.IterAt(0)
	test.OK(t, err)

	test.OK(t, cur.Seek(5))
	b, ok := cur.Peek()
	test.Assert(t, ok && b == 'f', "expected 'f' at offset 5, got %q", b)

	err = cur.Seek(999)
	test.Assert(t, err == ErrOutOfBounds, "seek past end should fail")
}

func TestCursorOverLeafBoundaries(t *testing.T) {
	// smallCfg uses 8-byte chunks; 30 bytes forces several leaves.
	data := "ABCDEFGHIJKLMNOPQRSTUVWXYZ1234"
	tr, err := FromSlice([]byte(data), smallCfg)
	test.OK(t, err)

	cur, err := tr.IterAt(0)
	test.OK(t, err)
	got := make([]byte, 0, len(data))
	if b, ok := cur.Peek(); ok {
		got = append(got, b)
	}
	for {
		b, ok := cur.Next()
		if !ok {
			break
		}
		got = append(got, b)
	}
	test.Equals(t, data, string(got))
}

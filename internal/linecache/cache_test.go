package linecache

import (
	"strings"
	"testing"

	"github.com/fresh-editor/fresh/internal/test"
)

// sliceSource is a trivial Source/Cursor pair over an in-memory byte slice,
// standing in for vbuffer during tests so linecache has no import cycle
// back onto C2.
type sliceSource struct{ data []byte }

func (s *sliceSource) Len() int { return len(s.data) }

func (s *sliceSource) IterAt(offset int) (Cursor, error) {
	return &sliceCursor{data: s.data, pos: offset}, nil
}

type sliceCursor struct {
	data []byte
	pos  int
}

func (c *sliceCursor) Position() int { return c.pos }

func (c *sliceCursor) Peek() (byte, bool) {
	if c.pos < 0 || c.pos >= len(c.data) {
		return 0, false
	}
	return c.data[c.pos], true
}

func (c *sliceCursor) Next() (byte, bool) {
	if c.pos >= len(c.data) {
		return 0, false
	}
	c.pos++
	return c.Peek()
}

func referenceLine(content string, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	return strings.Count(content[:offset], "\n")
}

func TestGetLineNumberMatchesReference(t *testing.T) {
	content := strings.Repeat("line\n", 1000)
	src := &sliceSource{data: []byte(content)}
	c := New(src, DefaultConfig())

	for _, offset := range []int{0, 1, 4, 5, 6, 999, 4999, len(content)} {
		got, err := c.GetLineNumber(offset)
		test.OK(t, err)
		test.Equals(t, referenceLine(content, offset), got)
	}
}

func TestGetLineNumberCachesIntermediateLines(t *testing.T) {
	content := "aaa\nbbb\nccc\nddd\n"
	src := &sliceSource{data: []byte(content)}
	c := New(src, DefaultConfig())

	before := c.Len()
	got, err := c.GetLineNumber(12) // start of "ddd"
	test.OK(t, err)
	test.Equals(t, 3, got)
	test.Assert(t, c.Len() > before, "scanning forward should cache intermediate line starts")
}

func TestEstimationPath(t *testing.T) {
	content := strings.Repeat("x", 500*1024)
	src := &sliceSource{data: []byte(content)}
	cfg := Config{EstimationThreshold: 1024, AvgLineBytes: 80}
	c := New(src, cfg)

	got, err := c.GetLineNumber(400 * 1024)
	test.OK(t, err)
	test.Equals(t, (400*1024)/80, got)
}

func TestInvalidateFromKeepsPermanentAnchor(t *testing.T) {
	content := "a\nb\nc\nd\n"
	src := &sliceSource{data: []byte(content)}
	c := New(src, DefaultConfig())
	_, err := c.GetLineNumber(len(content))
	test.OK(t, err)
	test.Assert(t, c.Len() > 1, "expected entries beyond the anchor")

	c.InvalidateFrom(0)
	test.Equals(t, 1, c.Len())

	got, err := c.GetLineNumber(0)
	test.OK(t, err)
	test.Equals(t, 0, got)
}

func TestHandleInsertionShiftsDownstreamEntries(t *testing.T) {
	content := "aaa\nbbb\nccc\n"
	src := &sliceSource{data: []byte(content)}
	c := New(src, DefaultConfig())
	_, err := c.GetLineNumber(len(content))
	test.OK(t, err)

	// insert 4 bytes containing one newline at offset 4 (start of "bbb").
	c.HandleInsertion(4, 4, 1)

	updated := &sliceSource{data: []byte("aaa\nXXX\nbbb\nccc\n")}
	c2 := New(updated, DefaultConfig())
	want, err := c2.GetLineNumber(len(updated.data))
	test.OK(t, err)

	got, err := c.GetLineNumber(len("aaa\nXXX\nbbb\nccc\n"))
	test.OK(t, err)
	test.Equals(t, want, got)
}

func TestHandleDeletionDropsAndShifts(t *testing.T) {
	content := "aaa\nbbb\nccc\nddd\n"
	src := &sliceSource{data: []byte(content)}
	c := New(src, DefaultConfig())
	_, err := c.GetLineNumber(len(content))
	test.OK(t, err)

	// delete "bbb\n" (offset 4, 4 bytes, 1 newline).
	c.HandleDeletion(4, 4, 1)

	remaining := "aaa\nccc\nddd\n"
	remSrc := &sliceSource{data: []byte(remaining)}
	cRef := New(remSrc, DefaultConfig())
	want, err := cRef.GetLineNumber(len(remaining))
	test.OK(t, err)

	got, err := c.GetLineNumber(len(remaining))
	test.OK(t, err)
	test.Equals(t, want, got)
}

func TestPopulatePrewarmsWithoutChangingAnswers(t *testing.T) {
	content := strings.Repeat("line\n", 50)
	src := &sliceSource{data: []byte(content)}
	c := New(src, DefaultConfig())

	test.OK(t, c.Populate(0, 10))
	test.Assert(t, c.Len() > 1, "populate should have cached some line starts")

	got, err := c.GetLineNumber(len(content))
	test.OK(t, err)
	test.Equals(t, referenceLine(content, len(content)), got)
}

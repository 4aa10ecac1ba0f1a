package editor

import (
	"testing"

	"github.com/fresh-editor/fresh/internal/textbuf"
)

func newTestBuffer(t *testing.T, content string) *textbuf.Buffer {
	t.Helper()
	buf, err := textbuf.FromSlice([]byte(content), smallCfg)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return buf
}

func TestRenderLinesExpandsTabs(t *testing.T) {
	buf := newTestBuffer(t, "a\tb")
	v := DefaultViewport()
	v.Height = 1

	lines, err := RenderLines(buf, v, DisplayOptions{TabWidth: 8}, false)
	if err != nil {
		t.Fatalf("RenderLines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	want := "a       b" // 'a' at col 0, tab expands to col 8, then 'b'
	if lines[0].Text != want {
		t.Fatalf("got %q, want %q", lines[0].Text, want)
	}
}

func TestRenderLinesEscapesControlBytesInBinaryView(t *testing.T) {
	buf := newTestBuffer(t, "a\x01b")
	v := DefaultViewport()
	v.Height = 1

	lines, err := RenderLines(buf, v, DisplayOptions{TabWidth: 8}, true)
	if err != nil {
		t.Fatalf("RenderLines: %v", err)
	}
	want := "a<01>b"
	if lines[0].Text != want {
		t.Fatalf("got %q, want %q", lines[0].Text, want)
	}
}

func TestRenderLinesMultipleSourceLines(t *testing.T) {
	buf := newTestBuffer(t, "one\ntwo\nthree\n")
	v := DefaultViewport()
	v.Height = 10

	lines, err := RenderLines(buf, v, DisplayOptions{TabWidth: 8}, false)
	if err != nil {
		t.Fatalf("RenderLines: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	want := []string{"one", "two", "three"}
	for i, w := range want {
		if lines[i].Text != w {
			t.Fatalf("line %d: got %q, want %q", i, lines[i].Text, w)
		}
		if lines[i].Continuation {
			t.Fatalf("line %d: unexpected continuation flag", i)
		}
	}
}

func TestRenderLinesWrapTagsContinuations(t *testing.T) {
	buf := newTestBuffer(t, "abcdefghij")
	v := DefaultViewport()
	v.Height = 10
	v.Width = 4
	v.LineWrapEnabled = true

	lines, err := RenderLines(buf, v, DisplayOptions{TabWidth: 8}, false)
	if err != nil {
		t.Fatalf("RenderLines: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping to produce multiple rows, got %d", len(lines))
	}
	if lines[0].Continuation {
		t.Fatalf("first row should not be a continuation")
	}
	if !lines[1].Continuation {
		t.Fatalf("second row should be tagged as a continuation")
	}
}

func TestRenderLinesRespectsTopByte(t *testing.T) {
	buf := newTestBuffer(t, "one\ntwo\nthree\n")
	v := DefaultViewport()
	v.Height = 10
	v.TopByte = 4 // start of "two"

	lines, err := RenderLines(buf, v, DisplayOptions{TabWidth: 8}, false)
	if err != nil {
		t.Fatalf("RenderLines: %v", err)
	}
	if len(lines) != 2 || lines[0].Text != "two" || lines[1].Text != "three" {
		t.Fatalf("got %+v", lines)
	}
}

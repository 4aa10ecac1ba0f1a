package editor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fresh-editor/fresh/internal/textbuf"
)

// DisplayLine is one rendered row: its text (tabs expanded, control bytes
// escaped), the byte range of the buffer it was produced from, and
// whether it is a wrapped continuation of an earlier source line (the
// renderer suppresses the gutter line number on continuations).
type DisplayLine struct {
	Text         string
	StartByte    int
	EndByte      int
	Continuation bool
	SourceLine   int
}

// BinaryView toggles `<XX>` rendering of unprintable control bytes,
// used when the buffer is believed to be binary rather than text.
type viewOptions struct {
	TabWidth   int
	Width      int
	WrapLines  bool
	BinaryView bool
}

// RenderLines produces the display lines visible in the viewport: one
// entry per source line (or more, if wrapping splits a long line),
// starting at v.TopByte and covering up to v.Height rows.
func RenderLines(buf *textbuf.Buffer, v Viewport, display DisplayOptions, binaryView bool) ([]DisplayLine, error) {
	opts := viewOptions{
		TabWidth:   display.TabWidth,
		Width:      v.Width,
		WrapLines:  v.LineWrapEnabled,
		BinaryView: binaryView,
	}
	if opts.TabWidth <= 0 {
		opts.TabWidth = 8
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}

	startLine, _, err := buf.PositionToLineCol(v.TopByte)
	if err != nil {
		return nil, err
	}

	var out []DisplayLine
	lineStart := v.TopByte
	sourceLine := startLine

	for len(out) < v.Height && (lineStart < buf.Len() || (lineStart == 0 && buf.Len() == 0)) {
		lineEnd, err := lineEndOf(buf, lineStart)
		if err != nil {
			return nil, err
		}
		raw, err := buf.Read(lineStart, lineEnd-lineStart)
		if err != nil {
			return nil, err
		}

		rows := renderRow(raw, opts)
		for i, row := range rows {
			if len(out) >= v.Height {
				break
			}
			out = append(out, DisplayLine{
				Text:         row.text,
				StartByte:    lineStart + row.byteOffset,
				EndByte:      lineStart + row.byteOffset + row.byteLen,
				Continuation: i > 0,
				SourceLine:   sourceLine,
			})
		}

		if lineEnd >= buf.Len() {
			break
		}
		lineStart = lineEnd + 1 // skip the '\n'
		sourceLine++
	}

	return out, nil
}

// lineEndOf returns the offset of the '\n' terminating the line starting
// at lineStart, or the buffer's end for a final line with no trailing
// newline.
func lineEndOf(buf *textbuf.Buffer, lineStart int) (int, error) {
	idx, found, err := buf.FindNextInRange("\n", lineStart, buf.Len())
	if err != nil {
		return 0, err
	}
	if !found {
		return buf.Len(), nil
	}
	return idx, nil
}

type renderedRow struct {
	text       string
	byteOffset int
	byteLen    int
}

// renderRow expands tabs and escapes control bytes, splitting into
// multiple wrapped rows of at most opts.Width display columns when
// opts.WrapLines is set.
func renderRow(line []byte, opts viewOptions) []renderedRow {
	var b strings.Builder
	var rows []renderedRow
	col := 0
	rowStart := 0

	flush := func(end int) {
		rows = append(rows, renderedRow{text: b.String(), byteOffset: rowStart, byteLen: end - rowStart})
		b.Reset()
		col = 0
		rowStart = end
	}

	i := 0
	for i < len(line) {
		c := line[i]

		var piece string
		var byteLen, width int
		switch {
		case c == '\t':
			next := ((col / opts.TabWidth) + 1) * opts.TabWidth
			width = next - col
			piece = strings.Repeat(" ", width)
			byteLen = 1
		case opts.BinaryView && isControlByte(c):
			piece = fmt.Sprintf("<%02X>", c)
			width = len(piece)
			byteLen = 1
		case c < utf8.RuneSelf:
			piece = string(c)
			width = 1
			byteLen = 1
		default:
			r, size := utf8.DecodeRune(line[i:])
			piece = string(r)
			width = 1
			byteLen = size
		}

		if opts.WrapLines && col+width > opts.Width && col > 0 {
			flush(i)
		}

		b.WriteString(piece)
		col += width
		i += byteLen
	}
	flush(len(line))

	if len(rows) == 0 {
		rows = append(rows, renderedRow{text: "", byteOffset: 0, byteLen: 0})
	}
	return rows
}

func isControlByte(c byte) bool {
	return c < 0x20 && c != '\n' || c == 0x7F
}

package textbuf

import "unicode/utf8"

// PositionToLineCol converts a byte offset to its (line, byte_col) pair,
// both 0-indexed. Out-of-range offsets clamp to the buffer's ends.
func (b *Buffer) PositionToLineCol(byteOffset int) (int, int, error) {
	byteOffset = clamp(byteOffset, 0, b.Len())

	line, err := b.lines.GetLineNumber(byteOffset)
	if err != nil {
		return 0, 0, err
	}
	start, err := b.lineStartOffset(byteOffset)
	if err != nil {
		return 0, 0, err
	}
	return line, byteOffset - start, nil
}

// LineColToPosition converts a (line, byte_col) pair to a byte offset.
// A column past the end of the line clamps to the line's end; a line
// past the end of the buffer clamps to the buffer's end.
func (b *Buffer) LineColToPosition(line, col int) (int, error) {
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}

	lineStart, err := b.scanToLineStart(line)
	if err != nil {
		return 0, err
	}
	lineEnd, err := b.lineEndOffset(lineStart)
	if err != nil {
		return 0, err
	}

	target := lineStart + col
	if target > lineEnd {
		target = lineEnd
	}
	return clamp(target, 0, b.Len()), nil
}

// scanToLineStart walks forward from byte 0 counting newlines until it
// reaches the requested line, returning that line's starting offset.
func (b *Buffer) scanToLineStart(line int) (int, error) {
	if line <= 0 {
		return 0, nil
	}
	length := b.Len()
	cur, err := b.vbuf.IterAt(0)
	if err != nil {
		return 0, err
	}

	currentLine := 0
	lineStart := 0
	pos := 0

	if by, ok := cur.Peek(); ok && pos < length {
		if by == '\n' {
			currentLine++
			lineStart = pos + 1
		}
		pos++
	}
	for currentLine < line && pos < length {
		by, ok := cur.Next()
		if !ok {
			break
		}
		pos++
		if by == '\n' {
			currentLine++
			lineStart = pos
		}
	}
	return lineStart, nil
}

// lineStartOffset walks backward from byteOffset to the start of its
// line (the byte right after the preceding '\n', or 0).
func (b *Buffer) lineStartOffset(byteOffset int) (int, error) {
	cur, err := b.vbuf.IterAt(byteOffset)
	if err != nil {
		return 0, err
	}
	for cur.Position() > 0 {
		by, ok := cur.Prev()
		if !ok {
			break
		}
		if by == '\n' {
			return cur.Position() + 1, nil
		}
	}
	return 0, nil
}

// lineEndOffset walks forward from lineStart to the offset of that
// line's terminating '\n' (or the buffer's end, for the last line).
func (b *Buffer) lineEndOffset(lineStart int) (int, error) {
	length := b.Len()
	cur, err := b.vbuf.IterAt(lineStart)
	if err != nil {
		return 0, err
	}
	if by, ok := cur.Peek(); ok && by == '\n' {
		return lineStart, nil
	}
	pos := lineStart
	for pos < length {
		by, ok := cur.Next()
		if !ok {
			break
		}
		pos++
		if by == '\n' {
			return pos, nil
		}
	}
	return length, nil
}

func isUTF8Continuation(b byte) bool { return b&0xC0 == 0x80 }

// NextCharBoundary steps from p, a UTF-8 boundary, to the start of the
// following code point: up to 4 bytes forward until a non-continuation
// byte is found, falling back to p+1 on malformed input.
func (b *Buffer) NextCharBoundary(p int) (int, error) {
	length := b.Len()
	if p >= length {
		return length, nil
	}
	cur, err := b.vbuf.IterAt(p)
	if err != nil {
		return 0, err
	}
	for i := 0; i < utf8.UTFMax; i++ {
		by, ok := cur.Next()
		if !ok {
			return length, nil
		}
		if !isUTF8Continuation(by) {
			return cur.Position(), nil
		}
	}
	return clamp(p+1, 0, length), nil
}

// PrevCharBoundary is the mirror image of NextCharBoundary.
func (b *Buffer) PrevCharBoundary(p int) (int, error) {
	if p <= 0 {
		return 0, nil
	}
	cur, err := b.vbuf.IterAt(p)
	if err != nil {
		return 0, err
	}
	for i := 0; i < utf8.UTFMax; i++ {
		by, ok := cur.Prev()
		if !ok {
			return 0, nil
		}
		if !isUTF8Continuation(by) {
			return cur.Position(), nil
		}
	}
	return clamp(p-1, 0, b.Len()), nil
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

// NextWordBoundary walks forward from p to the next word/non-word
// transition.
func (b *Buffer) NextWordBoundary(p int) (int, error) {
	length := b.Len()
	if p >= length {
		return length, nil
	}
	cur, err := b.vbuf.IterAt(p)
	if err != nil {
		return 0, err
	}
	first, ok := cur.Peek()
	if !ok {
		return length, nil
	}
	inWord := isWordByte(first)

	pos := p
	for pos < length {
		by, ok := cur.Next()
		if !ok {
			return length, nil
		}
		pos++
		if isWordByte(by) != inWord {
			return pos, nil
		}
	}
	return length, nil
}

// PrevWordBoundary walks backward from p to the previous word/non-word
// transition.
func (b *Buffer) PrevWordBoundary(p int) (int, error) {
	if p <= 0 {
		return 0, nil
	}
	cur, err := b.vbuf.IterAt(p)
	if err != nil {
		return 0, err
	}
	first, ok := cur.Prev()
	if !ok {
		return 0, nil
	}
	inWord := isWordByte(first)
	pos := cur.Position()

	for pos > 0 {
		by, ok := cur.Prev()
		if !ok {
			return 0, nil
		}
		pos--
		if isWordByte(by) != inWord {
			return pos + 1, nil
		}
	}
	return 0, nil
}

// ByteToLSP converts a byte offset to an LSP (line, utf16_code_unit)
// position.
func (b *Buffer) ByteToLSP(byteOffset int) (int, int, error) {
	byteOffset = clamp(byteOffset, 0, b.Len())

	line, err := b.lines.GetLineNumber(byteOffset)
	if err != nil {
		return 0, 0, err
	}
	lineStart, err := b.lineStartOffset(byteOffset)
	if err != nil {
		return 0, 0, err
	}
	prefix, err := b.vbuf.Read(lineStart, byteOffset-lineStart)
	if err != nil {
		return 0, 0, err
	}

	units := 0
	for _, r := range string(prefix) {
		units += utf16Width(r)
	}
	return line, units, nil
}

// LSPToByte converts an LSP (line, utf16_code_unit) position to a byte
// offset.
func (b *Buffer) LSPToByte(line, utf16Col int) (int, error) {
	lineStart, err := b.LineColToPosition(line, 0)
	if err != nil {
		return 0, err
	}
	lineEnd, err := b.lineEndOffset(lineStart)
	if err != nil {
		return 0, err
	}
	lineBytes, err := b.vbuf.Read(lineStart, lineEnd-lineStart)
	if err != nil {
		return 0, err
	}

	s := string(lineBytes)
	units := 0
	for i, r := range s {
		if units >= utf16Col {
			return lineStart + i, nil
		}
		units += utf16Width(r)
	}
	return lineStart + len(s), nil
}

func utf16Width(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

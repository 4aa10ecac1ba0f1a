package textbuf

import (
	"bytes"
	"regexp"

	"github.com/fresh-editor/fresh/internal/errors"
)

const (
	literalSearchWindow = 4 * 1024
	regexSearchWindow   = 64 * 1024
	regexSearchOverlap  = 4 * 1024
)

// FindNext scans forward from start for the next literal occurrence of
// pattern, wrapping around to [0, start) on miss. The second return value
// is false when no occurrence exists anywhere in the buffer.
func (b *Buffer) FindNext(pattern string, start int) (int, bool, error) {
	pat := []byte(pattern)
	if len(pat) == 0 {
		return 0, false, nil
	}
	length := b.Len()
	if start < 0 {
		start = 0
	}
	if start > length {
		start = length
	}

	idx, err := b.scanLiteralRange(pat, start, length)
	if err != nil {
		return 0, false, err
	}
	if idx >= 0 {
		return idx, true, nil
	}

	idx, err = b.scanLiteralRange(pat, 0, start)
	if err != nil {
		return 0, false, err
	}
	return idx, idx >= 0, nil
}

// FindNextInRange scans [start, end) for pattern without wrap-around.
func (b *Buffer) FindNextInRange(pattern string, start, end int) (int, bool, error) {
	pat := []byte(pattern)
	if len(pat) == 0 {
		return 0, false, nil
	}
	idx, err := b.scanLiteralRange(pat, start, end)
	return idx, idx >= 0, err
}

// scanLiteralRange streams [from, to) in overlapping literalSearchWindow
// windows (pattern.len()-1 bytes of overlap) so a match straddling a
// window boundary is never missed, and is reported by exactly one window:
// a match counts for a window only if its start falls within that
// window's non-overlap "fresh" zone [pos, winEnd).
func (b *Buffer) scanLiteralRange(pattern []byte, from, to int) (int, error) {
	if len(pattern) == 0 {
		return -1, nil
	}
	if to > b.Len() {
		to = b.Len()
	}
	if from >= to {
		return -1, nil
	}

	overlap := len(pattern) - 1
	pos := from
	for pos < to {
		winEnd := pos + literalSearchWindow
		if winEnd > to {
			winEnd = to
		}
		readEnd := winEnd + overlap
		if readEnd > to {
			readEnd = to
		}

		chunk, err := b.vbuf.Read(pos, readEnd-pos)
		if err != nil {
			return -1, err
		}

		if idx := freshIndex(chunk, pattern, winEnd-pos); idx >= 0 {
			return pos + idx, nil
		}
		pos = winEnd
	}
	return -1, nil
}

// freshIndex finds the lowest i such that chunk[i:i+len(pattern)] ==
// pattern and i < freshLimit.
func freshIndex(chunk, pattern []byte, freshLimit int) int {
	if len(pattern) > len(chunk) {
		return -1
	}
	idx := 0
	for idx <= len(chunk)-len(pattern) {
		rel := bytes.Index(chunk[idx:], pattern)
		if rel < 0 {
			return -1
		}
		start := idx + rel
		if start < freshLimit {
			return start
		}
		idx = start + 1
	}
	return -1
}

// CompileRegex compiles pattern, surfacing compile errors per the
// contract's failure model.
func CompileRegex(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(err, "textbuf: invalid regular expression")
	}
	return re, nil
}

// FindNextRegex scans forward from start for re, wrapping around on miss.
// Patterns longer than regexSearchOverlap bytes are not guaranteed to
// match across a window boundary — the contract accepts this trade-off
// in exchange for never materialising the whole buffer.
func (b *Buffer) FindNextRegex(re *regexp.Regexp, start int) (int, int, bool, error) {
	length := b.Len()
	if start < 0 {
		start = 0
	}
	if start > length {
		start = length
	}

	s, e, err := b.scanRegexRange(re, start, length)
	if err != nil {
		return 0, 0, false, err
	}
	if s >= 0 {
		return s, e, true, nil
	}

	s, e, err = b.scanRegexRange(re, 0, start)
	if err != nil {
		return 0, 0, false, err
	}
	return s, e, s >= 0, nil
}

// FindNextRegexInRange scans [start, end) for re without wrap-around.
func (b *Buffer) FindNextRegexInRange(re *regexp.Regexp, start, end int) (int, int, bool, error) {
	s, e, err := b.scanRegexRange(re, start, end)
	return s, e, s >= 0, err
}

func (b *Buffer) scanRegexRange(re *regexp.Regexp, from, to int) (int, int, error) {
	if to > b.Len() {
		to = b.Len()
	}
	if from >= to {
		return -1, -1, nil
	}

	pos := from
	for pos < to {
		winEnd := pos + regexSearchWindow
		if winEnd > to {
			winEnd = to
		}
		readEnd := winEnd + regexSearchOverlap
		if readEnd > to {
			readEnd = to
		}

		chunk, err := b.vbuf.Read(pos, readEnd-pos)
		if err != nil {
			return -1, -1, err
		}

		freshLimit := winEnd - pos
		for _, loc := range re.FindAllIndex(chunk, -1) {
			if loc[0] < freshLimit {
				return pos + loc[0], pos + loc[1], nil
			}
		}
		pos = winEnd
	}
	return -1, -1, nil
}

// ReplaceAll replaces every non-overlapping literal occurrence of pattern
// with repl and returns the number of replacements made. Matches are
// discovered left to right (advancing by len(pattern) past each hit) and
// then applied in reverse order so earlier edits never shift the offsets
// of matches still to be applied.
func (b *Buffer) ReplaceAll(pattern, repl string) (int, error) {
	pat := []byte(pattern)
	if len(pat) == 0 {
		return 0, nil
	}

	var matches []int
	pos := 0
	length := b.Len()
	for pos <= length {
		idx, err := b.scanLiteralRange(pat, pos, length)
		if err != nil {
			return 0, err
		}
		if idx < 0 {
			break
		}
		matches = append(matches, idx)
		pos = idx + len(pat)
	}

	for i := len(matches) - 1; i >= 0; i-- {
		if err := b.ReplaceRange(matches[i], matches[i]+len(pat), repl); err != nil {
			return 0, err
		}
	}
	return len(matches), nil
}

// ReplaceAllRegex replaces every match of re with replTemplate (which may
// reference captures, e.g. "$1"), materialising the buffer's content to
// do the capture expansion, per the contract.
func (b *Buffer) ReplaceAllRegex(re *regexp.Regexp, replTemplate string) (int, error) {
	content, err := b.Bytes()
	if err != nil {
		return 0, err
	}

	matches := re.FindAllIndex(content, -1)
	if len(matches) == 0 {
		return 0, nil
	}

	replaced := re.ReplaceAll(content, []byte(replTemplate))
	if err := b.ReplaceRange(0, b.Len(), string(replaced)); err != nil {
		return 0, err
	}
	return len(matches), nil
}

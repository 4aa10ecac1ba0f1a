package textbuf

import (
	"strings"
	"testing"

	"github.com/fresh-editor/fresh/internal/test"
)

// TestStreamingLiteralSearchAcrossChunkBoundary is the concrete scenario
// from spec.md §8: a match must be found even though it straddles many
// internal chunk boundaries.
func TestStreamingLiteralSearchAcrossChunkBoundary(t *testing.T) {
	content := strings.Repeat("x", 5000) + "hello world" + strings.Repeat("y", 5000)
	buf, err := FromSlice([]byte(content), smallCfg)
	test.OK(t, err)

	re, err := CompileRegex(`hello\s+world`)
	test.OK(t, err)
	start, _, found, err := buf.FindNextRegex(re, 0)
	test.OK(t, err)
	test.Assert(t, found, "expected a match")
	test.Equals(t, 5000, start)
}

// TestFindNextEquivalence is spec.md §8 property 3.
func TestFindNextEquivalence(t *testing.T) {
	content := strings.Repeat("abcxyzabc", 200) + "NEEDLE" + strings.Repeat("qrs", 100)
	buf, err := FromSlice([]byte(content), smallCfg)
	test.OK(t, err)

	for _, start := range []int{0, 5, len(content) - 1, len(content)} {
		got, found, err := buf.FindNext("NEEDLE", start)
		test.OK(t, err)
		want := naiveFindNext(content, "NEEDLE", start)
		test.Equals(t, want >= 0, found)
		if want >= 0 {
			test.Equals(t, want, got)
		}
	}
}

func TestFindNextWrapsAround(t *testing.T) {
	content := "needle-first ... needle-second"
	buf, err := FromSlice([]byte(content), smallCfg)
	test.OK(t, err)

	// past both occurrences (0 and 17): forward scan misses, wrap finds
	// the earliest occurrence in the [0, start) prefix, which is 0.
	got, found, err := buf.FindNext("needle", 25)
	test.OK(t, err)
	test.Assert(t, found, "expected to find needle wrapping around")
	test.Equals(t, 0, got)
}

func TestFindNextInRangeDoesNotWrap(t *testing.T) {
	buf, err := FromSlice([]byte("needle ... needle"), smallCfg)
	test.OK(t, err)
	_, found, err := buf.FindNextInRange("needle", 5, 11)
	test.OK(t, err)
	test.Assert(t, !found, "range-scoped search must not wrap or find matches outside its range")
}

func naiveFindNext(content, pattern string, start int) int {
	if start > len(content) {
		start = len(content)
	}
	if idx := strings.Index(content[start:], pattern); idx >= 0 {
		return start + idx
	}
	if idx := strings.Index(content[:start], pattern); idx >= 0 {
		return idx
	}
	return -1
}

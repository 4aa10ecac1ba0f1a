package highlight

import (
	"testing"

	"github.com/fresh-editor/fresh/internal/chunktree"
	"github.com/fresh-editor/fresh/internal/textbuf"
)

var smallCfg = chunktree.Config{ChunkSize: 16, BranchingFactor: 4}

func newGoBuffer(t *testing.T, content string) *textbuf.Buffer {
	t.Helper()
	buf, err := textbuf.FromSlice([]byte(content), smallCfg)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return buf
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]Language{
		"main.go":   LangGo,
		"script.py": LangPython,
		"app.js":    LangJavaScript,
		"lib.c":     LangC,
		"lib.cpp":   LangCpp,
		"run.sh":    LangBash,
		"notes.txt": LangUnknown,
	}
	for path, want := range cases {
		if got := DetectLanguage(path); got != want {
			t.Errorf("DetectLanguage(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestHighlightViewportFindsKeywordAndString(t *testing.T) {
	h := New(LangGo, DefaultConfig())
	if h == nil {
		t.Fatal("New returned nil for LangGo")
	}
	buf := newGoBuffer(t, `package main

func main() {
	x := "hello"
	_ = x
}
`)

	spans, err := h.HighlightViewport(buf, 0, buf.Len())
	if err != nil {
		t.Fatalf("HighlightViewport: %v", err)
	}
	if len(spans) == 0 {
		t.Fatal("expected at least one span")
	}

	var sawString, sawKeyword bool
	for _, s := range spans {
		text, _ := buf.Read(s.Start, s.End-s.Start)
		if string(text) == `"hello"` && s.Color == "green" {
			sawString = true
		}
		if string(text) == "func" && s.Color == "red" {
			sawKeyword = true
		}
	}
	if !sawString {
		t.Error("expected a string span covering \"hello\"")
	}
	if !sawKeyword {
		t.Error("expected a keyword span covering func")
	}
}

func TestHighlightViewportCacheHitFiltersToSubrange(t *testing.T) {
	h := New(LangGo, DefaultConfig())
	if h == nil {
		t.Fatal("New returned nil for LangGo")
	}
	buf := newGoBuffer(t, "package main\n\nfunc main() {}\n")

	full, err := h.HighlightViewport(buf, 0, buf.Len())
	if err != nil {
		t.Fatalf("HighlightViewport: %v", err)
	}
	if len(full) == 0 {
		t.Fatal("expected spans")
	}

	sub, err := h.HighlightViewport(buf, 0, 7) // "package"
	if err != nil {
		t.Fatalf("HighlightViewport sub: %v", err)
	}
	for _, s := range sub {
		if s.Start >= 7 || s.End <= 0 {
			t.Fatalf("span %+v not within requested sub-range", s)
		}
	}
}

func TestInvalidateClearsCacheOnIntersectingEdit(t *testing.T) {
	h := New(LangGo, DefaultConfig())
	if h == nil {
		t.Fatal("New returned nil for LangGo")
	}
	buf := newGoBuffer(t, "package main\n")

	if _, err := h.HighlightViewport(buf, 0, buf.Len()); err != nil {
		t.Fatalf("HighlightViewport: %v", err)
	}
	if !h.valid {
		t.Fatal("expected cache to be valid after a successful highlight")
	}

	h.Invalidate(3, 5)
	if h.valid {
		t.Fatal("expected cache to be invalidated by an intersecting edit")
	}
}

func TestInvalidateIgnoresNonIntersectingEdit(t *testing.T) {
	h := New(LangGo, DefaultConfig())
	if h == nil {
		t.Fatal("New returned nil for LangGo")
	}
	buf := newGoBuffer(t, "package main\n\nfunc main() {}\n")

	if _, err := h.HighlightViewport(buf, 0, 12); err != nil {
		t.Fatalf("HighlightViewport: %v", err)
	}
	h.Invalidate(1000, 2000)
	if !h.valid {
		t.Fatal("cache should survive a non-intersecting edit")
	}
}

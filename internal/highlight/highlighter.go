// Package highlight implements the viewport-scoped incremental syntax
// highlighter (C5 sub-component): a single cached highlighted range that
// serves viewport requests by filtering on a hit and falls back to a
// bounded re-parse on a miss, grounded on tree-sitter grammars loaded
// through github.com/smacker/go-tree-sitter.
package highlight

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/fresh-editor/fresh/internal/errors"
	"github.com/fresh-editor/fresh/internal/textbuf"
)

// Span is one highlighted byte range and the colour it should render in.
type Span struct {
	Start int
	End   int
	Color string
}

// Config tunes the cache-miss re-parse window.
type Config struct {
	ContextBytes  int // extension applied on each side of a miss (default 1 KiB)
	MaxParseBytes int // hard cap on the re-parse window (default 100 KiB)
}

func DefaultConfig() Config {
	return Config{ContextBytes: 1024, MaxParseBytes: 100 * 1024}
}

// grammarCache memoises parsed sitter.Language handles by Language so
// repeated highlighters for the same language (e.g. many open Go files)
// share one grammar handle instead of reloading it.
var grammarCache, _ = lru.New[Language, *sitter.Language](32)

func loadGrammar(lang Language) *sitter.Language {
	if g, ok := grammarCache.Get(lang); ok {
		return g
	}
	g := lang.Grammar()
	if g != nil {
		grammarCache.Add(lang, g)
	}
	return g
}

// Highlighter owns one tree-sitter parser instance and a single cached
// span range for one buffer. It never shares its parser or tree across
// languages or buffers.
type Highlighter struct {
	mu sync.Mutex

	lang    Language
	grammar *sitter.Language
	query   *sitter.Query
	colors  map[string]string
	parser  *sitter.Parser

	cfg Config

	cacheStart int
	cacheEnd   int
	spans      []Span
	valid      bool
}

// New returns a highlighter for lang, or nil if lang has no grammar wired
// (the caller should render with no highlighting in that case).
func New(lang Language, cfg Config) *Highlighter {
	grammar := loadGrammar(lang)
	if grammar == nil {
		return nil
	}
	queryStr := lang.HighlightsQuery()
	q, err := sitter.NewQuery([]byte(queryStr), grammar)
	if err != nil {
		return nil
	}
	parser := sitter.NewParser()
	parser.SetLanguage(grammar)

	return &Highlighter{
		lang:    lang,
		grammar: grammar,
		query:   q,
		colors:  defaultColorTable(),
		parser:  parser,
		cfg:     cfg,
	}
}

// defaultColorTable maps a query capture name to a terminal colour name.
// Table-driven per spec.md's contract; the concrete colour strings are
// resolved to terminal escapes by the renderer, not here.
func defaultColorTable() map[string]string {
	return map[string]string{
		"comment":  "bright_black",
		"string":   "green",
		"number":   "magenta",
		"function": "yellow",
		"type":     "blue",
		"keyword":  "red",
	}
}

// Invalidate clears the whole cache if [start, end) intersects the
// currently cached range.
func (h *Highlighter) Invalidate(start, end int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.valid {
		return
	}
	if start < h.cacheEnd && end > h.cacheStart {
		h.valid = false
		h.spans = nil
	}
}

// HighlightViewport returns highlight spans covering [start, end). On a
// cache hit it filters the cached spans; on a miss it re-parses a window
// extended by cfg.ContextBytes on each side, subject to cfg.MaxParseBytes
// — beyond that it returns no spans rather than block the renderer.
func (h *Highlighter) HighlightViewport(buf *textbuf.Buffer, start, end int) ([]Span, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if start < 0 {
		start = 0
	}
	if end > buf.Len() {
		end = buf.Len()
	}
	if start >= end {
		return nil, nil
	}

	if h.valid && start >= h.cacheStart && end <= h.cacheEnd {
		return filterSpans(h.spans, start, end), nil
	}

	winStart := start - h.cfg.ContextBytes
	if winStart < 0 {
		winStart = 0
	}
	winEnd := end + h.cfg.ContextBytes
	if winEnd > buf.Len() {
		winEnd = buf.Len()
	}
	if winEnd-winStart > h.cfg.MaxParseBytes {
		return nil, nil
	}

	content, err := buf.Read(winStart, winEnd-winStart)
	if err != nil {
		return nil, errors.Wrap(err, "highlight: read viewport")
	}

	tree, err := h.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, errors.Wrap(err, "highlight: parse")
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(h.query, tree.RootNode())

	var spans []Span
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, cap := range match.Captures {
			name := h.query.CaptureNameForId(cap.Index)
			color, known := h.colors[name]
			if !known {
				continue
			}
			spans = append(spans, Span{
				Start: winStart + int(cap.Node.StartByte()),
				End:   winStart + int(cap.Node.EndByte()),
				Color: color,
			})
		}
	}

	h.cacheStart = winStart
	h.cacheEnd = winEnd
	h.spans = spans
	h.valid = true

	return filterSpans(spans, start, end), nil
}

func filterSpans(spans []Span, start, end int) []Span {
	var out []Span
	for _, s := range spans {
		if s.Start < end && s.End > start {
			out = append(out, s)
		}
	}
	return out
}

// Package indent implements tree-sitter query-based auto-indent with a
// pattern-matching fallback for incomplete syntax, and a final
// copy-previous-indent fallback. Parser and query instances are cached
// per language and never shared with the highlighter's own instances.
package indent

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/fresh-editor/fresh/internal/highlight"
	"github.com/fresh-editor/fresh/internal/textbuf"
)

// maxParseBytes bounds how much context before the cursor gets parsed for
// a tree-sitter-based indent calculation.
const maxParseBytes = 2000

type langConfig struct {
	parser *sitter.Parser
	query  *sitter.Query
}

// Calculator computes the indent (in columns) for a new line, per
// language, caching a parser+query pair per language on first use.
type Calculator struct {
	mu      sync.Mutex
	configs map[highlight.Language]*langConfig
	cache   *lru.Cache[highlight.Language, *langConfig]
}

// NewCalculator returns a ready Calculator.
func NewCalculator() *Calculator {
	cache, _ := lru.New[highlight.Language, *langConfig](16)
	return &Calculator{cache: cache}
}

func (c *Calculator) getConfig(lang highlight.Language) *langConfig {
	if cfg, ok := c.cache.Get(lang); ok {
		return cfg
	}

	grammar := lang.Grammar()
	if grammar == nil {
		return nil
	}
	queryStr := lang.IndentsQuery()
	if queryStr == "" {
		return nil
	}
	q, err := sitter.NewQuery([]byte(queryStr), grammar)
	if err != nil {
		return nil
	}
	parser := sitter.NewParser()
	parser.SetLanguage(grammar)

	cfg := &langConfig{parser: parser, query: q}
	c.cache.Add(lang, cfg)
	return cfg
}

// Calculate returns the column to indent a new line started at position,
// trying the tree-sitter query first, then a bracket/colon pattern
// fallback, then simply copying the current line's indent.
func (c *Calculator) Calculate(buf *textbuf.Buffer, position int, lang highlight.Language, tabSize int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tabSize <= 0 {
		tabSize = 4
	}

	if indent, ok, err := c.calculateTreeSitter(buf, position, lang, tabSize); err != nil {
		return 0, err
	} else if ok {
		return indent, nil
	}

	if indent, ok, err := calculatePattern(buf, position, tabSize); err != nil {
		return 0, err
	} else if ok {
		return indent, nil
	}

	return currentLineIndent(buf, position)
}

func (c *Calculator) calculateTreeSitter(buf *textbuf.Buffer, position int, lang highlight.Language, tabSize int) (int, bool, error) {
	cfg := c.getConfig(lang)
	if cfg == nil {
		return 0, false, nil
	}

	parseStart := position - maxParseBytes
	if parseStart < 0 {
		parseStart = 0
	}
	if parseStart >= position {
		return 0, false, nil
	}

	// The byte at the cursor is parsed too, so a closing bracket that sits
	// there can match a @dedent capture starting exactly at the cursor.
	readEnd := position + 1
	if readEnd > buf.Len() {
		readEnd = buf.Len()
	}
	source, err := buf.Read(parseStart, readEnd-parseStart)
	if err != nil {
		return 0, false, err
	}

	tree, err := cfg.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return 0, false, err
	}
	defer tree.Close()

	indentIdx, dedentIdx := -1, -1
	for i := 0; i < int(cfg.query.CaptureCount()); i++ {
		switch cfg.query.CaptureNameForId(uint32(i)) {
		case "indent":
			indentIdx = i
		case "dedent":
			dedentIdx = i
		}
	}

	cursorOffset := position - parseStart

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(cfg.query, tree.RootNode())

	delta := 0
	found := false
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, cap := range match.Captures {
			nodeStart := int(cap.Node.StartByte())
			nodeEnd := int(cap.Node.EndByte())
			idx := int(cap.Index)

			if indentIdx >= 0 && idx == indentIdx {
				if nodeStart < cursorOffset && cursorOffset <= nodeEnd {
					delta++
					found = true
				}
			}
			if dedentIdx >= 0 && idx == dedentIdx {
				if cursorOffset == nodeStart {
					delta--
					found = true
				}
			}
		}
	}

	if !found {
		return 0, false, nil
	}

	base, err := currentLineIndent(buf, position)
	if err != nil {
		return 0, false, err
	}
	final := base + delta*tabSize
	if final < 0 {
		final = 0
	}
	return final, true, nil
}

// calculatePattern checks whether the line being left ends (ignoring
// trailing whitespace) with an opening bracket or a colon, and if so
// indents one level further than that line.
func calculatePattern(buf *textbuf.Buffer, position, tabSize int) (int, bool, error) {
	if position == 0 {
		return 0, false, nil
	}

	base, err := currentLineIndent(buf, position)
	if err != nil {
		return 0, false, err
	}

	lineStart, err := lineStartOf(buf, position)
	if err != nil {
		return 0, false, err
	}
	line, err := buf.Read(lineStart, position-lineStart)
	if err != nil {
		return 0, false, err
	}

	last := byte(0)
	for i := len(line) - 1; i >= 0; i-- {
		b := line[i]
		if b == ' ' || b == '\t' || b == '\r' {
			continue
		}
		last = b
		break
	}

	switch last {
	case '{', '[', '(':
		return base + tabSize, true, nil
	case ':':
		return base + tabSize, true, nil
	default:
		return 0, false, nil
	}
}

// currentLineIndent counts the leading spaces/tabs of the line containing
// position, expanding tabs to one column each (matching the original's
// "count of leading whitespace bytes" semantics).
func currentLineIndent(buf *textbuf.Buffer, position int) (int, error) {
	lineStart, err := lineStartOf(buf, position)
	if err != nil {
		return 0, err
	}
	lineEndGuess := position
	if lineEndGuess < lineStart {
		lineEndGuess = lineStart
	}
	content, err := buf.Read(lineStart, lineEndGuess-lineStart)
	if err != nil {
		return 0, err
	}

	indent := 0
	for _, b := range content {
		if b == ' ' || b == '\t' {
			indent++
			continue
		}
		break
	}
	return indent, nil
}

func lineStartOf(buf *textbuf.Buffer, position int) (int, error) {
	line, _, err := buf.PositionToLineCol(position)
	if err != nil {
		return 0, err
	}
	return buf.LineColToPosition(line, 0)
}

// Package linecache maps byte offsets to 0-indexed line numbers (C3). It is
// an ordered cache keyed by byte offset, not a full index: entries are
// populated lazily as queries touch them and invalidated precisely on
// edit, so a huge file never pays for a line index it never visits.
package linecache

import "sort"

// Cursor is the minimal forward-scanning capability the cache needs from
// whatever byte source it sits on. It mirrors vbuffer.ByteCursor's
// Position/Next pair without importing vbuffer directly, so the cache has
// no dependency on C2's concrete type.
type Cursor interface {
	Position() int
	Peek() (byte, bool)
	Next() (byte, bool)
}

// Source supplies cursors positioned at an arbitrary byte offset, plus the
// source's total length.
type Source interface {
	Len() int
	IterAt(offset int) (Cursor, error)
}

const (
	// DefaultEstimationThreshold is the distance (in bytes) from the
	// nearest cached anchor beyond which get_line_number stops iterating
	// precisely and returns an estimate instead.
	DefaultEstimationThreshold = 100 * 1024
	// DefaultAvgLineBytes is the assumed average line length used to
	// turn a byte distance into an estimated line count.
	DefaultAvgLineBytes = 80
)

// Config tunes the estimation path.
type Config struct {
	EstimationThreshold int
	AvgLineBytes        int
}

// DefaultConfig returns the source's tuning values.
func DefaultConfig() Config {
	return Config{
		EstimationThreshold: DefaultEstimationThreshold,
		AvgLineBytes:        DefaultAvgLineBytes,
	}
}

type entry struct {
	offset int
	line   int
	// estimated marks an entry produced by the estimation path rather
	// than precise scanning; it is still a valid cache entry (future
	// lookups may treat it as an anchor) but callers that need an exact
	// count should be aware the value may be approximate.
	estimated bool
}

// Cache is the line-number cache layered over a byte source. Entry 0 is
// permanently {offset: 0, line: 0} — it is never invalidated, matching the
// invariant that byte 0 always starts line 0.
type Cache struct {
	cfg     Config
	src     Source
	entries []entry // sorted ascending by offset
	memo    memo
}

// New creates a cache over src with the given tuning.
func New(src Source, cfg Config) *Cache {
	return &Cache{
		cfg:     cfg,
		src:     src,
		entries: []entry{{offset: 0, line: 0}},
	}
}

func (c *Cache) floorIndex(offset int) int {
	idx := sort.Search(len(c.entries), func(i int) bool { return c.entries[i].offset > offset })
	if idx == 0 {
		return 0
	}
	return idx - 1
}

func (c *Cache) insertEntry(e entry) {
	idx := sort.Search(len(c.entries), func(i int) bool { return c.entries[i].offset >= e.offset })
	if idx < len(c.entries) && c.entries[idx].offset == e.offset {
		if !c.entries[idx].estimated || e.estimated {
			c.entries[idx] = e
		}
		return
	}
	c.entries = append(c.entries, entry{})
	copy(c.entries[idx+1:], c.entries[idx:])
	c.entries[idx] = e
}

// GetLineNumber returns the 0-indexed line number containing byteOffset.
func (c *Cache) GetLineNumber(byteOffset int) (int, error) {
	if byteOffset <= 0 {
		return 0, nil
	}
	if line, ok := c.memo.get(byteOffset); ok {
		return line, nil
	}

	idx := c.floorIndex(byteOffset)
	anchor := c.entries[idx]
	if anchor.offset == byteOffset {
		c.memo.put(byteOffset, anchor.line)
		return anchor.line, nil
	}

	distance := byteOffset - anchor.offset
	if distance > c.cfg.EstimationThreshold {
		avg := c.cfg.AvgLineBytes
		if avg <= 0 {
			avg = DefaultAvgLineBytes
		}
		estimate := anchor.line + distance/avg
		c.insertEntry(entry{offset: byteOffset, line: estimate, estimated: true})
		c.memo.put(byteOffset, estimate)
		return estimate, nil
	}

	line, err := c.scanTo(anchor, byteOffset)
	if err != nil {
		return 0, err
	}
	c.memo.put(byteOffset, line)
	return line, nil
}

// scanTo walks bytes forward from anchor, caching every line start it
// passes, and returns the line number at target.
func (c *Cache) scanTo(anchor entry, target int) (int, error) {
	cur, err := c.src.IterAt(anchor.offset)
	if err != nil {
		return 0, err
	}

	pos := anchor.offset
	line := anchor.line

	advance := func(b byte, ok bool) bool {
		if !ok {
			return false
		}
		pos++
		if b == '\n' {
			line++
			c.insertEntry(entry{offset: pos, line: line})
		}
		return true
	}

	if pos < target {
		b, ok := cur.Peek()
		if !advance(b, ok) {
			return line, nil
		}
	}
	for pos < target {
		b, ok := cur.Next()
		if !advance(b, ok) {
			break
		}
	}
	return line, nil
}

// Populate pre-warms the cache for lineCount lines starting at the line
// containing startByte — typically called once per redraw for the visible
// viewport so subsequent per-line lookups hit the cache.
func (c *Cache) Populate(startByte, lineCount int) error {
	if lineCount <= 0 {
		return nil
	}
	idx := c.floorIndex(startByte)
	anchor := c.entries[idx]

	cur, err := c.src.IterAt(anchor.offset)
	if err != nil {
		return err
	}

	pos := anchor.offset
	line := anchor.line
	cached := 0

	advance := func(b byte, ok bool) bool {
		if !ok {
			return false
		}
		pos++
		if b == '\n' {
			line++
			c.insertEntry(entry{offset: pos, line: line})
			if pos >= startByte {
				cached++
			}
		}
		return true
	}

	if b, ok := cur.Peek(); pos < c.src.Len() {
		if !advance(b, ok) {
			return nil
		}
	}
	for cached < lineCount {
		b, ok := cur.Next()
		if !advance(b, ok) {
			break
		}
	}
	return nil
}

// InvalidateFrom drops every cached entry at or above byteOffset, except
// the permanent anchor at offset 0.
func (c *Cache) InvalidateFrom(byteOffset int) {
	idx := sort.Search(len(c.entries), func(i int) bool { return c.entries[i].offset >= byteOffset })
	if idx == 0 {
		idx = 1
	}
	c.entries = c.entries[:idx]
	c.memo.clear()
}

// HandleInsertion fixes up the cache after insertedBytes bytes (containing
// insertedNewlines '\n' bytes) were inserted at insertByte.
func (c *Cache) HandleInsertion(insertByte, insertedBytes, insertedNewlines int) {
	out := c.entries[:0:0]
	for _, e := range c.entries {
		switch {
		case e.offset == 0:
			out = append(out, e)
		case e.offset < insertByte:
			out = append(out, e)
		case e.offset == insertByte:
			// dropped to force recomputation across the insertion point.
		default:
			out = append(out, entry{offset: e.offset + insertedBytes, line: e.line + insertedNewlines, estimated: e.estimated})
		}
	}
	c.entries = out
	c.memo.clear()
}

// HandleDeletion fixes up the cache after deletedBytes bytes (containing
// deletedNewlines '\n' bytes) were removed starting at deleteStart.
func (c *Cache) HandleDeletion(deleteStart, deletedBytes, deletedNewlines int) {
	deleteEnd := deleteStart + deletedBytes
	out := c.entries[:0:0]
	for _, e := range c.entries {
		switch {
		case e.offset == 0:
			out = append(out, e)
		case e.offset <= deleteStart:
			out = append(out, e)
		case e.offset < deleteEnd:
			// fully inside the deleted range.
		default:
			out = append(out, entry{offset: e.offset - deletedBytes, line: e.line - deletedNewlines, estimated: e.estimated})
		}
	}
	c.entries = out
	c.memo.clear()
}

// Len reports how many entries are currently cached, mostly useful for
// tests asserting the cache actually shrinks/grows as documented.
func (c *Cache) Len() int { return len(c.entries) }

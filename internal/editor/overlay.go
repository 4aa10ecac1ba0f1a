package editor

import "sort"

// Overlay is a styled range rendered on top of normal text, e.g. a
// diagnostic squiggle or a selection highlight contributed by a plugin.
type Overlay struct {
	ID       string
	Start    int
	End      int
	Face     string
	Priority int
	Message  string
}

// OverlaySet is the id → overlay map a buffer's editor state owns.
type OverlaySet struct {
	byID map[string]Overlay
}

func newOverlaySet() OverlaySet { return OverlaySet{byID: make(map[string]Overlay)} }

func (s *OverlaySet) Put(o Overlay) { s.byID[o.ID] = o }

func (s *OverlaySet) Remove(id string) { delete(s.byID, id) }

func (s *OverlaySet) Get(id string) (Overlay, bool) {
	o, ok := s.byID[id]
	return o, ok
}

// Intersecting returns every overlay that intersects [start, end), sorted
// by ascending priority so the renderer paints higher-priority overlays
// last (on top).
func (s *OverlaySet) Intersecting(start, end int) []Overlay {
	var out []Overlay
	for _, o := range s.byID {
		if o.Start < end && o.End > start {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Start < out[j].Start
	})
	return out
}

// VirtualTextPlacement selects where virtual text renders relative to its
// anchor position.
type VirtualTextPlacement int

const (
	PlacementInline VirtualTextPlacement = iota
	PlacementEndOfLine
	PlacementAboveLine
)

// VirtualText is a non-buffer annotation rendered at a position, e.g. an
// inline type hint.
type VirtualText struct {
	ID        string
	Position  int
	Text      string
	Placement VirtualTextPlacement
	Style     string
}

// VirtualTextSet is the id → annotation map.
type VirtualTextSet struct {
	byID map[string]VirtualText
}

func newVirtualTextSet() VirtualTextSet { return VirtualTextSet{byID: make(map[string]VirtualText)} }

func (s *VirtualTextSet) Put(v VirtualText) { s.byID[v.ID] = v }

func (s *VirtualTextSet) Remove(id string) { delete(s.byID, id) }

func (s *VirtualTextSet) All() []VirtualText {
	out := make([]VirtualText, 0, len(s.byID))
	for _, v := range s.byID {
		out = append(out, v)
	}
	return out
}

// MarginAnnotation is a per-line gutter marker, e.g. a diagnostic icon.
type MarginAnnotation struct {
	Severity string
	Message  string
}

// MarginSet maps a 0-indexed line number to its margin annotations.
type MarginSet struct {
	byLine map[int][]MarginAnnotation
}

func newMarginSet() MarginSet { return MarginSet{byLine: make(map[int][]MarginAnnotation)} }

func (s *MarginSet) Add(line int, a MarginAnnotation) {
	s.byLine[line] = append(s.byLine[line], a)
}

func (s *MarginSet) ClearLine(line int) { delete(s.byLine, line) }

func (s *MarginSet) Clear() { s.byLine = make(map[int][]MarginAnnotation) }

func (s *MarginSet) Line(line int) []MarginAnnotation { return s.byLine[line] }

package cursor

import "sort"

// Set is an ordered, non-empty collection of cursors with one designated
// primary. Invariants: the primary is always present; no two cursors have
// overlapping selections after a mutating operation (Merge restores
// this); descending-position order is what editing operations iterate in
// so earlier edits never shift the offsets of cursors still to be
// processed.
type Set struct {
	cursors []Cursor
	primary int
}

// NewSet returns a set containing a single primary cursor.
func NewSet(c Cursor) *Set {
	return &Set{cursors: []Cursor{c}}
}

// Primary returns the primary cursor.
func (s *Set) Primary() Cursor { return s.cursors[s.primary] }

// PrimaryIndex returns the primary's index into All().
func (s *Set) PrimaryIndex() int { return s.primary }

// All returns every cursor, primary included, in set order.
func (s *Set) All() []Cursor {
	out := make([]Cursor, len(s.cursors))
	copy(out, s.cursors)
	return out
}

// Len returns the number of cursors in the set.
func (s *Set) Len() int { return len(s.cursors) }

// Replace overwrites the cursor at idx.
func (s *Set) Replace(idx int, c Cursor) { s.cursors[idx] = c }

// SetAll replaces the entire cursor list and designates primaryIdx
// as primary. Used after an editing operation recomputes every cursor.
func (s *Set) SetAll(cursors []Cursor, primaryIdx int) {
	s.cursors = cursors
	s.primary = primaryIdx
}

// Add appends c as a new secondary cursor.
func (s *Set) Add(c Cursor) {
	s.cursors = append(s.cursors, c)
}

// CollapseToPrimary discards every secondary cursor (Escape).
func (s *Set) CollapseToPrimary() {
	primary := s.cursors[s.primary]
	s.cursors = []Cursor{primary}
	s.primary = 0
}

// DescendingOrder returns indices into All(), ordered by descending
// Range().hi, the order spec.md §4.5 requires edits to be applied in so
// that an edit at one cursor never shifts the offset a cursor processed
// later in the pass was read from.
func (s *Set) DescendingOrder() []int {
	idx := make([]int, len(s.cursors))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		_, hiA := s.cursors[idx[a]].Range()
		_, hiB := s.cursors[idx[b]].Range()
		return hiA > hiB
	})
	return idx
}

// Merge sorts cursors by ascending position and merges any whose
// selections overlap or touch, keeping the lower offset as the merged
// anchor and the higher as position. If the primary was among a group
// that merged, the merged cursor becomes primary.
func (s *Set) Merge() {
	if len(s.cursors) <= 1 {
		return
	}

	type tagged struct {
		c          Cursor
		wasPrimary bool
	}
	tagged_ := make([]tagged, len(s.cursors))
	for i, c := range s.cursors {
		tagged_[i] = tagged{c: c, wasPrimary: i == s.primary}
	}
	sort.SliceStable(tagged_, func(i, j int) bool {
		loI, _ := tagged_[i].c.Range()
		loJ, _ := tagged_[j].c.Range()
		return loI < loJ
	})

	merged := []tagged{tagged_[0]}
	for _, t := range tagged_[1:] {
		last := &merged[len(merged)-1]
		lastLo, lastHi := last.c.Range()
		lo, hi := t.c.Range()

		if lo <= lastHi {
			newLo, newHi := lastLo, lastHi
			if lo < newLo {
				newLo = lo
			}
			if hi > newHi {
				newHi = hi
			}
			mode := last.c.Mode
			merged[len(merged)-1] = tagged{
				c:          Cursor{Position: newHi, Anchor: newLo, Mode: mode},
				wasPrimary: last.wasPrimary || t.wasPrimary,
			}
			continue
		}
		merged = append(merged, t)
	}

	out := make([]Cursor, len(merged))
	newPrimary := 0
	for i, m := range merged {
		out[i] = m.c
		if m.wasPrimary {
			newPrimary = i
		}
	}
	s.cursors = out
	s.primary = newPrimary
}

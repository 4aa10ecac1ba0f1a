package cursor

import (
	"testing"

	"github.com/fresh-editor/fresh/internal/test"
)

func TestMergeOverlappingSelections(t *testing.T) {
	s := NewSet(Cursor{Position: 10, Anchor: 5})
	s.Add(Cursor{Position: 8, Anchor: 2}) // overlaps the primary
	s.Add(Cursor{Position: 30, Anchor: 25})

	s.Merge()

	all := s.All()
	test.Equals(t, 2, len(all))

	lo, hi := all[0].Range()
	test.Equals(t, 2, lo)
	test.Equals(t, 10, hi)

	// the primary (originally index 0, position 10) was part of the
	// merged group, so the merged cursor must remain primary.
	test.Equals(t, 10, s.Primary().Position)
}

// TestMergeSatisfiesNoOverlapInvariant is spec.md §8 property 7.
func TestMergeSatisfiesNoOverlapInvariant(t *testing.T) {
	s := NewSet(Cursor{Position: 3, Anchor: 3})
	s.Add(Cursor{Position: 3, Anchor: 3}) // duplicate collapsed cursor
	s.Add(Cursor{Position: 50, Anchor: 40})
	s.Add(Cursor{Position: 45, Anchor: 42}) // overlaps the previous

	s.Merge()

	all := s.All()
	for i := 1; i < len(all); i++ {
		_, prevHi := all[i-1].Range()
		lo, _ := all[i].Range()
		test.Assert(t, lo > prevHi, "cursors %d and %d overlap after merge", i-1, i)
	}

	foundPrimary := false
	for _, c := range all {
		if c == s.Primary() {
			foundPrimary = true
		}
	}
	test.Assert(t, foundPrimary, "primary must be among the merged cursors")
}

func TestDescendingOrder(t *testing.T) {
	s := NewSet(Cursor{Position: 5, Anchor: 5})
	s.Add(Cursor{Position: 50, Anchor: 50})
	s.Add(Cursor{Position: 20, Anchor: 20})

	order := s.DescendingOrder()
	all := s.All()
	test.Equals(t, 50, all[order[0]].Position)
	test.Equals(t, 20, all[order[1]].Position)
	test.Equals(t, 5, all[order[2]].Position)
}

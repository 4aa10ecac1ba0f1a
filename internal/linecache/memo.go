package linecache

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// memoSlots bounds the exact-offset memo: one redraw queries the line
// number of every active cursor, rarely more than a handful at once, so
// a small fixed table covers the common case without growing unbounded.
const memoSlots = 8

// memo remembers the last few GetLineNumber results keyed by a fast hash
// of the queried offset, so re-querying the same offset across
// consecutive frames (the status bar, multiple cursors landing on the
// same line) skips the floorIndex/scanTo walk entirely. Slots are matched
// by the hash alone, not the offset; an evicted offset just misses the
// memo and falls through to the real lookup - it's a cache, not a source
// of truth.
type memo struct {
	keys [memoSlots]uint64
	vals [memoSlots]int
	set  [memoSlots]bool
	next int
}

func hashOffset(offset int) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(offset))
	return xxhash.Sum64(buf[:])
}

func (m *memo) get(offset int) (int, bool) {
	h := hashOffset(offset)
	for i := range m.keys {
		if m.set[i] && m.keys[i] == h {
			return m.vals[i], true
		}
	}
	return 0, false
}

func (m *memo) put(offset, line int) {
	h := hashOffset(offset)
	for i := range m.keys {
		if m.set[i] && m.keys[i] == h {
			m.vals[i] = line
			return
		}
	}
	m.keys[m.next] = h
	m.vals[m.next] = line
	m.set[m.next] = true
	m.next = (m.next + 1) % memoSlots
}

func (m *memo) clear() {
	*m = memo{}
}

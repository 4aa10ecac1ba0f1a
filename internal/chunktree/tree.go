// Package chunktree implements the chunked text storage tree (C1): a
// balanced, persistent tree of bounded byte leaves that supports
// O(log N)-ish insert, delete and positional reads by splitting/rebuilding
// only the path to the affected leaves and sharing every untouched
// subtree with the previous version.
//
// The tree never mutates in place: Insert and Delete return a new *Tree
// whose root may share arbitrary amounts of structure with the receiver.
// This mirrors the editing-core discipline restic uses for its
// content-addressed object store (read-only nodes, new roots on write)
// even though the storage problem here — an ordered byte sequence, not a
// content-addressed blob graph — is different.
package chunktree

import (
	"github.com/fresh-editor/fresh/internal/debug"
	"github.com/fresh-editor/fresh/internal/errors"
)

// ErrOutOfBounds is returned when an offset or range argument falls
// outside the tree's current byte length.
var ErrOutOfBounds = errors.New("chunktree: offset out of bounds")

// Config fixes the tree's shape for its entire lifetime.
type Config struct {
	// ChunkSize is the maximum number of bytes a leaf may hold. The
	// source measurements this editor is modeled on settle on 4KiB:
	// small enough that a single-byte edit never copies much, large
	// enough that per-leaf overhead stays low for multi-gigabyte files.
	ChunkSize int

	// BranchingFactor bounds how many children an internal node may
	// have before it is split across a sibling.
	BranchingFactor int
}

// DefaultConfig is the (4KiB, 8) configuration referenced throughout the
// design notes.
var DefaultConfig = Config{ChunkSize: 4096, BranchingFactor: 8}

func (cfg Config) normalize() Config {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultConfig.ChunkSize
	}
	if cfg.BranchingFactor <= 1 {
		cfg.BranchingFactor = DefaultConfig.BranchingFactor
	}
	return cfg
}

// node is either a leaf (children == nil) holding up to ChunkSize bytes,
// or an internal node holding up to BranchingFactor children. length is
// the cached total byte length of the subtree rooted here (invariant b).
type node struct {
	length   int
	leaf     []byte
	children []*node
}

func (n *node) isLeaf() bool { return n.children == nil }

func leafNode(b []byte) *node {
	return &node{length: len(b), leaf: b}
}

func internalNode(children []*node) *node {
	total := 0
	for _, c := range children {
		total += c.length
	}
	return &node{length: total, children: children}
}

// Tree is a balanced ordered tree over an immutable byte sequence.
type Tree struct {
	root *node
	cfg  Config
}

// Empty returns a zero-length tree with the given configuration.
func Empty(cfg Config) *Tree {
	cfg = cfg.normalize()
	return &Tree{root: leafNode(nil), cfg: cfg}
}

// FromSlice bulk-loads data into a freshly packed tree: split into
// ChunkSize leaves, then pack bottom-up into levels of up to
// BranchingFactor children, producing a nearly-full tree in one pass
// rather than via repeated Insert calls.
func FromSlice(data []byte, cfg Config) (*Tree, error) {
	cfg = cfg.normalize()
	leaves := chunkBytes(data, cfg.ChunkSize)
	root := packUp(leaves, cfg.BranchingFactor)
	debug.Log("chunktree.FromSlice: %d bytes into %d leaves", len(data), len(leaves))
	return &Tree{root: root, cfg: cfg}, nil
}

// Config returns the tree's fixed (chunk_size, branching_factor).
func (t *Tree) Config() Config { return t.cfg }

// Len returns the total byte length of the tree.
func (t *Tree) Len() int {
	if t == nil || t.root == nil {
		return 0
	}
	return t.root.length
}

func chunkBytes(data []byte, chunkSize int) []*node {
	if len(data) == 0 {
		return []*node{leafNode(nil)}
	}
	leaves := make([]*node, 0, (len(data)+chunkSize-1)/chunkSize)
	for off := 0; off < len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		b := make([]byte, end-off)
		copy(b, data[off:end])
		leaves = append(leaves, leafNode(b))
	}
	return leaves
}

// packUp groups nodes into parents of up to branchingFactor children,
// repeating until a single root remains. Used both by FromSlice (packing
// leaves) and by Insert/Delete (re-rooting an overflowed sibling list).
func packUp(nodes []*node, branchingFactor int) *node {
	if len(nodes) == 0 {
		return leafNode(nil)
	}
	for len(nodes) > 1 {
		nodes = packLevel(nodes, branchingFactor)
	}
	return nodes[0]
}

func packLevel(nodes []*node, branchingFactor int) []*node {
	out := make([]*node, 0, (len(nodes)+branchingFactor-1)/branchingFactor)
	for i := 0; i < len(nodes); i += branchingFactor {
		end := i + branchingFactor
		if end > len(nodes) {
			end = len(nodes)
		}
		children := make([]*node, end-i)
		copy(children, nodes[i:end])
		out = append(out, internalNode(children))
	}
	return out
}

// packIfNeeded wraps a single-level sibling list into one node when it
// fits the branching factor, or splits it across a packed level when it
// doesn't, returning the resulting siblings for the caller to splice
// into its own child list.
func packIfNeeded(nodes []*node, branchingFactor int) []*node {
	if len(nodes) == 0 {
		return nil
	}
	if len(nodes) <= branchingFactor {
		return []*node{internalNode(nodes)}
	}
	return packLevel(nodes, branchingFactor)
}

// leafAt descends from the root to the leaf containing offset, returning
// that leaf and its absolute start offset. offset is clamped to [0, Len()].
func (t *Tree) leafAt(offset int) (*node, int) {
	if offset < 0 {
		offset = 0
	}
	if total := t.Len(); offset > total {
		offset = total
	}

	n := t.root
	base := 0
	for !n.isLeaf() {
		cum := base
		var next *node
		nextBase := base
		for i, c := range n.children {
			childEnd := cum + c.length
			if offset < childEnd || i == len(n.children)-1 {
				next = c
				nextBase = cum
				break
			}
			cum = childEnd
		}
		n = next
		base = nextBase
	}
	return n, base
}

// locate finds the child of an internal node containing offset (relative
// to that node), returning its index and the offset local to that child.
func (n *node) locate(offset int) (index, local int) {
	cum := 0
	for i, c := range n.children {
		if offset <= cum+c.length || i == len(n.children)-1 {
			return i, offset - cum
		}
		cum += c.length
	}
	return 0, 0
}

// Read copies up to length bytes starting at offset into a freshly
// allocated slice, walking leaf-by-leaf instead of materialising the
// whole tree.
func (t *Tree) Read(offset, length int) ([]byte, error) {
	if offset < 0 || offset > t.Len() {
		return nil, ErrOutOfBounds
	}
	if length <= 0 {
		return []byte{}, nil
	}
	end := offset + length
	if end > t.Len() {
		end = t.Len()
	}
	if end <= offset {
		return []byte{}, nil
	}

	out := make([]byte, 0, end-offset)
	pos := offset
	for pos < end {
		leaf, base := t.leafAt(pos)
		idx := pos - base
		avail := len(leaf.leaf) - idx
		if avail <= 0 {
			break
		}
		take := end - pos
		if take > avail {
			take = avail
		}
		out = append(out, leaf.leaf[idx:idx+take]...)
		pos += take
	}
	return out, nil
}

// Insert splices data into the tree at offset, splitting and rebalancing
// only the path from the root to the affected leaf (or leaves, if data is
// larger than one chunk). An empty data slice is a no-op that still
// returns a valid (identical) tree.
func (t *Tree) Insert(offset int, data []byte) (*Tree, error) {
	if offset < 0 || offset > t.Len() {
		return nil, ErrOutOfBounds
	}
	if len(data) == 0 {
		return t, nil
	}

	siblings := insertInto(t.root, offset, data, t.cfg)
	root := packUp(siblings, t.cfg.BranchingFactor)
	debug.Log("chunktree.Insert: offset=%d len=%d", offset, len(data))
	return &Tree{root: root, cfg: t.cfg}, nil
}

func insertInto(n *node, offset int, data []byte, cfg Config) []*node {
	if n.isLeaf() {
		combined := make([]byte, 0, len(n.leaf)+len(data))
		combined = append(combined, n.leaf[:offset]...)
		combined = append(combined, data...)
		combined = append(combined, n.leaf[offset:]...)
		if len(combined) <= cfg.ChunkSize {
			return []*node{leafNode(combined)}
		}
		return chunkBytes(combined, cfg.ChunkSize)
	}

	i, local := n.locate(offset)
	replaced := insertInto(n.children[i], local, data, cfg)
	newChildren := spliceChildren(n.children, i, 1, replaced)
	return packIfNeeded(newChildren, cfg.BranchingFactor)
}

// Delete removes the half-open byte range [start, end) from the tree. An
// empty range is a no-op.
func (t *Tree) Delete(start, end int) (*Tree, error) {
	if start < 0 || end > t.Len() || start > end {
		return nil, ErrOutOfBounds
	}
	if start == end {
		return t, nil
	}

	siblings := deleteFrom(t.root, start, end, t.cfg)
	var root *node
	if len(siblings) == 0 {
		root = leafNode(nil)
	} else {
		root = packUp(siblings, t.cfg.BranchingFactor)
	}
	debug.Log("chunktree.Delete: range=[%d,%d)", start, end)
	return &Tree{root: root, cfg: t.cfg}, nil
}

func deleteFrom(n *node, start, end int, cfg Config) []*node {
	if n.isLeaf() {
		if start <= 0 && end >= n.length {
			return nil
		}
		out := make([]byte, 0, n.length-(end-start))
		out = append(out, n.leaf[:start]...)
		out = append(out, n.leaf[end:]...)
		if len(out) == 0 {
			return nil
		}
		return []*node{leafNode(out)}
	}

	var out []*node
	cum := 0
	for _, c := range n.children {
		childStart, childEnd := cum, cum+c.length
		cum = childEnd

		overlapStart, overlapEnd := max(start, childStart), min(end, childEnd)
		if overlapStart >= overlapEnd {
			// untouched: reuse the existing subtree, no copy needed.
			out = append(out, c)
			continue
		}

		replaced := deleteFrom(c, overlapStart-childStart, overlapEnd-childStart, cfg)
		out = append(out, replaced...)
	}
	return packIfNeeded(out, cfg.BranchingFactor)
}

// spliceChildren returns children with the slice [i, i+remove) replaced
// by insert, copying rather than mutating the receiver's backing array so
// the original node stays valid for readers holding the old Tree.
func spliceChildren(children []*node, i, remove int, insert []*node) []*node {
	out := make([]*node, 0, len(children)-remove+len(insert))
	out = append(out, children[:i]...)
	out = append(out, insert...)
	out = append(out, children[i+remove:]...)
	return out
}

package chunktree

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/fresh-editor/fresh/internal/test"
)

// smallCfg forces many small leaves/nodes so tests actually exercise
// splitting and packing instead of fitting in a single leaf.
var smallCfg = Config{ChunkSize: 8, BranchingFactor: 4}

func flatten(t *testing.T, tr *Tree) string {
	t.Helper()
	b, err := tr.Read(0, tr.Len())
	test.OK(t, err)
	return string(b)
}

func TestFromSliceRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("abcdefgh", 20))
	tr, err := FromSlice(data, smallCfg)
	test.OK(t, err)
	test.Equals(t, len(data), tr.Len())
	test.Equals(t, string(data), flatten(t, tr))
}

func TestEmptyTree(t *testing.T) {
	tr := Empty(smallCfg)
	test.Equals(t, 0, tr.Len())
	test.Equals(t, "", flatten(t, tr))
}

func TestInsertAtBoundaries(t *testing.T) {
	tr, err := FromSlice([]byte("hello world"), smallCfg)
	test.OK(t, err)

	tr, err = tr.Insert(0, []byte(">>"))
	test.OK(t, err)
	test.Equals(t, ">>hello world", flatten(t, tr))

	tr, err = tr.Insert(tr.Len(), []byte("<<"))
	test.OK(t, err)
	test.Equals(t, ">>hello world<<", flatten(t, tr))

	tr, err = tr.Insert(7, []byte("_"))
	test.OK(t, err)
	test.Equals(t, ">>hello_ world<<", flatten(t, tr))
}

func TestInsertOutOfBounds(t *testing.T) {
	tr, err := FromSlice([]byte("abc"), smallCfg)
	test.OK(t, err)
	_, err = tr.Insert(-1, []byte("x"))
	test.Assert(t, err == ErrOutOfBounds, "want ErrOutOfBounds, got %v", err)
	_, err = tr.Insert(4, []byte("x"))
	test.Assert(t, err == ErrOutOfBounds, "want ErrOutOfBounds, got %v", err)
}

func TestDeleteRanges(t *testing.T) {
	tr, err := FromSlice([]byte("the quick brown fox"), smallCfg)
	test.OK(t, err)

	tr, err = tr.Delete(4, 10)
	test.OK(t, err)
	test.Equals(t, "the brown fox", flatten(t, tr))

	tr, err = tr.Delete(0, tr.Len())
	test.OK(t, err)
	test.Equals(t, 0, tr.Len())
	test.Equals(t, "", flatten(t, tr))
}

func TestDeleteNoOpOnEmptyRange(t *testing.T) {
	tr, err := FromSlice([]byte("abc"), smallCfg)
	test.OK(t, err)
	tr2, err := tr.Delete(1, 1)
	test.OK(t, err)
	test.Assert(t, tr == tr2, "empty-range delete should return the same tree")
}

func TestReadWindow(t *testing.T) {
	tr, err := FromSlice([]byte("0123456789"), smallCfg)
	test.OK(t, err)

	got, err := tr.Read(3, 4)
	test.OK(t, err)
	test.Equals(t, "3456", string(got))

	got, err = tr.Read(8, 100)
	test.OK(t, err)
	test.Equals(t, "89", string(got))
}

func TestPersistenceSharesUnaffectedSubtrees(t *testing.T) {
	data := []byte(strings.Repeat("x", 200))
	tr, err := FromSlice(data, smallCfg)
	test.OK(t, err)

	tr2, err := tr.Insert(0, []byte("Y"))
	test.OK(t, err)

	// the original tree must be completely unaffected by the edit.
	test.Equals(t, string(data), flatten(t, tr))
	test.Equals(t, "Y"+string(data), flatten(t, tr2))
}

// TestRoundTripProperty is the property test from spec.md §8.1: for any
// sequence of inserts/deletes, reading the whole tree matches the same
// operations replayed against a plain Go string.
func TestRoundTripProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tr := Empty(smallCfg)
	var reference bytes.Buffer

	for i := 0; i < 500; i++ {
		switch rng.Intn(2) {
		case 0:
			offset := rng.Intn(reference.Len() + 1)
			n := rng.Intn(12) + 1
			data := randomBytes(rng, n)

			var err error
			tr, err = tr.Insert(offset, data)
			test.OK(t, err)

			ref := reference.Bytes()
			newRef := make([]byte, 0, len(ref)+len(data))
			newRef = append(newRef, ref[:offset]...)
			newRef = append(newRef, data...)
			newRef = append(newRef, ref[offset:]...)
			reference.Reset()
			reference.Write(newRef)
		case 1:
			if reference.Len() == 0 {
				continue
			}
			start := rng.Intn(reference.Len())
			end := start + rng.Intn(reference.Len()-start+1)

			var err error
			tr, err = tr.Delete(start, end)
			test.OK(t, err)

			ref := reference.Bytes()
			newRef := make([]byte, 0, len(ref)-(end-start))
			newRef = append(newRef, ref[:start]...)
			newRef = append(newRef, ref[end:]...)
			reference.Reset()
			reference.Write(newRef)
		}

		test.Equals(t, reference.Len(), tr.Len())
		test.Equals(t, reference.String(), flatten(t, tr))
	}
}

func randomBytes(rng *rand.Rand, n int) []byte {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ\n"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return b
}

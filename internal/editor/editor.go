package editor

import (
	"sync"

	"github.com/google/uuid"

	"github.com/fresh-editor/fresh/internal/chunktree"
	"github.com/fresh-editor/fresh/internal/errors"
	"github.com/fresh-editor/fresh/internal/textbuf"
)

// Editor owns every open buffer's State behind a single id → State map.
// This is the one place that owns both halves of the relationship: a
// State holds its *textbuf.Buffer directly, but nothing ever holds a
// pointer back from a buffer to its State or from a cursor to a buffer —
// cursors only ever carry byte offsets. Two States never point at each
// other either; cross-buffer operations go through the Editor.
type Editor struct {
	mu      sync.Mutex
	buffers map[string]*State
	order   []string
	active  string
}

// New returns an Editor with no open buffers.
func New() *Editor {
	return &Editor{buffers: make(map[string]*State)}
}

// OpenFile opens path as a new buffer and returns its id.
func (e *Editor) OpenFile(path string, cfg chunktree.Config) (string, error) {
	buf, err := textbuf.Open(path, cfg)
	if err != nil {
		return "", err
	}
	return e.adopt(buf), nil
}

// NewBuffer creates a new unnamed buffer and returns its id.
func (e *Editor) NewBuffer(cfg chunktree.Config) string {
	return e.adopt(textbuf.New(cfg))
}

func (e *Editor) adopt(buf *textbuf.Buffer) string {
	id := uuid.NewString()
	state := NewState(id, buf)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffers[id] = state
	e.order = append(e.order, id)
	e.active = id
	return id
}

// State returns the editor state for id, or false if no such buffer is
// open.
func (e *Editor) State(id string) (*State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.buffers[id]
	return s, ok
}

// Active returns the currently active buffer's state, or false if no
// buffer is open.
func (e *Editor) Active() (*State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.buffers[e.active]
	return s, ok
}

// SetActive switches the active buffer to id.
func (e *Editor) SetActive(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.buffers[id]; !ok {
		return errors.New("editor: no such buffer")
	}
	e.active = id
	return nil
}

// Close discards a buffer's state, closing it.
func (e *Editor) Close(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.buffers, id)
	for i, o := range e.order {
		if o == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	if e.active == id {
		e.active = ""
		if len(e.order) > 0 {
			e.active = e.order[len(e.order)-1]
		}
	}
}

// IDs returns every open buffer's id, in open order.
func (e *Editor) IDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

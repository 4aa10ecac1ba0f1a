package main

import (
	"bufio"
	"context"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/fresh-editor/fresh/internal/editor"
	"github.com/fresh-editor/fresh/internal/keymap"
)

// rawTerminal puts stdin into raw mode for the duration of the editor
// session and restores it on Close, the same MakeRaw/Restore pairing
// every terminal application built on golang.org/x/term uses.
type rawTerminal struct {
	fd    int
	state *term.State
}

func newRawTerminal() (*rawTerminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return &rawTerminal{fd: fd}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &rawTerminal{fd: fd, state: state}, nil
}

func (t *rawTerminal) Close() error {
	if t.state == nil {
		return nil
	}
	return term.Restore(t.fd, t.state)
}

// stdinInputSource decodes raw terminal bytes into editor.InputEvent
// values, implementing editor.InputSource over a background reader
// goroutine so Poll can honor a timeout without blocking the whole
// process on a read syscall.
type stdinInputSource struct {
	events chan editor.InputEvent
}

func newStdinInputSource() *stdinInputSource {
	s := &stdinInputSource{events: make(chan editor.InputEvent, 256)}
	go s.readLoop()
	return s
}

func (s *stdinInputSource) readLoop() {
	r := bufio.NewReader(os.Stdin)
	for {
		key, ok := decodeKeyPress(r)
		if !ok {
			return
		}
		s.events <- editor.InputEvent{Kind: editor.EventKey, Data: key}
	}
}

func (s *stdinInputSource) Poll(ctx context.Context, timeout time.Duration) (editor.InputEvent, bool) {
	select {
	case ev := <-s.events:
		return ev, true
	case <-time.After(timeout):
		return editor.InputEvent{}, false
	case <-ctx.Done():
		return editor.InputEvent{}, false
	}
}

func (s *stdinInputSource) Pending() bool {
	return len(s.events) > 0
}

// decodeKeyPress reads one key press worth of bytes from r, handling the
// common ANSI escape sequences (arrow keys, Home/End, Delete) as well as
// bare control characters and printable runes.
func decodeKeyPress(r *bufio.Reader) (keymap.Key, bool) {
	b, err := r.ReadByte()
	if err != nil {
		return keymap.Key{}, false
	}

	switch b {
	case 0x1b: // ESC, possibly the start of a CSI sequence
		if r.Buffered() == 0 {
			return keymap.NewKey(keymap.CodeEscape), true
		}
		next, err := r.ReadByte()
		if err != nil || next != '[' {
			return keymap.NewKey(keymap.CodeEscape), true
		}
		seq, err := r.ReadByte()
		if err != nil {
			return keymap.NewKey(keymap.CodeEscape), true
		}
		switch seq {
		case 'A':
			return keymap.NewKey(keymap.CodeUp), true
		case 'B':
			return keymap.NewKey(keymap.CodeDown), true
		case 'C':
			return keymap.NewKey(keymap.CodeRight), true
		case 'D':
			return keymap.NewKey(keymap.CodeLeft), true
		case 'H':
			return keymap.NewKey(keymap.CodeHome), true
		case 'F':
			return keymap.NewKey(keymap.CodeEnd), true
		case '3':
			r.ReadByte() // trailing '~'
			return keymap.NewKey(keymap.CodeDelete), true
		default:
			return keymap.NewKey(keymap.CodeEscape), true
		}
	case '\r', '\n':
		return keymap.NewKey(keymap.CodeEnter), true
	case 0x7f:
		return keymap.NewKey(keymap.CodeBackspace), true
	case '\t':
		return keymap.NewKey(keymap.CodeTab), true
	default:
		if b < 0x20 {
			// A control character: Ctrl+<letter>, 'a' is 0x01.
			return keymap.NewCharKey(rune('a'+b-1), keymap.ModCtrl), true
		}
		return keymap.NewCharKey(rune(b)), true
	}
}

package scriptctl

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fresh-editor/fresh/internal/keymap"
	"github.com/fresh-editor/fresh/internal/test"
)

type fakeHost struct {
	keys       []keymap.Key
	clicks     [][2]int
	typed      []string
	opened     []string
	exported   []string
	bufContent string
}

func (f *fakeHost) Render() ScreenPayload {
	return ScreenPayload{Width: 2, Height: 1, Lines: []string{"ab"}}
}
func (f *fakeHost) HandleKey(k keymap.Key)             { f.keys = append(f.keys, k) }
func (f *fakeHost) HandleMouseClick(col, row int)      { f.clicks = append(f.clicks, [2]int{col, row}) }
func (f *fakeHost) TypeText(text string)               { f.typed = append(f.typed, text) }
func (f *fakeHost) Status() StatusPayload {
	return StatusPayload{CurrentFile: "x.txt", CursorLine: 1, CursorColumn: 2, Modified: true, Mode: "normal"}
}
func (f *fakeHost) GetBuffer() BufferPayload { return BufferPayload{Content: f.bufContent, Path: "x.txt"} }
func (f *fakeHost) OpenFile(path string) error {
	f.opened = append(f.opened, path)
	return nil
}
func (f *fakeHost) ExportTest(name string) error {
	f.exported = append(f.exported, name)
	return nil
}

func runLines(t *testing.T, host Host, lines ...string) []string {
	t.Helper()
	server := NewServer(host)
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer
	test.OK(t, server.Run(in, &out))

	var results []string
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		results = append(results, scanner.Text())
	}
	return results
}

func TestRenderCommand(t *testing.T) {
	host := &fakeHost{}
	out := runLines(t, host, `{"type":"render"}`)
	test.Assert(t, len(out) == 1, "expected one response line")
	test.Assert(t, strings.Contains(out[0], `"type":"screen"`), "expected a screen response, got %s", out[0])
}

func TestKeyCommandDispatchesToHost(t *testing.T) {
	host := &fakeHost{}
	out := runLines(t, host, `{"type":"key","code":"Enter","modifiers":["ctrl"]}`)
	test.Assert(t, strings.Contains(out[0], `"type":"ok"`), "expected ok response, got %s", out[0])
	test.Assert(t, len(host.keys) == 1, "expected HandleKey to be called once")
	test.Equals(t, keymap.CodeEnter, host.keys[0].Code)
	test.Assert(t, host.keys[0].HasModifier(keymap.ModCtrl), "expected Ctrl modifier on decoded key")
}

func TestMouseClickCommand(t *testing.T) {
	host := &fakeHost{}
	runLines(t, host, `{"type":"mouse_click","col":10,"row":5}`)
	test.Assert(t, len(host.clicks) == 1, "expected one click")
	test.Equals(t, [2]int{10, 5}, host.clicks[0])
}

func TestGetBufferCommand(t *testing.T) {
	host := &fakeHost{bufContent: "hello\nworld\n"}
	out := runLines(t, host, `{"type":"get_buffer"}`)
	test.Assert(t, strings.Contains(out[0], `"content":"hello\nworld\n"`), "unexpected buffer response: %s", out[0])
}

func TestQuitStopsLoop(t *testing.T) {
	host := &fakeHost{}
	out := runLines(t, host, `{"type":"quit"}`, `{"type":"status"}`)
	test.Assert(t, len(out) == 1, "expected the loop to stop after quit, got %d responses", len(out))
}

func TestUnknownCommandReturnsError(t *testing.T) {
	host := &fakeHost{}
	out := runLines(t, host, `{"type":"bogus"}`)
	test.Assert(t, strings.Contains(out[0], `"type":"error"`), "expected error response, got %s", out[0])
}

func TestWaitForMatchesAlreadyEmittedEvent(t *testing.T) {
	host := &fakeHost{}
	server := NewServer(host)
	server.Events.Emit(Event{Name: "lsp:ready"})

	in := strings.NewReader(`{"type":"wait_for","condition":{"type":"event","name":"lsp:*"},"timeout_ms":100}` + "\n")
	var out bytes.Buffer
	test.OK(t, server.Run(in, &out))
	test.Assert(t, strings.Contains(out.String(), `"type":"ok"`), "expected ok response, got %s", out.String())
}

func TestWaitForTimesOut(t *testing.T) {
	host := &fakeHost{}
	server := NewServer(host)

	in := strings.NewReader(`{"type":"wait_for","condition":{"type":"event","name":"never"},"timeout_ms":30}` + "\n")
	var out bytes.Buffer
	test.OK(t, server.Run(in, &out))
	test.Assert(t, strings.Contains(out.String(), `"type":"error"`), "expected a timeout error, got %s", out.String())
}

func TestMatchEventNameWildcards(t *testing.T) {
	cases := []struct {
		pattern, name string
		want          bool
	}{
		{"*", "anything", true},
		{"lsp:*", "lsp:ready", true},
		{"lsp:*", "other:ready", false},
		{"*:ready", "lsp:ready", true},
		{"*:ready", "lsp:busy", false},
		{"exact", "exact", true},
		{"exact", "other", false},
	}
	for _, c := range cases {
		got := matchEventName(c.pattern, c.name)
		test.Equals(t, c.want, got)
	}
}

func TestEventLogWaitUnblocksOnLaterEmit(t *testing.T) {
	log := NewEventLog()
	done := make(chan error, 1)
	go func() {
		done <- log.Wait("buffer:saved", time.Second)
	}()

	time.Sleep(20 * time.Millisecond)
	log.Emit(Event{Name: "buffer:saved"})

	select {
	case err := <-done:
		test.OK(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected Wait to unblock after Emit")
	}
}

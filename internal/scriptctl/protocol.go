// Package scriptctl implements the editor's script-control protocol: a
// line-delimited JSON request/response loop over an arbitrary
// io.Reader/io.Writer, so it is testable without a real terminal and
// pluggable into cmd/fresh's --script-mode flag. Each request is a typed
// command, each response a typed result; wait_for additionally matches
// emitted events against a wildcard pattern.
package scriptctl

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/fresh-editor/fresh/internal/debug"
	"github.com/fresh-editor/fresh/internal/errors"
	"github.com/fresh-editor/fresh/internal/keymap"
)

// CommandType tags an incoming request.
type CommandType string

const (
	CmdRender     CommandType = "render"
	CmdKey        CommandType = "key"
	CmdMouseClick CommandType = "mouse_click"
	CmdTypeText   CommandType = "type_text"
	CmdStatus     CommandType = "status"
	CmdGetBuffer  CommandType = "get_buffer"
	CmdOpenFile   CommandType = "open_file"
	CmdWaitFor    CommandType = "wait_for"
	CmdQuit       CommandType = "quit"
	CmdExportTest CommandType = "export_test"
)

// ResponseType tags an outgoing result.
type ResponseType string

const (
	RespScreen ResponseType = "screen"
	RespStatus ResponseType = "status"
	RespBuffer ResponseType = "buffer"
	RespOK     ResponseType = "ok"
	RespError  ResponseType = "error"
)

// Condition is the "wait_for" payload's condition: right now only the
// "event" kind is specified, matching a named event (with wildcards).
// Data is decoded but not compared: wait_for matches on Name only.
type Condition struct {
	Type string         `json:"type"`
	Name string         `json:"name,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// Command is the full decoded shape of one incoming line. Only the
// fields relevant to Type are populated; the rest are zero.
type Command struct {
	Type       CommandType     `json:"type"`
	Code       string          `json:"code,omitempty"`
	Modifiers  []string        `json:"modifiers,omitempty"`
	Col        int             `json:"col,omitempty"`
	Row        int             `json:"row,omitempty"`
	Text       string          `json:"text,omitempty"`
	Path       string          `json:"path,omitempty"`
	Condition  *Condition      `json:"condition,omitempty"`
	TimeoutMs  int             `json:"timeout_ms,omitempty"`
	TestName   string          `json:"test_name,omitempty"`
}

// Response is the full shape of one outgoing line. MarshalJSON only
// emits the fields relevant to Type, matching the protocol's tagged
// union of distinct response shapes.
type Response struct {
	Type    ResponseType
	Screen  *ScreenPayload
	Status  *StatusPayload
	Buffer  *BufferPayload
	Message string
}

// ScreenPayload is the rendered terminal grid, cell by cell, for
// "render" requests.
type ScreenPayload struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Lines  []string `json:"lines"`
}

// StatusPayload summarizes editor state for "status" requests.
type StatusPayload struct {
	CurrentFile   string `json:"current_file,omitempty"`
	CursorLine    int    `json:"cursor_line"`
	CursorColumn  int    `json:"cursor_column"`
	Modified      bool   `json:"modified"`
	Mode          string `json:"mode,omitempty"`
}

// BufferPayload is a buffer's full text content for "get_buffer".
type BufferPayload struct {
	Content string `json:"content"`
	Path    string `json:"path,omitempty"`
}

// MarshalJSON implements the tagged-union encoding: {"type": ..., ...}
// with only the payload fields relevant to Type present.
func (r Response) MarshalJSON() ([]byte, error) {
	env := map[string]any{"type": string(r.Type)}
	switch r.Type {
	case RespScreen:
		if r.Screen != nil {
			env["width"] = r.Screen.Width
			env["height"] = r.Screen.Height
			env["lines"] = r.Screen.Lines
		}
	case RespStatus:
		if r.Status != nil {
			env["current_file"] = r.Status.CurrentFile
			env["cursor_line"] = r.Status.CursorLine
			env["cursor_column"] = r.Status.CursorColumn
			env["modified"] = r.Status.Modified
			env["mode"] = r.Status.Mode
		}
	case RespBuffer:
		if r.Buffer != nil {
			env["content"] = r.Buffer.Content
			env["path"] = r.Buffer.Path
		}
	case RespError:
		env["message"] = r.Message
	}
	return json.Marshal(env)
}

func okResponse() Response    { return Response{Type: RespOK} }
func errResponse(err error) Response {
	return Response{Type: RespError, Message: err.Error()}
}

// Host is the editor-facing side of the protocol: scriptctl decodes and
// dispatches, Host actually performs the action. Kept as a narrow
// interface so this package has no import dependency on internal/editor.
type Host interface {
	Render() ScreenPayload
	HandleKey(key keymap.Key)
	HandleMouseClick(col, row int)
	TypeText(text string)
	Status() StatusPayload
	GetBuffer() BufferPayload
	OpenFile(path string) error
	ExportTest(testName string) error
}

// Server runs the script-control loop: decode one JSON command per line
// from r, dispatch it to host, encode one JSON response per line to w.
// Quit stops the loop after acknowledging the quit command.
type Server struct {
	Host   Host
	Events *EventLog
}

// NewServer builds a Server wired to host, with its own event log for
// wait_for matching.
func NewServer(host Host) *Server {
	return &Server{Host: host, Events: NewEventLog()}
}

// Run drives the loop until the input is exhausted or a "quit" command
// is received.
func (s *Server) Run(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var cmd Command
		if err := json.Unmarshal(line, &cmd); err != nil {
			if encErr := enc.Encode(errResponse(errors.Wrap(err, "scriptctl: decoding command"))); encErr != nil {
				return encErr
			}
			continue
		}

		resp, quit := s.dispatch(&cmd)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (s *Server) dispatch(cmd *Command) (Response, bool) {
	switch cmd.Type {
	case CmdRender:
		screen := s.Host.Render()
		return Response{Type: RespScreen, Screen: &screen}, false

	case CmdKey:
		key, err := decodeKey(cmd)
		if err != nil {
			return errResponse(err), false
		}
		s.Host.HandleKey(key)
		return okResponse(), false

	case CmdMouseClick:
		s.Host.HandleMouseClick(cmd.Col, cmd.Row)
		return okResponse(), false

	case CmdTypeText:
		s.Host.TypeText(cmd.Text)
		return okResponse(), false

	case CmdStatus:
		status := s.Host.Status()
		return Response{Type: RespStatus, Status: &status}, false

	case CmdGetBuffer:
		buf := s.Host.GetBuffer()
		return Response{Type: RespBuffer, Buffer: &buf}, false

	case CmdOpenFile:
		if err := s.Host.OpenFile(cmd.Path); err != nil {
			return errResponse(err), false
		}
		return okResponse(), false

	case CmdWaitFor:
		if err := s.waitFor(cmd); err != nil {
			return errResponse(err), false
		}
		return okResponse(), false

	case CmdExportTest:
		if err := s.Host.ExportTest(cmd.TestName); err != nil {
			return errResponse(err), false
		}
		return okResponse(), false

	case CmdQuit:
		return okResponse(), true

	default:
		debug.Log("scriptctl: unknown command type %q", cmd.Type)
		return errResponse(errors.Errorf("scriptctl: unknown command type %q", cmd.Type)), false
	}
}

func decodeKey(cmd *Command) (keymap.Key, error) {
	code, ch, err := keymap.ParseCode(cmd.Code)
	if err != nil {
		return keymap.Key{}, err
	}
	mods := make([]keymap.Modifier, 0, len(cmd.Modifiers))
	for _, name := range cmd.Modifiers {
		m, err := keymap.ParseModifier(name)
		if err != nil {
			return keymap.Key{}, err
		}
		mods = append(mods, m)
	}
	if code == keymap.CodeChar {
		return keymap.NewCharKey(ch, mods...), nil
	}
	return keymap.NewKey(code, mods...), nil
}

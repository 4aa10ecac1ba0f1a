package scriptctl

import (
	"strings"
	"sync"
	"time"

	"github.com/fresh-editor/fresh/internal/errors"
)

// Event is one named occurrence the running editor reports (an LSP
// notification, a plugin callback, a recovery autosave) that a script
// can block on via "wait_for".
type Event struct {
	Name string
	Data map[string]any
}

// EventLog records emitted events and lets callers block until one
// matching a pattern arrives, the same timeout-bounded-wait contract the
// original's remote-agent connection code uses for its own handshake
// wait, reused here for script-control's wait_for.
type EventLog struct {
	mu      sync.Mutex
	history []Event
}

// NewEventLog builds an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Emit records ev.
func (l *EventLog) Emit(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = append(l.history, ev)
}

// pollInterval bounds how stale a Wait's view of newly emitted events
// can be.
const pollInterval = 10 * time.Millisecond

// Wait blocks until an event matching pattern has been emitted (checking
// history first, so an event emitted before Wait was called still
// satisfies it), or until timeout elapses.
func (l *EventLog) Wait(pattern string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	checked := 0

	for {
		l.mu.Lock()
		for ; checked < len(l.history); checked++ {
			if matchEventName(pattern, l.history[checked].Name) {
				l.mu.Unlock()
				return nil
			}
		}
		l.mu.Unlock()

		if time.Now().After(deadline) {
			return errors.Errorf("scriptctl: wait_for %q timed out", pattern)
		}
		time.Sleep(pollInterval)
	}
}

// matchEventName implements the protocol's three wildcard shapes: "*"
// matches anything, "prefix:*" matches names starting with "prefix:",
// "*:suffix" matches names ending with ":suffix". Anything else is an
// exact match.
func matchEventName(pattern, name string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, ":*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(name, prefix)
	}
	if strings.HasPrefix(pattern, "*:") {
		suffix := strings.TrimPrefix(pattern, "*")
		return strings.HasSuffix(name, suffix)
	}
	return pattern == name
}

func (s *Server) waitFor(cmd *Command) error {
	if cmd.Condition == nil || cmd.Condition.Type != "event" {
		return errors.Errorf("scriptctl: wait_for requires an event condition")
	}
	timeout := time.Duration(cmd.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return s.Events.Wait(cmd.Condition.Name, timeout)
}

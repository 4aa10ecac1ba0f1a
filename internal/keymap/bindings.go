package keymap

import "github.com/fresh-editor/fresh/internal/errors"

// Bindings maps keys to named commands. Command identity is a plain
// string (not an editor-specific enum) so this package has no import
// dependency on internal/editor; the dispatcher looks commands up by
// name.
type Bindings struct {
	entries map[string]string // keymap.Key.String() -> command name
}

// NewBindings builds an empty binding table.
func NewBindings() *Bindings {
	return &Bindings{entries: make(map[string]string)}
}

// Bind associates a binding string (e.g. "Ctrl+S") with a command name.
// A later Bind for the same key overwrites an earlier one, matching how
// a user's config overrides built-in defaults.
func (b *Bindings) Bind(binding, command string) error {
	key, err := Parse(binding)
	if err != nil {
		return err
	}
	b.entries[key.String()] = command
	return nil
}

// Lookup returns the command bound to key, if any.
func (b *Bindings) Lookup(key Key) (string, bool) {
	cmd, ok := b.entries[key.String()]
	return cmd, ok
}

// Merge copies every binding from other into b, overwriting existing
// entries for the same key (used to layer a user config over defaults).
func (b *Bindings) Merge(other *Bindings) {
	for k, v := range other.entries {
		b.entries[k] = v
	}
}

// LoadMap builds a Bindings table from a binding-string -> command map,
// the shape a YAML config's "keybindings" section deserializes into.
func LoadMap(m map[string]string) (*Bindings, error) {
	b := NewBindings()
	for binding, command := range m {
		if err := b.Bind(binding, command); err != nil {
			return nil, errors.Wrapf(err, "keymap: loading binding %q", binding)
		}
	}
	return b, nil
}

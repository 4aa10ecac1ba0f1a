// Package keymap parses and renders keybinding names: the case-insensitive
// key and modifier vocabulary the editor's key-context dispatcher binds
// commands against, and the compound "Ctrl+S" rendering shown in menus.
package keymap

import (
	"strings"

	"github.com/fresh-editor/fresh/internal/errors"
)

// Code identifies a key independent of the modifiers held with it.
type Code int

const (
	CodeUnknown Code = iota
	CodeBackspace
	CodeEnter
	CodeLeft
	CodeRight
	CodeUp
	CodeDown
	CodeHome
	CodeEnd
	CodePageUp
	CodePageDown
	CodeTab
	CodeBackTab
	CodeDelete
	CodeInsert
	CodeEscape
	CodeSpace
	CodeF1
	CodeF2
	CodeF3
	CodeF4
	CodeF5
	CodeF6
	CodeF7
	CodeF8
	CodeF9
	CodeF10
	CodeF11
	CodeF12
	// CodeChar is a single printable character; Key.Char holds it.
	CodeChar
)

// names maps every accepted spelling (already lower-cased) to its Code.
// Aliases (Return/Enter, Del/Delete, Ins/Insert, Esc/Escape) resolve to
// the same Code; String always renders the first spelling listed for
// that code.
var names = map[string]Code{
	"backspace": CodeBackspace,
	"enter":     CodeEnter,
	"return":    CodeEnter,
	"left":      CodeLeft,
	"right":     CodeRight,
	"up":        CodeUp,
	"down":      CodeDown,
	"home":      CodeHome,
	"end":       CodeEnd,
	"pageup":    CodePageUp,
	"pagedown":  CodePageDown,
	"tab":       CodeTab,
	"backtab":   CodeBackTab,
	"delete":    CodeDelete,
	"del":       CodeDelete,
	"insert":    CodeInsert,
	"ins":       CodeInsert,
	"escape":    CodeEscape,
	"esc":       CodeEscape,
	"space":     CodeSpace,
	"f1":        CodeF1,
	"f2":        CodeF2,
	"f3":        CodeF3,
	"f4":        CodeF4,
	"f5":        CodeF5,
	"f6":        CodeF6,
	"f7":        CodeF7,
	"f8":        CodeF8,
	"f9":        CodeF9,
	"f10":       CodeF10,
	"f11":       CodeF11,
	"f12":       CodeF12,
}

// canonical renders each Code back to its display spelling.
var canonical = map[Code]string{
	CodeBackspace: "Backspace",
	CodeEnter:     "Enter",
	CodeLeft:      "Left",
	CodeRight:     "Right",
	CodeUp:        "Up",
	CodeDown:      "Down",
	CodeHome:      "Home",
	CodeEnd:       "End",
	CodePageUp:    "PageUp",
	CodePageDown:  "PageDown",
	CodeTab:       "Tab",
	CodeBackTab:   "BackTab",
	CodeDelete:    "Delete",
	CodeInsert:    "Insert",
	CodeEscape:    "Escape",
	CodeSpace:     "Space",
	CodeF1:        "F1",
	CodeF2:        "F2",
	CodeF3:        "F3",
	CodeF4:        "F4",
	CodeF5:        "F5",
	CodeF6:        "F6",
	CodeF7:        "F7",
	CodeF8:        "F8",
	CodeF9:        "F9",
	CodeF10:       "F10",
	CodeF11:       "F11",
	CodeF12:       "F12",
}

// ParseCode resolves a named key (case-insensitive) to its Code. A single
// rune that isn't one of the named keys parses as CodeChar.
func ParseCode(name string) (Code, rune, error) {
	lower := strings.ToLower(name)
	if code, ok := names[lower]; ok {
		return code, 0, nil
	}
	runes := []rune(name)
	if len(runes) == 1 {
		return CodeChar, runes[0], nil
	}
	return CodeUnknown, 0, errors.Errorf("keymap: unknown key name %q", name)
}

// String renders a Code to its canonical display name.
func (c Code) String() string {
	if s, ok := canonical[c]; ok {
		return s
	}
	return "Unknown"
}

// Modifier is one held modifier key.
type Modifier int

const (
	ModCtrl Modifier = iota
	ModAlt
	ModShift
	ModSuper
)

var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"shift":   ModShift,
	"super":   ModSuper,
	"meta":    ModSuper,
}

var modifierCanonical = map[Modifier]string{
	ModCtrl:  "Ctrl",
	ModAlt:   "Alt",
	ModShift: "Shift",
	ModSuper: "Super",
}

// ParseModifier resolves a named modifier (case-insensitive).
func ParseModifier(name string) (Modifier, error) {
	if m, ok := modifierNames[strings.ToLower(name)]; ok {
		return m, nil
	}
	return 0, errors.Errorf("keymap: unknown modifier name %q", name)
}

func (m Modifier) String() string {
	if s, ok := modifierCanonical[m]; ok {
		return s
	}
	return "Unknown"
}

// modifierOrder fixes the rendering order of a compound binding,
// matching the conventional Ctrl+Alt+Shift+Super ordering.
var modifierOrder = []Modifier{ModCtrl, ModAlt, ModShift, ModSuper}

// Key is a key press plus the modifiers held with it.
type Key struct {
	Code      Code
	Char      rune
	Modifiers map[Modifier]bool
}

// NewKey builds a Key for a named code with no character payload.
func NewKey(code Code, mods ...Modifier) Key {
	k := Key{Code: code, Modifiers: make(map[Modifier]bool, len(mods))}
	for _, m := range mods {
		k.Modifiers[m] = true
	}
	return k
}

// NewCharKey builds a Key for a single printable character.
func NewCharKey(ch rune, mods ...Modifier) Key {
	k := NewKey(CodeChar, mods...)
	k.Char = ch
	return k
}

// HasModifier reports whether m is held.
func (k Key) HasModifier(m Modifier) bool { return k.Modifiers[m] }

// String renders the compound binding, e.g. "Ctrl+S".
func (k Key) String() string {
	var b strings.Builder
	for _, m := range modifierOrder {
		if k.Modifiers[m] {
			b.WriteString(m.String())
			b.WriteByte('+')
		}
	}
	if k.Code == CodeChar {
		b.WriteString(strings.ToUpper(string(k.Char)))
	} else {
		b.WriteString(k.Code.String())
	}
	return b.String()
}

// Parse parses a compound binding string like "Ctrl+Shift+S" or "Escape"
// into a Key. Segments are split on "+"; every segment but the last must
// be a modifier name, the last must be a key name or single character.
func Parse(binding string) (Key, error) {
	parts := strings.Split(binding, "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return Key{}, errors.Errorf("keymap: empty binding %q", binding)
	}

	mods := make(map[Modifier]bool)
	for _, part := range parts[:len(parts)-1] {
		m, err := ParseModifier(part)
		if err != nil {
			return Key{}, err
		}
		mods[m] = true
	}

	last := parts[len(parts)-1]
	code, ch, err := ParseCode(last)
	if err != nil {
		return Key{}, err
	}
	return Key{Code: code, Char: ch, Modifiers: mods}, nil
}

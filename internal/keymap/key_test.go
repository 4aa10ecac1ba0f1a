package keymap

import (
	"testing"

	"github.com/fresh-editor/fresh/internal/test"
)

func TestParseSingleKeyName(t *testing.T) {
	for _, name := range []string{"Backspace", "backspace", "BACKSPACE"} {
		k, err := Parse(name)
		test.OK(t, err)
		test.Equals(t, CodeBackspace, k.Code)
	}
}

func TestParseAliases(t *testing.T) {
	enter, err := Parse("Return")
	test.OK(t, err)
	test.Equals(t, CodeEnter, enter.Code)

	del, err := Parse("Del")
	test.OK(t, err)
	test.Equals(t, CodeDelete, del.Code)

	esc, err := Parse("Esc")
	test.OK(t, err)
	test.Equals(t, CodeEscape, esc.Code)
}

func TestParseCompoundBinding(t *testing.T) {
	k, err := Parse("Ctrl+S")
	test.OK(t, err)
	test.Equals(t, CodeChar, k.Code)
	test.Equals(t, 'S', k.Char)
	test.Assert(t, k.HasModifier(ModCtrl), "expected Ctrl modifier")
	test.Equals(t, "Ctrl+S", k.String())
}

func TestParseCompoundBindingMultipleModifiers(t *testing.T) {
	k, err := Parse("Ctrl+Shift+Tab")
	test.OK(t, err)
	test.Equals(t, CodeTab, k.Code)
	test.Assert(t, k.HasModifier(ModCtrl), "expected Ctrl modifier")
	test.Assert(t, k.HasModifier(ModShift), "expected Shift modifier")
	test.Equals(t, "Ctrl+Shift+Tab", k.String())
}

func TestParseCaseInsensitiveModifierNames(t *testing.T) {
	k, err := Parse("CONTROL+alt+F5")
	test.OK(t, err)
	test.Equals(t, CodeF5, k.Code)
	test.Assert(t, k.HasModifier(ModCtrl), "expected Ctrl modifier")
	test.Assert(t, k.HasModifier(ModAlt), "expected Alt modifier")
}

func TestParseUnknownKeyName(t *testing.T) {
	_, err := Parse("Ctrl+NotAKey")
	test.Assert(t, err != nil, "expected an error for an unknown multi-character key name")
}

func TestParseEmptyBinding(t *testing.T) {
	_, err := Parse("")
	test.Assert(t, err != nil, "expected an error for an empty binding")
}

func TestSingleCharacterNoModifiers(t *testing.T) {
	k, err := Parse("a")
	test.OK(t, err)
	test.Equals(t, CodeChar, k.Code)
	test.Equals(t, 'a', k.Char)
	test.Equals(t, "A", k.String())
}

func TestModifierRenderOrderIsStable(t *testing.T) {
	k := NewCharKey('p', ModSuper, ModShift, ModAlt, ModCtrl)
	test.Equals(t, "Ctrl+Alt+Shift+Super+P", k.String())
}

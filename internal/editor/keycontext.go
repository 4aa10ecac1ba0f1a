package editor

// PaneContext is the dispatcher's notion of which pane currently owns
// key input.
type PaneContext int

const (
	ContextEditor PaneContext = iota
	ContextFileExplorer
	ContextMenu
	ContextPopup
	ContextPrompt
	ContextSettings
)

var paneContextNames = map[PaneContext]string{
	ContextEditor:       "editor",
	ContextFileExplorer: "file_explorer",
	ContextMenu:         "menu",
	ContextPopup:        "popup",
	ContextPrompt:       "prompt",
	ContextSettings:     "settings",
}

func (p PaneContext) String() string {
	if s, ok := paneContextNames[p]; ok {
		return s
	}
	return "unknown"
}

// KeyContextTransition is a named trigger the dispatcher recognises,
// independent of the concrete key that produced it (key-to-trigger
// mapping lives in internal/keymap).
type KeyContextTransition int

const (
	TransitionNone KeyContextTransition = iota
	TransitionEscape
	TransitionToggleFileExplorer
	TransitionClickEditorPane
	TransitionClickFileExplorerPane
	TransitionOpenMenu
	TransitionOpenPopup
	TransitionOpenPrompt
	TransitionOpenSettings
)

// KeyContext holds the pane currently focused.
type KeyContext struct {
	current PaneContext
}

func newKeyContext() KeyContext { return KeyContext{current: ContextEditor} }

func (k KeyContext) Current() PaneContext { return k.current }

// Apply advances the key-context state machine. Only ContextEditor
// forwards keys to buffer editing; every other context consumes input
// itself.
func (k *KeyContext) Apply(t KeyContextTransition) {
	switch t {
	case TransitionEscape:
		k.current = ContextEditor
	case TransitionToggleFileExplorer:
		if k.current == ContextFileExplorer {
			k.current = ContextEditor
		} else {
			k.current = ContextFileExplorer
		}
	case TransitionClickEditorPane:
		k.current = ContextEditor
	case TransitionClickFileExplorerPane:
		k.current = ContextFileExplorer
	case TransitionOpenMenu:
		k.current = ContextMenu
	case TransitionOpenPopup:
		k.current = ContextPopup
	case TransitionOpenPrompt:
		k.current = ContextPrompt
	case TransitionOpenSettings:
		k.current = ContextSettings
	case TransitionNone:
	}
}

// EditsBuffer reports whether the currently focused pane is allowed to
// perform buffer edits.
func (k KeyContext) EditsBuffer() bool { return k.current == ContextEditor }

package editor

// Viewport describes the visible window onto a buffer.
type Viewport struct {
	TopByte         int
	Height          int
	Width           int
	LeftColumn      int
	LineWrapEnabled bool
}

// DefaultViewport returns a viewport sized for a typical terminal.
func DefaultViewport() Viewport {
	return Viewport{Height: 24, Width: 80}
}

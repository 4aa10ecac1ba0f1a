package recovery

import (
	"os"
	"path/filepath"

	"github.com/fresh-editor/fresh/internal/errors"
)

// DataDir returns the editor's data directory per the XDG base directory
// spec, creating it if necessary: $XDG_DATA_HOME/fresh, falling back to
// ~/.local/share/fresh.
func DataDir() (string, error) {
	xdgData := os.Getenv("XDG_DATA_HOME")
	home := os.Getenv("HOME")

	if xdgData == "" && home == "" {
		return "", errors.New("unable to locate data directory (XDG_DATA_HOME and HOME unset)")
	}

	var dir string
	if xdgData != "" {
		dir = filepath.Join(xdgData, "fresh")
	} else {
		dir = filepath.Join(home, ".local", "share", "fresh")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", errors.WithStack(err)
	}
	return dir, nil
}

package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/fresh-editor/fresh/internal/errors"
)

// OpenTarget is the parsed form of the positional FILE argument: a path,
// optionally followed by a 1-based line and column.
type OpenTarget struct {
	Path   string
	Line   int
	Column int
	IsDir  bool
}

// parseOpenTarget accepts "path", "path:line", or "path:line:col". The
// argument is split on every ':'; more than three segments, or a line or
// column segment that is not a number, is an error. Drive-letter paths
// ("C:\foo") are not special-cased, so their own colon counts as a
// separator.
func parseOpenTarget(arg string) (OpenTarget, error) {
	parts := strings.Split(arg, ":")

	target := OpenTarget{Path: parts[0]}
	switch len(parts) {
	case 1:
		// no-op: bare path
	case 2:
		line, err := strconv.Atoi(parts[1])
		if err != nil {
			return OpenTarget{}, errors.Errorf("invalid line number in %q", arg)
		}
		target.Line = line
	case 3:
		line, err := strconv.Atoi(parts[1])
		if err != nil {
			return OpenTarget{}, errors.Errorf("invalid line number in %q", arg)
		}
		col, err := strconv.Atoi(parts[2])
		if err != nil {
			return OpenTarget{}, errors.Errorf("invalid column number in %q", arg)
		}
		target.Line = line
		target.Column = col
	default:
		return OpenTarget{}, errors.Errorf("too many ':' separators in %q", arg)
	}

	info, err := os.Stat(target.Path)
	if err == nil {
		target.IsDir = info.IsDir()
	}
	return target, nil
}

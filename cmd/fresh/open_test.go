package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fresh-editor/fresh/internal/test"
)

func TestParseOpenTargetBarePath(t *testing.T) {
	target, err := parseOpenTarget("main.go")
	test.OK(t, err)
	test.Equals(t, "main.go", target.Path)
	test.Equals(t, 0, target.Line)
	test.Equals(t, 0, target.Column)
}

func TestParseOpenTargetPathLine(t *testing.T) {
	target, err := parseOpenTarget("main.go:42")
	test.OK(t, err)
	test.Equals(t, "main.go", target.Path)
	test.Equals(t, 42, target.Line)
}

func TestParseOpenTargetPathLineColumn(t *testing.T) {
	target, err := parseOpenTarget("main.go:42:7")
	test.OK(t, err)
	test.Equals(t, "main.go", target.Path)
	test.Equals(t, 42, target.Line)
	test.Equals(t, 7, target.Column)
}

func TestParseOpenTargetInvalidLine(t *testing.T) {
	_, err := parseOpenTarget("main.go:notanumber")
	test.Assert(t, err != nil, "expected an error for a non-numeric line")
}

func TestParseOpenTargetTooManySeparators(t *testing.T) {
	_, err := parseOpenTarget("main.go:1:2:3")
	test.Assert(t, err != nil, "expected an error for too many ':' separators")
}

func TestParseOpenTargetDetectsDirectory(t *testing.T) {
	dir := t.TempDir()
	target, err := parseOpenTarget(dir)
	test.OK(t, err)
	test.Assert(t, target.IsDir, "expected %s to be detected as a directory", dir)
}

func TestParseOpenTargetDetectsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	test.OK(t, os.WriteFile(path, []byte("x"), 0o644))

	target, err := parseOpenTarget(path)
	test.OK(t, err)
	test.Assert(t, !target.IsDir, "expected %s to not be detected as a directory", path)
}

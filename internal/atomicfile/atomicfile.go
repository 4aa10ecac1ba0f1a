// Package atomicfile writes files the way a crash-safe editor must: to a
// temporary name in the target directory, fsync'd, then renamed over the
// final path. A reader never observes a partially written file.
package atomicfile

import (
	"io"
	"os"
	"path/filepath"

	"github.com/fresh-editor/fresh/internal/debug"
	"github.com/fresh-editor/fresh/internal/errors"
)

// Write atomically replaces path with data.
func Write(path string, data []byte) error {
	return WriteReader(path, newByteReader(data), int64(len(data)))
}

// WriteReader atomically replaces path with the contents read from rd.
// size, if known, is used to preallocate the temp file; pass 0 if unknown.
func WriteReader(path string, rd io.Reader, size int64) (err error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+".tmp-")
	if errors.Is(err, os.ErrNotExist) {
		debug.Log("directory %v missing, creating it", dir)
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return errors.WithStack(mkErr)
		}
		f, err = os.CreateTemp(dir, base+".tmp-")
	}
	if err != nil {
		return errors.WithStack(err)
	}

	tmpName := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if size > 0 {
		_ = f.Truncate(size)
	}

	written, err := io.Copy(f, rd)
	if err != nil {
		return errors.WithStack(err)
	}
	if size > 0 && written != size {
		return errors.Errorf("wrote %d bytes instead of the expected %d", written, size)
	}

	if err = f.Sync(); err != nil {
		return errors.WithStack(err)
	}
	if err = f.Close(); err != nil {
		return errors.WithStack(err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return errors.WithStack(err)
	}

	return fsyncDir(dir)
}

// fsyncDir commits a rename to disk so a crash right after Write cannot
// leave the directory entry pointing at the old file. Best-effort: some
// filesystems (exfat, certain network mounts) reject fsync on a directory
// handle, and that is not treated as fatal.
func fsyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return errors.WithStack(err)
	}
	defer d.Close()

	if err := d.Sync(); err != nil {
		debug.Log("fsync of directory %v failed (ignored): %v", dir, err)
	}
	return nil
}

type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader { return &byteReader{data: data} }

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

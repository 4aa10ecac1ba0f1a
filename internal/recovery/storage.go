package recovery

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fresh-editor/fresh/internal/atomicfile"
	"github.com/fresh-editor/fresh/internal/errors"
)

const (
	metaExt        = "meta.json"
	contentExt     = "content"
	sessionLockName = "session.lock"
)

// Storage is the file-I/O layer for the recovery system: every write
// goes through atomicfile, every content/chunk blob is zstd-compressed
// on disk, and every path derives from an entry's ID plus a fixed
// extension so listing the directory never needs an index file.
type Storage struct {
	dir string
}

// NewStorage locates the recovery directory under the editor's data
// directory.
func NewStorage() (*Storage, error) {
	data, err := DataDir()
	if err != nil {
		return nil, err
	}
	return &Storage{dir: filepath.Join(data, "recovery")}, nil
}

// NewStorageAt is NewStorage with an explicit directory, for tests.
func NewStorageAt(dir string) *Storage {
	return &Storage{dir: dir}
}

// BaseDir returns the storage's recovery directory.
func (s *Storage) BaseDir() string { return s.dir }

func (s *Storage) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (s *Storage) sessionLockPath() string {
	return filepath.Join(s.dir, sessionLockName)
}

func (s *Storage) metaPath(id string) string {
	return filepath.Join(s.dir, id+"."+metaExt)
}

func (s *Storage) contentPath(id string) string {
	return filepath.Join(s.dir, id+"."+contentExt)
}

func (s *Storage) chunkPath(id string, index int) string {
	return filepath.Join(s.dir, id+".chunk."+itoa(index))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// --- session lock -----------------------------------------------------

// CreateSessionLock writes a fresh session lock for the current process.
func (s *Storage) CreateSessionLock() (SessionInfo, error) {
	if err := s.ensureDir(); err != nil {
		return SessionInfo{}, err
	}
	info := newSessionInfo()
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return SessionInfo{}, errors.WithStack(err)
	}
	if err := atomicfile.Write(s.sessionLockPath(), data); err != nil {
		return SessionInfo{}, err
	}
	return info, nil
}

// UpdateSessionLock rewrites the lock with a fresh timestamp (heartbeat).
func (s *Storage) UpdateSessionLock() error {
	path := s.sessionLockPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	info := newSessionInfo()
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	return atomicfile.Write(path, data)
}

// RemoveSessionLock deletes the lock on clean shutdown.
func (s *Storage) RemoveSessionLock() error {
	err := os.Remove(s.sessionLockPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.WithStack(err)
	}
	return nil
}

// ReadSessionLock returns the current lock's contents, or nil if absent.
func (s *Storage) ReadSessionLock() (*SessionInfo, error) {
	data, err := os.ReadFile(s.sessionLockPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var info SessionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, errors.WithStack(err)
	}
	return &info, nil
}

// DetectCrash reports whether a lock exists for a PID that is not running.
func (s *Storage) DetectCrash() (bool, error) {
	info, err := s.ReadSessionLock()
	if err != nil {
		return false, err
	}
	if info == nil {
		return false, nil
	}
	return !info.IsRunning(), nil
}

// --- buffer IDs ---------------------------------------------------------

// BufferID returns the recovery ID for an (optional) original path.
func (s *Storage) BufferID(path *string) string {
	if path != nil {
		return PathHash(*path)
	}
	return GenerateBufferID()
}

// --- Full format ---------------------------------------------------------

// SaveRecovery writes (or updates) a Full-format recovery entry.
func (s *Storage) SaveRecovery(id string, content []byte, originalPath, bufferName *string, lineCount *int) (Metadata, error) {
	if err := s.ensureDir(); err != nil {
		return Metadata{}, err
	}

	checksum := ComputeChecksum(content)
	originalMtime := mtimeOf(originalPath)

	meta, err := s.readMetadata(id)
	if err != nil {
		return Metadata{}, err
	}
	var metadata Metadata
	if meta != nil {
		metadata = *meta
		metadata.touch(checksum, int64(len(content)), lineCount)
	} else {
		metadata = newMetadataBase(originalPath, bufferName, checksum, int64(len(content)), lineCount, originalMtime)
	}

	packed, err := compress(content)
	if err != nil {
		return Metadata{}, err
	}
	if err := atomicfile.Write(s.contentPath(id), packed); err != nil {
		return Metadata{}, err
	}

	if err := s.writeMetadata(id, metadata); err != nil {
		return Metadata{}, err
	}
	return metadata, nil
}

// --- Chunked format --------------------------------------------------------

// SaveChunkedRecovery writes (or replaces) a Chunked-format recovery entry:
// only the modified regions are persisted, keyed by their offset into the
// original file.
func (s *Storage) SaveChunkedRecovery(id string, chunks []Chunk, originalPath, bufferName *string, lineCount *int, originalFileSize, finalSize int) (Metadata, error) {
	if err := s.ensureDir(); err != nil {
		return Metadata{}, err
	}

	if err := s.deleteChunkFiles(id); err != nil {
		return Metadata{}, err
	}

	data := ChunkedData{OriginalSize: originalFileSize, FinalSize: finalSize, Chunks: chunks}

	var totalBytes int64
	for i, c := range data.Chunks {
		packed, err := compress(c.Content)
		if err != nil {
			return Metadata{}, err
		}
		if err := atomicfile.Write(s.chunkPath(id, i), packed); err != nil {
			return Metadata{}, err
		}
		totalBytes += int64(len(c.Content))
	}

	index := data.toIndex()
	checksum := index.ComputeChecksum()
	originalMtime := mtimeOf(originalPath)

	meta, err := s.readMetadata(id)
	if err != nil {
		return Metadata{}, err
	}
	var metadata Metadata
	if meta != nil {
		metadata = *meta
	} else {
		metadata = newChunkedMetadataBase(originalPath, bufferName, checksum, totalBytes, lineCount, originalMtime, len(data.Chunks), originalFileSize)
	}
	metadata.Format = FormatChunked
	metadata.OriginalFileSize = &originalFileSize
	metadata.touch(checksum, totalBytes, lineCount)
	chunkCount := len(data.Chunks)
	metadata.ChunkCount = &chunkCount
	metadata.ChunkedIndex = &index

	if err := s.writeMetadata(id, metadata); err != nil {
		return Metadata{}, err
	}
	return metadata, nil
}

// ReadChunkedContent loads a chunked entry's index and every chunk's
// (decompressed) content.
func (s *Storage) ReadChunkedContent(id string) (*ChunkedData, error) {
	meta, err := s.readMetadata(id)
	if err != nil {
		return nil, err
	}
	if meta == nil || meta.ChunkedIndex == nil {
		return nil, nil
	}
	index := *meta.ChunkedIndex

	chunks := make([]Chunk, len(index.Chunks))
	for i, cm := range index.Chunks {
		path := s.chunkPath(id, i)
		packed, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Errorf("chunk file %s not found", path)
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}
		content, err := decompress(packed)
		if err != nil {
			return nil, err
		}
		actual := ComputeChecksum(content)
		if actual != cm.Checksum {
			return nil, errors.Errorf("chunk %d checksum mismatch: expected %s, got %s", i, cm.Checksum, actual)
		}
		chunks[i] = Chunk{Offset: cm.Offset, OriginalLen: cm.OriginalLen, Content: content, Checksum: cm.Checksum}
	}

	return &ChunkedData{OriginalSize: index.OriginalSize, FinalSize: index.FinalSize, Chunks: chunks}, nil
}

// ReconstructFromChunks rebuilds the full modified content by splicing
// the saved chunks into the original file read from disk.
func (s *Storage) ReconstructFromChunks(id, originalFile string) ([]byte, error) {
	data, err := s.ReadChunkedContent(id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.New("chunked recovery data not found")
	}

	original, err := os.ReadFile(originalFile)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(original) != data.OriginalSize {
		return nil, errors.Errorf("original file size mismatch: expected %d, got %d", data.OriginalSize, len(original))
	}

	result := make([]byte, 0, data.FinalSize)
	pos := 0
	for _, c := range data.Chunks {
		if !c.Verify() {
			return nil, errors.Errorf("chunk at offset %d failed checksum verification", c.Offset)
		}
		if c.Offset > pos {
			result = append(result, original[pos:c.Offset]...)
		}
		result = append(result, c.Content...)
		pos = c.Offset + c.OriginalLen
	}
	if pos < len(original) {
		result = append(result, original[pos:]...)
	}
	return result, nil
}

// --- reads / listing / cleanup -------------------------------------------

func (s *Storage) readMetadata(id string) (*Metadata, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WithStack(err)
	}
	return &m, nil
}

func (s *Storage) writeMetadata(id string, m Metadata) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	return atomicfile.Write(s.metaPath(id), data)
}

// ReadContent returns a Full-format entry's decompressed content.
func (s *Storage) ReadContent(id string) ([]byte, error) {
	packed, err := os.ReadFile(s.contentPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return decompress(packed)
}

// LoadEntry builds an Entry for id if its backing files are all present.
func (s *Storage) LoadEntry(id string) (*Entry, error) {
	metaPath := s.metaPath(id)
	metadata, err := s.readMetadata(id)
	if err != nil {
		return nil, err
	}
	if metadata == nil {
		return nil, nil
	}

	contentPath := s.contentPath(id)
	switch metadata.Format {
	case FormatFull:
		if _, err := os.Stat(contentPath); errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
	case FormatChunked:
		chunks, err := s.listChunkPaths(id)
		if err != nil {
			return nil, err
		}
		if len(chunks) == 0 {
			return nil, nil
		}
	}

	return &Entry{ID: id, Metadata: *metadata, ContentPath: contentPath, MetadataPath: metaPath}, nil
}

// VerifyChecksum re-derives an entry's checksum from its stored blob(s)
// and compares it against the metadata's recorded checksum.
func (s *Storage) VerifyChecksum(e *Entry) (bool, error) {
	if e.Metadata.Format == FormatChunked {
		if e.Metadata.ChunkedIndex == nil {
			return false, errors.New("chunked recovery missing index in metadata")
		}
		return e.Metadata.ChunkedIndex.ComputeChecksum() == e.Metadata.Checksum, nil
	}
	content, err := s.ReadContent(e.ID)
	if err != nil {
		return false, err
	}
	return ComputeChecksum(content) == e.Metadata.Checksum, nil
}

func (s *Storage) listChunkPaths(id string) ([]string, error) {
	prefix := id + ".chunk."
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var paths []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) {
			paths = append(paths, filepath.Join(s.dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Storage) deleteChunkFiles(id string) error {
	paths, err := s.listChunkPaths(id)
	if err != nil {
		return err
	}
	for _, p := range paths {
		_ = os.Remove(p)
	}
	return nil
}

// DeleteRecovery removes every file belonging to id.
func (s *Storage) DeleteRecovery(id string) error {
	if err := os.Remove(s.contentPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.WithStack(err)
	}
	if err := s.deleteChunkFiles(id); err != nil {
		return err
	}
	if err := os.Remove(s.metaPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.WithStack(err)
	}
	return nil
}

// ListEntries returns every recoverable entry, newest-updated first.
func (s *Storage) ListEntries() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var entries []Entry
	suffix := "." + metaExt
	for _, de := range dirEntries {
		name := de.Name()
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		id := strings.TrimSuffix(name, suffix)
		entry, err := s.LoadEntry(id)
		if err != nil || entry == nil {
			continue
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Metadata.UpdatedAt > entries[j].Metadata.UpdatedAt
	})
	return entries, nil
}

// CleanupOrphans removes any files whose companion metadata or content
// is missing (a partial write interrupted by a crash mid-save).
func (s *Storage) CleanupOrphans() (int, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.WithStack(err)
	}

	cleaned := 0
	seen := make(map[string]bool)
	for _, de := range dirEntries {
		name := de.Name()
		if name == sessionLockName {
			continue
		}

		var id string
		switch {
		case strings.HasSuffix(name, "."+metaExt):
			id = strings.TrimSuffix(name, "."+metaExt)
		case strings.HasSuffix(name, "."+contentExt):
			id = strings.TrimSuffix(name, "."+contentExt)
		case strings.Contains(name, ".chunk."):
			id = strings.SplitN(name, ".chunk.", 2)[0]
		default:
			continue
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		_, metaErr := os.Stat(s.metaPath(id))
		hasMeta := metaErr == nil
		_, contentErr := os.Stat(s.contentPath(id))
		hasContent := contentErr == nil
		chunks, _ := s.listChunkPaths(id)

		valid := hasMeta && (hasContent || len(chunks) > 0)
		if !valid {
			_ = s.DeleteRecovery(id)
			cleaned++
		}
	}
	return cleaned, nil
}

// CleanupAll deletes every recovery file except the session lock and
// returns the number of entries (metadata files) removed.
func (s *Storage) CleanupAll() (int, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.WithStack(err)
	}

	cleaned := 0
	for _, de := range dirEntries {
		if de.Name() == sessionLockName {
			continue
		}
		if os.Remove(filepath.Join(s.dir, de.Name())) == nil && strings.HasSuffix(de.Name(), "."+metaExt) {
			cleaned++
		}
	}
	return cleaned, nil
}

func mtimeOf(path *string) *int64 {
	if path == nil {
		return nil
	}
	info, err := os.Stat(*path)
	if err != nil {
		return nil
	}
	secs := info.ModTime().Unix()
	return &secs
}

// Package recovery implements crash-safe durability for dirty buffers: a
// session lock file for crash detection, and periodic full or chunked
// snapshots that can reconstruct unsaved edits after an abnormal exit.
package recovery

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// MaxChunkSize bounds a single chunk's content before the caller should
// start a new chunk (1 MiB, matching the Full/Chunked size threshold).
const MaxChunkSize = 1024 * 1024

// FormatVersion is written into every RecoveryMetadata for forward
// compatibility; a future format bump can branch on this field.
const FormatVersion = 1

// Format distinguishes a single-blob snapshot from a chunked one.
type Format int

const (
	FormatFull Format = iota
	FormatChunked
)

func (f Format) String() string {
	if f == FormatChunked {
		return "chunked"
	}
	return "full"
}

// ChunkMeta is the on-disk (metadata-only) description of one chunk; its
// binary content lives in a sibling `<id>.chunk.<n>` file.
type ChunkMeta struct {
	Offset      int    `json:"offset"`
	OriginalLen int    `json:"original_len"`
	Size        int    `json:"size"`
	Checksum    string `json:"checksum"`
}

// Chunk is a ChunkMeta paired with its in-memory content, as produced by
// the caller while accumulating edits to a large buffer.
type Chunk struct {
	Offset      int
	OriginalLen int
	Content     []byte
	Checksum    string
}

// NewChunk computes the chunk's checksum from its content.
func NewChunk(offset, originalLen int, content []byte) Chunk {
	return Chunk{
		Offset:      offset,
		OriginalLen: originalLen,
		Content:     content,
		Checksum:    ComputeChecksum(content),
	}
}

// Verify reports whether the chunk's content still matches its checksum.
func (c Chunk) Verify() bool {
	return ComputeChecksum(c.Content) == c.Checksum
}

func (c Chunk) toMeta() ChunkMeta {
	return ChunkMeta{Offset: c.Offset, OriginalLen: c.OriginalLen, Size: len(c.Content), Checksum: c.Checksum}
}

// ChunkedIndex is the JSON-serialized chunk table embedded in a chunked
// entry's metadata file.
type ChunkedIndex struct {
	OriginalSize int         `json:"original_size"`
	FinalSize    int         `json:"final_size"`
	Chunks       []ChunkMeta `json:"chunks"`
}

// ComputeChecksum computes the composite checksum used in
// RecoveryMetadata.Checksum: the per-chunk checksums over a metadata
// header string, never the chunk bytes themselves, so verifying a
// chunked entry stays cheap regardless of original file size.
func (idx ChunkedIndex) ComputeChecksum() string {
	sums := make([]string, len(idx.Chunks))
	for i, c := range idx.Chunks {
		sums[i] = c.Checksum
	}
	header := fmt.Sprintf("%d:%d:%d", idx.OriginalSize, idx.FinalSize, len(idx.Chunks))
	return ComputeCompositeChecksum(sums, header)
}

// ChunkedData is ChunkedIndex with each chunk's content loaded, used when
// building or reconstructing a chunked entry in memory.
type ChunkedData struct {
	OriginalSize int
	FinalSize    int
	Chunks       []Chunk
}

func (d ChunkedData) toIndex() ChunkedIndex {
	metas := make([]ChunkMeta, len(d.Chunks))
	for i, c := range d.Chunks {
		metas[i] = c.toMeta()
	}
	return ChunkedIndex{OriginalSize: d.OriginalSize, FinalSize: d.FinalSize, Chunks: metas}
}

// Metadata is the JSON sidecar stored next to every recovery entry's
// content (Full) or chunk files (Chunked).
type Metadata struct {
	OriginalPath    *string       `json:"original_path,omitempty"`
	BufferName      *string       `json:"buffer_name,omitempty"`
	CreatedAt       int64         `json:"created_at"`
	UpdatedAt       int64         `json:"updated_at"`
	Checksum        string        `json:"checksum"`
	ContentSize     int64         `json:"content_size"`
	LineCount       *int          `json:"line_count,omitempty"`
	OriginalMtime   *int64        `json:"original_mtime,omitempty"`
	FormatVersion   int           `json:"format_version"`
	Format          Format        `json:"format"`
	ChunkCount      *int          `json:"chunk_count,omitempty"`
	OriginalFileSize *int         `json:"original_file_size,omitempty"`
	ChunkedIndex    *ChunkedIndex `json:"chunked_index,omitempty"`
}

// MarshalJSON renders Format as its lowercase name rather than an int, so
// the on-disk metadata reads the way a human inspecting a recovery
// directory would expect.
func (f Format) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

// UnmarshalJSON accepts both the lowercase name and (defensively) a bare
// "Full"/"Chunked" in case an older metadata file used Rust's enum casing.
func (f *Format) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"chunked"`, `"Chunked"`:
		*f = FormatChunked
	default:
		*f = FormatFull
	}
	return nil
}

// IsChunked reports whether this entry uses the Chunked format.
func (m Metadata) IsChunked() bool { return m.Format == FormatChunked }

// DisplayName is a human-facing label for a recovery prompt.
func (m Metadata) DisplayName() string {
	if m.OriginalPath != nil {
		return *m.OriginalPath
	}
	if m.BufferName != nil {
		return *m.BufferName
	}
	return "Unknown buffer"
}

func newMetadataBase(originalPath, bufferName *string, checksum string, contentSize int64, lineCount *int, originalMtime *int64) Metadata {
	now := time.Now().Unix()
	return Metadata{
		OriginalPath:  originalPath,
		BufferName:    bufferName,
		CreatedAt:     now,
		UpdatedAt:     now,
		Checksum:      checksum,
		ContentSize:   contentSize,
		LineCount:     lineCount,
		OriginalMtime: originalMtime,
		FormatVersion: FormatVersion,
		Format:        FormatFull,
	}
}

func newChunkedMetadataBase(originalPath, bufferName *string, checksum string, contentSize int64, lineCount *int, originalMtime *int64, chunkCount, originalFileSize int) Metadata {
	m := newMetadataBase(originalPath, bufferName, checksum, contentSize, lineCount, originalMtime)
	m.Format = FormatChunked
	m.ChunkCount = &chunkCount
	m.OriginalFileSize = &originalFileSize
	return m
}

func (m *Metadata) touch(checksum string, contentSize int64, lineCount *int) {
	m.UpdatedAt = time.Now().Unix()
	m.Checksum = checksum
	m.ContentSize = contentSize
	m.LineCount = lineCount
}

// SessionInfo is the JSON content of the session lock file: enough to
// tell, on the next startup, whether the previous process is still alive.
type SessionInfo struct {
	PID        int     `json:"pid"`
	StartedAt  int64   `json:"started_at"`
	WorkingDir *string `json:"working_dir,omitempty"`
}

func newSessionInfo() SessionInfo {
	return SessionInfo{PID: currentPID(), StartedAt: time.Now().Unix()}
}

// IsRunning reports whether the process named in this session lock is
// still alive.
func (s SessionInfo) IsRunning() bool {
	return isProcessRunning(s.PID)
}

// Entry is the in-memory handle to a recoverable buffer: its metadata
// plus the paths of its backing files, as returned by listing the
// recovery directory.
type Entry struct {
	ID           string
	Metadata     Metadata
	ContentPath  string
	MetadataPath string
}

// AgeSeconds is how long ago this entry was last updated.
func (e Entry) AgeSeconds() int64 {
	age := time.Now().Unix() - e.Metadata.UpdatedAt
	if age < 0 {
		return 0
	}
	return age
}

// Result is the outcome of loading a recovery entry.
type Result struct {
	Recovered    bool
	OriginalPath *string
	Content      []byte
	Corrupted    bool
	CorruptID    string
	Reason       string
}

// ComputeChecksum is the SHA-256 hex digest of data.
func ComputeChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}

// ComputeCompositeChecksum hashes a metadata header together with a list
// of already-computed checksums, so verifying a chunked entry never
// requires re-reading the chunks themselves.
func ComputeCompositeChecksum(chunkChecksums []string, metadata string) string {
	h := sha256.New()
	h.Write([]byte(metadata))
	for _, c := range chunkChecksums {
		h.Write([]byte(c))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// PathHash derives a stable recovery-entry ID from an original file path.
func PathHash(path string) string {
	sum := sha256.Sum256([]byte(path))
	return fmt.Sprintf("%x", sum)[:16]
}

// GenerateBufferID mints an ID for a buffer with no backing path (a new,
// never-saved file): a hex timestamp, distinct enough from any PathHash
// output (which is exactly 16 hex characters) to tell the two apart.
func GenerateBufferID() string {
	return fmt.Sprintf("unsaved_%x", time.Now().UnixNano())
}

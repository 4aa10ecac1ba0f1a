package recovery

import (
	"os"
	"sync"
	"time"
)

// Config tunes the recovery service; the zero value is not valid, use
// DefaultConfig.
type Config struct {
	Enabled              bool
	AutoSaveIntervalSecs uint32
	MaxRecoveryAgeSecs   uint64
}

// DefaultConfig matches the original editor's defaults: recovery on,
// autosave every 2 seconds, stale entries pruned after a week.
func DefaultConfig() Config {
	return Config{
		Enabled:              true,
		AutoSaveIntervalSecs: 2,
		MaxRecoveryAgeSecs:   7 * 24 * 60 * 60,
	}
}

// Service is the high-level recovery API the editor's buffer lifecycle
// calls into: session bookkeeping plus save/load/cleanup of entries.
// Concurrency: one Service is shared by the autosave scheduler (a
// background goroutine) and the main loop, so every operation is guarded
// by mu.
type Service struct {
	mu             sync.Mutex
	storage        *Storage
	config         Config
	lastSaveTimes  map[string]time.Time
	sessionStarted bool
}

// New creates a recovery service backed by the default on-disk location.
func New() (*Service, error) {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig is New with an explicit Config.
func NewWithConfig(cfg Config) (*Service, error) {
	storage, err := NewStorage()
	if err != nil {
		return nil, err
	}
	return &Service{storage: storage, config: cfg, lastSaveTimes: make(map[string]time.Time)}, nil
}

// NewAt is NewWithConfig against an explicit directory, for tests.
func NewAt(dir string, cfg Config) *Service {
	return &Service{storage: NewStorageAt(dir), config: cfg, lastSaveTimes: make(map[string]time.Time)}
}

// IsEnabled reports whether the service is configured to do anything.
func (s *Service) IsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Enabled
}

// Storage exposes the underlying storage layer for callers (like the
// autosave scheduler) that need direct access beyond this API.
func (s *Service) Storage() *Storage { return s.storage }

// --- session management ---------------------------------------------------

// ShouldOfferRecovery reports whether the previous session crashed and
// left behind at least one recoverable entry.
func (s *Service) ShouldOfferRecovery() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.config.Enabled {
		return false, nil
	}
	crashed, err := s.storage.DetectCrash()
	if err != nil || !crashed {
		return false, err
	}
	entries, err := s.storage.ListEntries()
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

// StartSession writes the session lock, marking this process as "the
// editor currently running" for crash detection.
func (s *Service) StartSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.config.Enabled {
		return nil
	}
	if _, err := s.storage.CreateSessionLock(); err != nil {
		return err
	}
	s.sessionStarted = true
	return nil
}

// EndSession is the clean-shutdown counterpart to StartSession: it clears
// every recovery entry (the user is exiting normally, nothing to
// recover) and removes the lock.
func (s *Service) EndSession() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.config.Enabled || !s.sessionStarted {
		return 0, nil
	}
	cleaned, err := s.storage.CleanupAll()
	if err != nil {
		return 0, err
	}
	if err := s.storage.RemoveSessionLock(); err != nil {
		return cleaned, err
	}
	s.sessionStarted = false
	return cleaned, nil
}

// Heartbeat refreshes the session lock's timestamp; called periodically
// by the autosave scheduler while the session is active.
func (s *Service) Heartbeat() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.config.Enabled || !s.sessionStarted {
		return nil
	}
	return s.storage.UpdateSessionLock()
}

// --- buffer tracking -------------------------------------------------------

// NeedsAutoSave reports whether a recovery-pending buffer has gone long
// enough since its last save to warrant another one.
func (s *Service) NeedsAutoSave(bufferID string, recoveryPending bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.config.Enabled || !recoveryPending {
		return false
	}
	interval := time.Duration(s.config.AutoSaveIntervalSecs) * time.Second
	last, ok := s.lastSaveTimes[bufferID]
	if !ok {
		return true
	}
	return time.Since(last) >= interval
}

// BufferID derives the recovery ID for an (optional) backing path.
func (s *Service) BufferID(path *string) string {
	return s.storage.BufferID(path)
}

// --- recovery operations ----------------------------------------------------

// SaveBuffer persists a Full-format snapshot of bufferID's content.
func (s *Service) SaveBuffer(bufferID string, content []byte, originalPath, bufferName *string, lineCount *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.config.Enabled {
		return nil
	}
	if _, err := s.storage.SaveRecovery(bufferID, content, originalPath, bufferName, lineCount); err != nil {
		return err
	}
	s.lastSaveTimes[bufferID] = time.Now()
	return nil
}

// SaveBufferChunked persists a Chunked-format snapshot: only the
// modified regions, for buffers too large to duplicate wholesale.
func (s *Service) SaveBufferChunked(bufferID string, chunks []Chunk, originalPath, bufferName *string, lineCount *int, originalFileSize, finalSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.config.Enabled {
		return nil
	}
	if _, err := s.storage.SaveChunkedRecovery(bufferID, chunks, originalPath, bufferName, lineCount, originalFileSize, finalSize); err != nil {
		return err
	}
	s.lastSaveTimes[bufferID] = time.Now()
	return nil
}

// DeleteBufferRecovery removes bufferID's recovery files, called once the
// buffer has been saved normally or closed.
func (s *Service) DeleteBufferRecovery(bufferID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.config.Enabled {
		return nil
	}
	if err := s.storage.DeleteRecovery(bufferID); err != nil {
		return err
	}
	delete(s.lastSaveTimes, bufferID)
	return nil
}

// ListRecoverable returns every recoverable entry.
func (s *Service) ListRecoverable() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.ListEntries()
}

// LoadRecovery verifies and loads a single entry's content, reconstructing
// from the original file for Chunked entries.
func (s *Service) LoadRecovery(entry *Entry) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadRecoveryLocked(entry)
}

func (s *Service) loadRecoveryLocked(entry *Entry) (Result, error) {
	ok, err := s.storage.VerifyChecksum(entry)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Corrupted: true, CorruptID: entry.ID, Reason: "checksum mismatch - file may be corrupted"}, nil
	}

	if entry.Metadata.IsChunked() {
		if entry.Metadata.OriginalPath == nil {
			return Result{Corrupted: true, CorruptID: entry.ID, Reason: "chunked recovery without original file path"}, nil
		}
		originalPath := *entry.Metadata.OriginalPath
		if _, statErr := os.Stat(originalPath); statErr != nil {
			return Result{Corrupted: true, CorruptID: entry.ID, Reason: "original file not found: " + originalPath}, nil
		}
		content, err := s.storage.ReconstructFromChunks(entry.ID, originalPath)
		if err != nil {
			return Result{}, err
		}
		return Result{Recovered: true, OriginalPath: &originalPath, Content: content}, nil
	}

	content, err := s.storage.ReadContent(entry.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{Recovered: true, OriginalPath: entry.Metadata.OriginalPath, Content: content}, nil
}

// AcceptRecovery loads an entry and, on success, deletes its recovery
// files (the caller has now absorbed the content into a live buffer).
func (s *Service) AcceptRecovery(entry *Entry) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.loadRecoveryLocked(entry)
	if err != nil {
		return Result{}, err
	}
	if result.Recovered {
		if err := s.storage.DeleteRecovery(entry.ID); err != nil {
			return result, err
		}
	}
	return result, nil
}

// DiscardRecovery deletes a single entry without loading it.
func (s *Service) DiscardRecovery(entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.DeleteRecovery(entry.ID)
}

// DiscardAllRecovery deletes every recovery entry (the user dismissed the
// recovery prompt for all of them at once).
func (s *Service) DiscardAllRecovery() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.CleanupAll()
}

// --- maintenance -----------------------------------------------------------

// CleanupOld removes entries older than MaxRecoveryAgeSecs.
func (s *Service) CleanupOld() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.config.Enabled {
		return 0, nil
	}
	entries, err := s.storage.ListEntries()
	if err != nil {
		return 0, err
	}
	cleaned := 0
	for _, e := range entries {
		if uint64(e.AgeSeconds()) > s.config.MaxRecoveryAgeSecs {
			if s.storage.DeleteRecovery(e.ID) == nil {
				cleaned++
			}
		}
	}
	return cleaned, nil
}

// CleanupOrphans removes files whose companion piece is missing.
func (s *Service) CleanupOrphans() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.CleanupOrphans()
}

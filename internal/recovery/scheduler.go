package recovery

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/fresh-editor/fresh/internal/debug"
)

// BufferSnapshot is what a Provider hands the scheduler for one pending
// buffer: either Full content, or a Chunked set if the buffer tracks
// itself as large.
type BufferSnapshot struct {
	RecoveryPending bool
	OriginalPath    *string
	BufferName      *string
	LineCount       *int

	// Full format: Content is the whole buffer.
	Content []byte

	// Chunked format: set Chunked true and fill the remaining fields
	// instead of Content.
	Chunked          bool
	Chunks           []Chunk
	OriginalFileSize int
	FinalSize        int
}

// Provider retrieves the current state of one open buffer so the
// scheduler can decide whether it needs saving.
type Provider func() BufferSnapshot

// Scheduler drives the periodic heartbeat and auto-save sweep via
// robfig/cron, running each due buffer's save concurrently through
// errgroup and retrying a failed save with bounded exponential backoff
// (a transient fsync/rename failure should not drop a whole autosave
// cycle).
type Scheduler struct {
	service *Service
	cron    *cron.Cron

	mu        sync.Mutex
	providers map[string]Provider
}

// NewScheduler wires a Scheduler to an already-constructed Service.
func NewScheduler(service *Service) *Scheduler {
	return &Scheduler{
		service:   service,
		cron:      cron.New(cron.WithSeconds()),
		providers: make(map[string]Provider),
	}
}

// Register adds (or replaces) the provider for bufferID; it will be
// swept on every scheduler tick until Unregister is called.
func (s *Scheduler) Register(bufferID string, p Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[bufferID] = p
}

// Unregister stops tracking bufferID (call when a buffer is closed).
func (s *Scheduler) Unregister(bufferID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.providers, bufferID)
}

// Start begins the periodic tick at the service's configured autosave
// interval. The spec expresses "every N seconds" so the cron expression
// is built from the config rather than hardcoded.
func (s *Scheduler) Start() {
	interval := s.service.config.AutoSaveIntervalSecs
	if interval == 0 {
		interval = 2
	}
	spec := "@every " + (time.Duration(interval) * time.Second).String()
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		debug.Log("recovery: failed to schedule autosave ticker: %v", err)
		return
	}
	s.cron.Start()
}

// Stop halts the ticker; in-flight saves are allowed to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) tick() {
	if err := s.service.Heartbeat(); err != nil {
		debug.Log("recovery: heartbeat failed: %v", err)
	}

	s.mu.Lock()
	due := make(map[string]Provider, len(s.providers))
	for id, p := range s.providers {
		due[id] = p
	}
	s.mu.Unlock()

	g, _ := errgroup.WithContext(context.Background())
	for id, provider := range due {
		id, provider := id, provider
		g.Go(func() error {
			s.saveOne(id, provider)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) saveOne(bufferID string, provider Provider) {
	snapshot := provider()
	if !s.service.NeedsAutoSave(bufferID, snapshot.RecoveryPending) {
		return
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxElapsedTime = 2 * time.Second

	err := backoff.Retry(func() error {
		if snapshot.Chunked {
			return s.service.SaveBufferChunked(bufferID, snapshot.Chunks, snapshot.OriginalPath, snapshot.BufferName, snapshot.LineCount, snapshot.OriginalFileSize, snapshot.FinalSize)
		}
		return s.service.SaveBuffer(bufferID, snapshot.Content, snapshot.OriginalPath, snapshot.BufferName, snapshot.LineCount)
	}, bo)
	if err != nil {
		debug.Log("recovery: autosave failed for buffer %s: %v", bufferID, err)
	}
}

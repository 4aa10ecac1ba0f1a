package recovery

import (
	"os"
	"path/filepath"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestCrashFlow(t *testing.T) {
	dir := t.TempDir()

	svc1 := NewAt(dir, DefaultConfig())
	if err := svc1.StartSession(); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	path := "/test/file.txt"
	id := svc1.BufferID(&path)
	content := []byte("Test content for recovery")
	if err := svc1.SaveBuffer(id, content, &path, nil, nil); err != nil {
		t.Fatalf("SaveBuffer: %v", err)
	}
	// svc1 is dropped here without EndSession, simulating a crash.

	svc2 := NewAt(dir, DefaultConfig())
	should, err := svc2.ShouldOfferRecovery()
	if err != nil {
		t.Fatalf("ShouldOfferRecovery: %v", err)
	}
	if !should {
		t.Fatal("expected ShouldOfferRecovery to report true after a crash")
	}

	entries, err := svc2.ListRecoverable()
	if err != nil {
		t.Fatalf("ListRecoverable: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one recoverable entry, got %d", len(entries))
	}

	result, err := svc2.LoadRecovery(&entries[0])
	if err != nil {
		t.Fatalf("LoadRecovery: %v", err)
	}
	if !result.Recovered {
		t.Fatalf("expected Recovered true, reason=%q", result.Reason)
	}
	if string(result.Content) != string(content) {
		t.Fatalf("content mismatch: got %q want %q", result.Content, content)
	}
	if result.OriginalPath == nil || *result.OriginalPath != path {
		t.Fatalf("OriginalPath mismatch: got %v want %q", result.OriginalPath, path)
	}
}

func TestChunkedReconstruction(t *testing.T) {
	dir := t.TempDir()
	original := "Hello, this is the original content of the file!"
	originalPath := filepath.Join(dir, "original.txt")
	if err := os.WriteFile(originalPath, []byte(original), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	svc := NewAt(filepath.Join(dir, "data"), DefaultConfig())
	id := svc.BufferID(&originalPath)

	chunks := []Chunk{
		NewChunk(0, 0, []byte("PREFIX: ")),
		NewChunk(19, 8, []byte("MODIFIED")),
	}
	finalSize := len(original) + len("PREFIX: ") + (len("MODIFIED") - 8)
	if err := svc.SaveBufferChunked(id, chunks, &originalPath, nil, nil, len(original), finalSize); err != nil {
		t.Fatalf("SaveBufferChunked: %v", err)
	}

	entries, err := svc.ListRecoverable()
	if err != nil {
		t.Fatalf("ListRecoverable: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}

	result, err := svc.LoadRecovery(&entries[0])
	if err != nil {
		t.Fatalf("LoadRecovery: %v", err)
	}
	if !result.Recovered {
		t.Fatalf("expected Recovered true, reason=%q", result.Reason)
	}

	want := "PREFIX: Hello, this is the MODIFIED content of the file!"
	if string(result.Content) != want {
		t.Fatalf("reconstruction mismatch:\n got  %q\n want %q", result.Content, want)
	}
}

func TestFullRoundTrip(t *testing.T) {
	svc := NewAt(t.TempDir(), DefaultConfig())
	id := "unsaved_test"
	content := []byte("round trip content\nwith multiple lines\n")

	if err := svc.SaveBuffer(id, content, nil, strPtr("scratch"), nil); err != nil {
		t.Fatalf("SaveBuffer: %v", err)
	}

	entries, err := svc.ListRecoverable()
	if err != nil {
		t.Fatalf("ListRecoverable: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}

	ok, err := svc.Storage().VerifyChecksum(&entries[0])
	if err != nil {
		t.Fatalf("VerifyChecksum: %v", err)
	}
	if !ok {
		t.Fatal("expected checksum to verify for an untampered Full entry")
	}

	result, err := svc.AcceptRecovery(&entries[0])
	if err != nil {
		t.Fatalf("AcceptRecovery: %v", err)
	}
	if string(result.Content) != string(content) {
		t.Fatalf("content mismatch: got %q want %q", result.Content, content)
	}

	remaining, err := svc.ListRecoverable()
	if err != nil {
		t.Fatalf("ListRecoverable after accept: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected AcceptRecovery to delete the entry, %d remain", len(remaining))
	}
}

func TestChunkedRoundTripChecksum(t *testing.T) {
	dir := t.TempDir()
	original := "0123456789abcdefghij"
	originalPath := filepath.Join(dir, "orig.txt")
	if err := os.WriteFile(originalPath, []byte(original), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	svc := NewAt(filepath.Join(dir, "data"), DefaultConfig())
	id := svc.BufferID(&originalPath)
	chunks := []Chunk{NewChunk(5, 5, []byte("XYZ"))}
	if err := svc.SaveBufferChunked(id, chunks, &originalPath, nil, nil, len(original), len(original)-5+3); err != nil {
		t.Fatalf("SaveBufferChunked: %v", err)
	}

	entries, err := svc.ListRecoverable()
	if err != nil || len(entries) != 1 {
		t.Fatalf("ListRecoverable: %v entries=%d", err, len(entries))
	}
	ok, err := svc.Storage().VerifyChecksum(&entries[0])
	if err != nil {
		t.Fatalf("VerifyChecksum: %v", err)
	}
	if !ok {
		t.Fatal("expected checksum to verify for an untampered Chunked entry")
	}
}

func TestDetectCrashFreshSessionIsNotACrash(t *testing.T) {
	dir := t.TempDir()
	svc := NewAt(dir, DefaultConfig())
	if err := svc.StartSession(); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	defer svc.EndSession()

	crashed, err := svc.Storage().DetectCrash()
	if err != nil {
		t.Fatalf("DetectCrash: %v", err)
	}
	if crashed {
		t.Fatal("expected a live session (current PID) to not be detected as a crash")
	}
}

func TestDetectCrashStalePIDIsACrash(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	// PID 1 << 30 cannot be a running process on any real system; craft the
	// lock file directly rather than going through CreateSessionLock (which
	// always stamps the current, live PID).
	bogus := []byte(`{"pid":1073741824,"started_at":1}`)
	if err := os.WriteFile(filepath.Join(dir, sessionLockName), bogus, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	storage := NewStorageAt(dir)
	crashed, err := storage.DetectCrash()
	if err != nil {
		t.Fatalf("DetectCrash: %v", err)
	}
	if !crashed {
		t.Fatal("expected a lock with an unrunnable PID to be detected as a crash")
	}
}

func TestEndSessionClearsRecoveryEntries(t *testing.T) {
	dir := t.TempDir()
	svc := NewAt(dir, DefaultConfig())
	if err := svc.StartSession(); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	path := "/tmp/whatever.txt"
	id := svc.BufferID(&path)
	if err := svc.SaveBuffer(id, []byte("data"), &path, nil, nil); err != nil {
		t.Fatalf("SaveBuffer: %v", err)
	}

	cleaned, err := svc.EndSession()
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if cleaned != 1 {
		t.Fatalf("expected EndSession to clean 1 entry, cleaned %d", cleaned)
	}

	entries, err := svc.ListRecoverable()
	if err != nil {
		t.Fatalf("ListRecoverable: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries after EndSession, got %d", len(entries))
	}
}

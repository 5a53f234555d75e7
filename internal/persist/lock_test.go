package persist

import (
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireAndReleaseRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonl")
	l := NewFileLock(path)
	if err := l.Acquire(time.Second); err != nil {
		t.Fatalf("unexpected error acquiring uncontended lock: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("unexpected error releasing lock: %v", err)
	}
}

func TestAcquireTimesOutWhenAlreadyHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonl")
	holder := NewFileLock(path)
	if err := holder.Acquire(time.Second); err != nil {
		t.Fatalf("unexpected error acquiring first lock: %v", err)
	}
	defer holder.Release()

	contender := NewFileLock(path)
	if err := contender.Acquire(100 * time.Millisecond); err == nil {
		t.Fatalf("expected contender to fail acquiring an already-held lock")
	}
}

func TestAcquireDefaultsTimeoutWhenNonPositive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonl")
	l := NewFileLock(path)
	if err := l.Acquire(0); err != nil {
		t.Fatalf("unexpected error with default timeout: %v", err)
	}
	l.Release()
}

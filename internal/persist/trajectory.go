package persist

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"

	"coevolve/internal/coerr"
	"coevolve/internal/types"
)

// TrajectoryWriter appends Trajectory records to an append-only JSONL file
// under an exclusive lock. Writes that cannot acquire the lock within its
// timeout are demoted to a best-effort in-memory queue and drained on the
// next successful acquisition (spec §7 LockContention policy), rather than
// being dropped.
type TrajectoryWriter struct {
	path string
	lock *FileLock

	mu      sync.Mutex
	pending [][]byte
}

// NewTrajectoryWriter builds a writer appending to path (typically
// runs/trajectories.jsonl).
func NewTrajectoryWriter(path string) *TrajectoryWriter {
	return &TrajectoryWriter{path: path, lock: NewFileLock(path)}
}

// Append serializes traj to a single JSON line (§3: no embedded newlines)
// and appends it, draining any previously-buffered records first.
func (w *TrajectoryWriter) Append(traj types.Trajectory) error {
	line, err := encodeLine(traj)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.pending = append(w.pending, line)
	batch := w.pending
	w.mu.Unlock()

	if err := w.lock.Acquire(DefaultAcquireTimeout); err != nil {
		// Stay buffered; caller proceeds (spec: LockContention never
		// aborts the step).
		return nil
	}
	defer w.lock.Release()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return coerr.New(coerr.KindLockContention, map[string]interface{}{"path": w.path}, err)
	}
	defer f.Close()

	for _, ln := range batch {
		if _, err := f.Write(ln); err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.pending = w.pending[len(batch):]
	w.mu.Unlock()
	return nil
}

func encodeLine(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// json.Encoder.Encode appends exactly one trailing newline; the
	// encoded line itself must not contain embedded newlines (spec §3),
	// which json.Marshal already guarantees (it never emits raw newlines
	// inside string values — they are escaped as \n).
	return buf.Bytes(), nil
}

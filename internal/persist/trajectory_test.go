package persist

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"coevolve/internal/types"
)

func TestTrajectoryWriterAppendsOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trajectories.jsonl")
	w := NewTrajectoryWriter(path)

	if err := w.Append(types.Trajectory{Task: types.Task{TaskID: "t1"}, Result: "4"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Append(types.Trajectory{Task: types.Task{TaskID: "t2"}, Result: "5"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open trajectories file: %v", err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	if lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}
}

func TestEncodeLineHasNoEmbeddedNewlines(t *testing.T) {
	line, err := encodeLine(types.Trajectory{Reasoning: "line one\nline two"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trimmed := line[:len(line)-1] // drop the single trailing newline
	for _, b := range trimmed {
		if b == '\n' {
			t.Fatalf("encoded line contains an embedded raw newline: %q", line)
		}
	}
}

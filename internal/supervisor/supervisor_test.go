package supervisor_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/queuectl/queuectl/internal/registry"
	"github.com/queuectl/queuectl/internal/supervisor"
)

// Start spawns real queuectl child processes and is exercised at the
// CLI integration level (`worker start`); these tests cover Stop's
// registry reconciliation, which is the part with actual branching
// logic worth a unit test.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestStopOnEmptyRegistry(t *testing.T) {
	reg := &registry.Registry{Dir: filepath.Join(t.TempDir(), "pids")}
	s := supervisor.New(reg, ":memory:", testLogger())

	signaled, err := s.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if signaled != 0 {
		t.Fatalf("expected 0 signaled on an empty registry, got %d", signaled)
	}
}

func TestStopRemovesEntryForDeadProcess(t *testing.T) {
	reg := &registry.Registry{Dir: filepath.Join(t.TempDir(), "pids")}
	s := supervisor.New(reg, ":memory:", testLogger())

	// A PID very unlikely to correspond to a live process. Stop must
	// tolerate signaling a dead process as a no-op rather than an
	// error, and must still remove its stale registry entry.
	stale := registry.Entry{
		PID:        999999,
		WorkerID:   "stale-worker",
		StartedAt:  time.Now().UTC(),
		Executable: "/nonexistent/queuectl",
	}
	if err := reg.Write(stale); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Stop(); err != nil {
		t.Fatal(err)
	}

	count, err := reg.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("expected the stale entry to be removed, got %d remaining", count)
	}
}

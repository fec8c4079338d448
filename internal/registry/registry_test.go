package registry_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/queuectl/queuectl/internal/registry"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	return &registry.Registry{Dir: filepath.Join(t.TempDir(), "pids")}
}

func TestWriteListCount(t *testing.T) {
	r := newTestRegistry(t)

	entries := []registry.Entry{
		{PID: 111, WorkerID: "a", StartedAt: time.Now().UTC(), Executable: "/bin/queuectl"},
		{PID: 222, WorkerID: "b", StartedAt: time.Now().UTC(), Executable: "/bin/queuectl"},
	}
	for _, e := range entries {
		if err := r.Write(e); err != nil {
			t.Fatal(err)
		}
	}

	count, err := r.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 entries, got %d", count)
	}

	got, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	byPID := map[int]registry.Entry{}
	for _, e := range got {
		byPID[e.PID] = e
	}
	for _, want := range entries {
		got, ok := byPID[want.PID]
		if !ok {
			t.Fatalf("missing entry for pid %d", want.PID)
		}
		if got.WorkerID != want.WorkerID {
			t.Fatalf("pid %d: expected worker id %q, got %q", want.PID, want.WorkerID, got.WorkerID)
		}
	}
}

func TestRemove(t *testing.T) {
	r := newTestRegistry(t)

	entry := registry.Entry{PID: 333, WorkerID: "c", StartedAt: time.Now().UTC(), Executable: "/bin/queuectl"}
	if err := r.Write(entry); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove(333); err != nil {
		t.Fatal(err)
	}
	count, err := r.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("expected 0 entries after remove, got %d", count)
	}

	// Removing an already-absent entry is not an error.
	if err := r.Remove(333); err != nil {
		t.Fatalf("expected no error removing an absent entry, got %v", err)
	}
}

func TestListOnMissingDirectory(t *testing.T) {
	r := newTestRegistry(t)

	// The registry directory is only created on first Write; List and
	// Count must treat its absence as "no workers", not an error.
	entries, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
	count, err := r.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("expected count 0, got %d", count)
	}
}

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/queuectl/queuectl/internal/store"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	expected := []string{"enqueue", "status", "list", "config", "worker", "dlq", "internal"}
	for _, name := range expected {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestEnqueueStatusListFlow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "queue.db")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--db", dbPath, "enqueue", `{"id":"job-1","command":"true"}`})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "enqueued job-1") {
		t.Fatalf("expected enqueue confirmation, got %q", out.String())
	}

	out.Reset()
	rootCmd.SetArgs([]string{"--db", dbPath, "list", "--state", "pending"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "job-1") {
		t.Fatalf("expected job-1 in pending list, got %q", out.String())
	}

	out.Reset()
	rootCmd.SetArgs([]string{"--db", dbPath, "status"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "pending") {
		t.Fatalf("expected pending count in status output, got %q", out.String())
	}

	// Enqueuing the same id again must fail, not silently overwrite.
	out.Reset()
	rootCmd.SetArgs([]string{"--db", dbPath, "enqueue", `{"id":"job-1","command":"true"}`})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected an error re-enqueuing a duplicate id")
	}
}

func TestConfigSetAndGet(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "queue.db")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--db", dbPath, "config", "set", "max_retries", "5"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	rootCmd.SetArgs([]string{"--db", dbPath, "config", "get", "max_retries"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != "5" {
		t.Fatalf("expected \"5\", got %q", out.String())
	}

	out.Reset()
	rootCmd.SetArgs([]string{"--db", dbPath, "config", "set", "max_retries", "not-a-number"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected an error setting an invalid config value")
	}
}

func TestDlqListAndRetry(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "queue.db")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)

	// max_retries=0 so the very first failed attempt goes straight to dead.
	rootCmd.SetArgs([]string{"--db", dbPath, "config", "set", "max_retries", "0"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	rootCmd.SetArgs([]string{"--db", dbPath, "enqueue", `{"id":"job-1","command":"false"}`})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	job, err := s.FetchJobAtomically(ctx, time.Now())
	if err != nil || job == nil {
		t.Fatalf("expected to fetch job-1, got job=%v err=%v", job, err)
	}
	if err := s.MarkDead(ctx, job.ID, "boom", 1); err != nil {
		t.Fatal(err)
	}
	s.Close()

	out.Reset()
	rootCmd.SetArgs([]string{"--db", dbPath, "dlq", "list"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "job-1") {
		t.Fatalf("expected job-1 in dlq list, got %q", out.String())
	}

	out.Reset()
	rootCmd.SetArgs([]string{"--db", dbPath, "dlq", "retry", "job-1"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "requeued job-1") {
		t.Fatalf("expected requeue confirmation, got %q", out.String())
	}

	out.Reset()
	rootCmd.SetArgs([]string{"--db", dbPath, "dlq", "retry", "job-1"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected an error retrying a job that is no longer dead")
	}
}

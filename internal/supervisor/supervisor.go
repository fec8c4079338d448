// Package supervisor spawns and terminates worker OS processes and
// maintains their registry entries across restarts of the controlling
// queuectl invocation.
//
// There is no shared memory between the supervisor and the workers it
// spawns: coordination is exclusively (a) the persistent store and (b)
// OS signals via the PID registry. Child processes are started with
// Setpgid so they survive the supervisor process exiting.
package supervisor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/queuectl/queuectl/internal/registry"
)

// Supervisor spawns detached `queuectl internal worker-run` child
// processes against dbPath and tracks them in reg.
type Supervisor struct {
	reg    *registry.Registry
	dbPath string
	log    *slog.Logger
}

// New creates a Supervisor that records spawned workers in reg and
// points them at dbPath.
func New(reg *registry.Registry, dbPath string, log *slog.Logger) *Supervisor {
	return &Supervisor{reg: reg, dbPath: dbPath, log: log}
}

// Start spawns count detached worker processes and returns once all
// have been launched and registered. It does not wait for them to
// reach steady state.
func (s *Supervisor) Start(count int) error {
	if count < 1 {
		return fmt.Errorf("worker start: count must be >= 1, got %d", count)
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(s.reg.Dir, 0o755); err != nil {
		return err
	}

	var spawnErr error
	for i := 0; i < count; i++ {
		if err := s.spawnOne(exe); err != nil {
			spawnErr = errors.Join(spawnErr, err)
			continue
		}
	}
	return spawnErr
}

func (s *Supervisor) spawnOne(exe string) error {
	workerID := uuid.New().String()
	cmd := exec.Command(exe, "internal", "worker-run", "--db", s.dbPath, "--worker-id", workerID)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	logPath := filepath.Join(s.reg.Dir, fmt.Sprintf("pending-%d.log", time.Now().UnixNano()))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return fmt.Errorf("spawn worker: %w", err)
	}
	logFile.Close()

	pid := cmd.Process.Pid
	finalLog := filepath.Join(s.reg.Dir, fmt.Sprintf("%d.log", pid))
	_ = os.Rename(logPath, finalLog)

	// Release so the supervisor does not leak a goroutine waiting on a
	// detached child; the worker's own exit removes its registry entry.
	if err := cmd.Process.Release(); err != nil {
		s.log.Warn("release worker process handle failed", "pid", pid, "err", err)
	}

	entry := registry.Entry{
		PID:        pid,
		WorkerID:   workerID,
		StartedAt:  time.Now().UTC(),
		Executable: exe,
	}
	if err := s.reg.Write(entry); err != nil {
		return fmt.Errorf("register worker pid %d: %w", pid, err)
	}
	s.log.Info("spawned worker", "pid", pid, "worker_id", workerID)
	return nil
}

// Stop signals every registered worker for graceful shutdown and
// unregisters it. A registry entry whose process no longer exists is
// treated as already stopped, not as an error: the operator may simply
// re-issue stop.
func (s *Supervisor) Stop() (int, error) {
	entries, err := s.reg.List()
	if err != nil {
		return 0, err
	}
	signaled := 0
	for _, entry := range entries {
		if err := signalTerminate(entry.PID); err != nil && !isNoSuchProcess(err) {
			s.log.Warn("signal worker failed", "pid", entry.PID, "err", err)
		} else {
			signaled++
		}
		if err := s.reg.Remove(entry.PID); err != nil {
			s.log.Warn("remove registry entry failed", "pid", entry.PID, "err", err)
		}
	}
	return signaled, nil
}

func signalTerminate(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Signal(syscall.SIGTERM)
}

func isNoSuchProcess(err error) bool {
	return errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/queuectl/queuectl/internal/registry"
	"github.com/queuectl/queuectl/internal/worker"
)

// internalCmd groups subcommands that are implementation details of
// the supervisor rather than part of the documented user-facing
// surface — currently just worker-run, the re-exec entrypoint
// `worker start` uses to bring up a worker process in this same
// binary.
var internalCmd = &cobra.Command{
	Use:    "internal",
	Hidden: true,
}

var workerRunID string

var workerRunCmd = &cobra.Command{
	Use:    "worker-run",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorker(cmd.Context())
	},
}

func init() {
	workerRunCmd.Flags().StringVar(&workerRunID, "worker-id", "", "worker instance id assigned by the supervisor")
	internalCmd.AddCommand(workerRunCmd)
}

// runWorker is the body of a worker OS process: it runs the
// acquire/execute/settle loop until SIGTERM, then cleans up its own
// registry entry. The supervisor already wrote this process's
// registry entry at spawn time (it knows the PID immediately after
// Start); runWorker's own removal on exit is what makes the entry
// disappear "on clean worker exit" per the registry's lifecycle.
func runWorker(ctx context.Context) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	reg := registry.Default()
	pid := os.Getpid()
	defer reg.Remove(pid)

	workerLog := logger.With("worker_id", workerRunID, "pid", pid)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	defer signal.Stop(sigCh)

	w := worker.New(s, workerLog)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-sigCh
		workerLog.Info("received shutdown signal, draining")
		_ = w.Shutdown()
	}()

	return w.Run(runCtx)
}

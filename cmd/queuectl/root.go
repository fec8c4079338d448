package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/queuectl/queuectl/internal/store"
)

var (
	dbPath string
	debug  bool
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "queuectl",
	Short:         "Persistent background job queue with worker supervision",
	Long:          `queuectl enqueues shell commands, dispatches them to a pool of worker processes with retry/backoff, and manages a dead letter queue for jobs that exhaust their retry budget.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "queue.db", "path to the queue database")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(enqueueCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(dlqCmd)
	rootCmd.AddCommand(internalCmd)
}

// openStore opens and initializes the store at dbPath. Every command
// that touches storage calls this rather than holding a shared
// connection across the short-lived CLI invocation.
func openStore(ctx context.Context) (*store.Store, error) {
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.Initialize(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func fail(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

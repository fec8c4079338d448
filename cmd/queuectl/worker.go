package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/queuectl/queuectl/internal/registry"
	"github.com/queuectl/queuectl/internal/supervisor"
)

var workerStartCount int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start or stop the worker fleet",
}

var workerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Spawn detached worker processes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if workerStartCount < 1 {
			return fail("--count must be >= 1")
		}
		sup := supervisor.New(registry.Default(), dbPath, logger)
		if err := sup.Start(workerStartCount); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "started %d worker(s)\n", workerStartCount)
		return nil
	},
}

var workerStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Signal all registered workers for graceful shutdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sup := supervisor.New(registry.Default(), dbPath, logger)
		signaled, err := sup.Stop()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "signaled %d worker(s)\n", signaled)
		return nil
	},
}

func init() {
	workerStartCmd.Flags().IntVar(&workerStartCount, "count", 1, "number of worker processes to spawn")
	workerCmd.AddCommand(workerStartCmd)
	workerCmd.AddCommand(workerStopCmd)
}

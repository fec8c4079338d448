package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/queuectl/queuectl/internal/jobqueue"
)

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect and re-queue dead letter jobs",
}

var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs in the dead letter queue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		jobs, err := s.ListByState(ctx, jobqueue.Dead)
		if err != nil {
			return err
		}
		return printJobTable(cmd, jobs)
	},
}

var dlqRetryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Move a dead job back to pending with a fresh retry budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.DlqRequeue(ctx, id); err != nil {
			if errors.Is(err, jobqueue.ErrNotDead) {
				return fail("job %q is not dead", id)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "requeued %s\n", id)
		return nil
	},
}

func init() {
	dlqCmd.AddCommand(dlqListCmd)
	dlqCmd.AddCommand(dlqRetryCmd)
}

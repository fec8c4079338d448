package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/queuectl/queuectl/internal/jobqueue"
	"github.com/queuectl/queuectl/internal/registry"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show job counts by state and the active worker count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		summary, err := s.Summary(ctx)
		if err != nil {
			return err
		}
		workers, err := registry.Default().Count()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, st := range []jobqueue.Status{jobqueue.Pending, jobqueue.Processing, jobqueue.Completed, jobqueue.Dead} {
			fmt.Fprintf(w, "%s\t%d\n", st, summary[st])
		}
		fmt.Fprintf(w, "active workers\t%d\n", workers)
		return w.Flush()
	},
}

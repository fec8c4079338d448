package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/queuectl/queuectl/internal/jobqueue"
)

var listState string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs in a given state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := jobqueue.ParseStatus(listState)
		if err != nil || status == jobqueue.Unknown {
			return fail("list requires --state in {pending, processing, completed, dead}")
		}

		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		jobs, err := s.ListByState(ctx, status)
		if err != nil {
			return err
		}
		return printJobTable(cmd, jobs)
	},
}

func init() {
	listCmd.Flags().StringVar(&listState, "state", "", "job state to list: pending, processing, completed, dead")
}

func printJobTable(cmd *cobra.Command, jobs []*jobqueue.Job) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tATTEMPTS\tMAX_RETRIES\tRUN_AT\tEXIT_CODE\tLAST_ERROR")
	for _, j := range jobs {
		exitCode := "-"
		if j.ExitCode != nil {
			exitCode = fmt.Sprintf("%d", *j.ExitCode)
		}
		lastError := "-"
		if j.LastError != nil && *j.LastError != "" {
			lastError = *j.LastError
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			j.ID, j.Status, j.Attempts, j.MaxRetries,
			j.RunAt.Format("2006-01-02T15:04:05Z07:00"), exitCode, lastError)
	}
	return w.Flush()
}

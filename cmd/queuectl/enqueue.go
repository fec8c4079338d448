package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/queuectl/queuectl/internal/jobqueue"
)

// enqueueRequest is the exactly-two-required-fields JSON input format
// for enqueue. DisallowUnknownFields rejects any extra field.
type enqueueRequest struct {
	ID      string `json:"id"`
	Command string `json:"command"`
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <json>",
	Short: "Enqueue a new job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req enqueueRequest
		dec := json.NewDecoder(strings.NewReader(args[0]))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return fail("invalid enqueue payload: %v", err)
		}
		if req.ID == "" || req.Command == "" {
			return fail("enqueue payload requires non-empty \"id\" and \"command\"")
		}

		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		job, err := s.CreateJob(ctx, req.ID, req.Command)
		if err != nil {
			if errors.Is(err, jobqueue.ErrDuplicateID) {
				return fail("job id %q already exists", req.ID)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s (max_retries=%d)\n", job.ID, job.MaxRetries)
		return nil
	},
}

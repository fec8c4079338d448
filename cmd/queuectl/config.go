package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/queuectl/queuectl/internal/jobqueue"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or write queue configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value (max_retries, backoff_base)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ConfigSet(ctx, key, value); err != nil {
			switch {
			case errors.Is(err, jobqueue.ErrUnknownConfigKey):
				return fail("unknown config key %q", key)
			case errors.Is(err, jobqueue.ErrInvalidConfigValue):
				return fail("invalid value %q for key %q", value, key)
			default:
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the current value of a config key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		value, ok, err := s.ConfigGet(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			return fail("config key %q is unset", key)
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
}

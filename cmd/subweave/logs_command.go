package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"subweave/internal/ipc"
	"subweave/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		follow bool
		lines  int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: lines})
				if err != nil {
					return err
				}
				for _, line := range resp.Lines {
					fmt.Fprintln(out, line)
				}
				if !follow {
					return nil
				}
				offset := resp.Offset
				for {
					if cmd.Context().Err() != nil {
						return nil
					}
					resp, err := client.LogTail(ipc.LogTailRequest{
						Offset:     offset,
						Limit:      200,
						Follow:     true,
						WaitMillis: 2000,
					})
					if err != nil {
						return err
					}
					for _, line := range resp.Lines {
						fmt.Fprintln(out, line)
					}
					offset = resp.Offset
				}
			})
			if err == nil {
				return nil
			}
			if follow {
				return err
			}

			// Without a daemon fall back to reading the log file directly.
			cfg, cfgErr := ctx.ensureConfig()
			if cfgErr != nil {
				return cfgErr
			}
			logPath := filepath.Join(cfg.Paths.LogDir, "subweave.log")
			result, tailErr := logs.Tail(cmd.Context(), logPath, logs.TailOptions{Offset: -1, Limit: lines})
			if tailErr != nil {
				return fmt.Errorf("%w (local read of %s also failed: %v)", err, logPath, tailErr)
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "stream new log lines until interrupted")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of trailing lines to show first")
	return cmd
}

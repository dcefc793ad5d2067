package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subweave/internal/ipc"
	"subweave/internal/logging"
	"subweave/internal/workflow"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Trigger a watch-directory rescan",
		Long:  "Asks the running daemon for an immediate rescan. Without a daemon the watch roots are walked locally and the matching files are listed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Scan(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Rescan triggered")
				return nil
			})
			if err == nil {
				return nil
			}

			cfg, cfgErr := ctx.ensureConfig()
			if cfgErr != nil {
				return cfgErr
			}
			manager := workflow.NewManager(cfg, nil, logging.NewNop())
			emitted := manager.ScanOnce()
			fmt.Fprintf(cmd.OutOrStdout(), "Daemon not reachable; local scan found %d candidate(s)\n", emitted)
			for _, entry := range manager.Queue().Snapshot() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", entry.Path)
			}
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subweave/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test message to the configured webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if client, dialErr := ctx.dialClient(); dialErr == nil {
				defer client.Close()
				resp, err := client.TestNotification()
				if err != nil {
					return err
				}
				if !resp.Sent {
					return fmt.Errorf("test notification failed: %s", resp.Message)
				}
				fmt.Fprintln(out, "Test notification sent")
				return nil
			}

			// The daemon is not required for this; send from this process.
			cfg, cfgErr := ctx.ensureConfig()
			if cfgErr != nil {
				return cfgErr
			}
			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("test notification failed: %w", err)
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}

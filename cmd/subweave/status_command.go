package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"subweave/internal/ipc"
	"subweave/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, queue, and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			err = ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				snap := resp.Workflow

				fmt.Fprintln(out, "Daemon")
				fmt.Fprintln(out, renderStatusLine("Process", statusOK,
					fmt.Sprintf("running, pid %d, version %s", resp.PID, resp.Version), colorize))
				if snap.UptimeSeconds > 0 {
					fmt.Fprintln(out, renderStatusLine("Uptime", statusInfo,
						(time.Duration(snap.UptimeSeconds)*time.Second).String(), colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Queue depth", statusInfo,
					fmt.Sprintf("%d queued, %d active", snap.QueueDepth, len(snap.Active)), colorize))
				fmt.Fprintln(out, renderStatusLine("Jobs", statusInfo,
					fmt.Sprintf("%d processed, %d skipped, %d failed", snap.Processed, snap.Skipped, snap.Failed), colorize))
				if snap.LastError != "" {
					fmt.Fprintln(out, renderStatusLine("Last error", statusError, snap.LastError, colorize))
				}

				if len(snap.Health) > 0 {
					fmt.Fprintln(out, "\nHealth")
					for _, health := range snap.Health {
						kind := statusOK
						if !health.Ready {
							kind = statusError
						}
						fmt.Fprintln(out, renderStatusLine(health.Name, kind, health.Detail, colorize))
					}
				}

				if len(snap.Active) > 0 {
					rows := make([][]string, 0, len(snap.Active))
					for _, job := range snap.Active {
						rows = append(rows, []string{
							job.Path,
							fmt.Sprintf("%d", job.Priority),
							time.Since(job.StartedAt).Round(time.Second).String(),
						})
					}
					fmt.Fprintln(out, "\nActive jobs")
					fmt.Fprintln(out, renderTable(
						[]string{"Path", "Priority", "Running"},
						rows,
						[]columnAlignment{alignLeft, alignRight, alignRight}))
				}
				return nil
			})
			if err != nil {
				fmt.Fprintln(out, "Daemon")
				fmt.Fprintln(out, renderStatusLine("Process", statusWarn, "not running", colorize))
			}

			fmt.Fprintln(out, "\nDependencies")
			for _, status := range preflight.CheckSystemDeps(cfg) {
				kind := statusOK
				detail := status.Command
				if !status.Available {
					kind = statusError
					detail = status.Detail
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, detail, colorize))
			}
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subweave/internal/ipc"
	"subweave/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the processing queue",
	}
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued and in-flight videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueList()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(resp.Queued) == 0 && len(resp.Active) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(resp.Active)+len(resp.Queued))
				for _, job := range resp.Active {
					rows = append(rows, []string{"active", priorityName(job.Priority), job.Path})
				}
				for _, entry := range resp.Queued {
					rows = append(rows, []string{"queued", priorityName(entry.Priority), entry.Path})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"State", "Priority", "Path"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every queued (not yet running) video",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueClear()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d queued entr%s\n", resp.Removed, pluralY(resp.Removed))
				return nil
			})
		},
	}
}

func priorityName(p int) string {
	return queue.Priority(p).String()
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

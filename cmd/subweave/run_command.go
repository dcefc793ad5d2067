package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"subweave/internal/daemonrun"
	"subweave/internal/jobfiles"
	"subweave/internal/logging"
	"subweave/internal/pipeline"
	"subweave/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		force    bool
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Process a single video in the foreground",
		Long:  "Runs the full subtitle pipeline for one video without the daemon. The same markers are honored: a done marker skips the job unless --force is given, and the lock marker guards against a concurrently running daemon.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			videoPath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(videoPath)
			if err != nil {
				return fmt.Errorf("video file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("video file: %s is a directory", videoPath)
			}

			level := cfg.Logging.Level
			if logLevel != "" {
				level = logLevel
			}
			logger, err := logging.New(logging.Options{Level: level, Format: "console"})
			if err != nil {
				return err
			}

			naming := jobfiles.ResolveNaming(videoPath, cfg.Paths.OutputDir, cfg.Admission.OutputBesideVideo, "")
			if jobfiles.Exists(naming.DonePath()) && !force {
				fmt.Fprintf(cmd.OutOrStdout(), "Already processed (%s exists); use --force to redo\n", naming.DonePath())
				return nil
			}

			acquired, err := jobfiles.AcquireLock(naming.LockPath())
			if err != nil {
				return err
			}
			if !acquired {
				return fmt.Errorf("another process holds %s", naming.LockPath())
			}
			defer func() {
				if err := jobfiles.ReleaseLock(naming.LockPath()); err != nil {
					logger.Warn("release lock", logging.Args(logging.Error(err))...)
				}
			}()

			overrides, err := jobfiles.LoadOverrides(naming.OverridePath())
			if err != nil {
				logger.Warn("job overrides unreadable, ignoring", logging.Args(logging.Error(err))...)
			}

			deps, cleanup, err := daemonrun.BuildDeps(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()
			deps = workflow.GateFFmpeg(deps, cfg.Queue.FFmpegConcurrency)

			summary, err := pipeline.New(cfg, deps, logger).Process(cmd.Context(), naming, overrides)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case summary.EarlyExit:
				fmt.Fprintln(out, "Done (existing target subtitle reused)")
			case summary.Reused:
				fmt.Fprintln(out, "Done (source cues taken from an existing subtitle)")
			default:
				fmt.Fprintln(out, "Done")
			}
			for _, output := range summary.Outputs {
				fmt.Fprintf(out, "  %s\n", output)
			}
			fmt.Fprintf(out, "Run %s finished in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "process even when the done marker exists")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	return cmd
}

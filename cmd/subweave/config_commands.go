package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subweave/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	configCmd.AddCommand(newConfigNewCommand(ctx))
	configCmd.AddCommand(newConfigPathCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))
	return configCmd
}

func newConfigNewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "new",
		Short:       "Write a commented sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.configPath()
			if path == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample configuration written to %s\n", path)
			return nil
		},
	}
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the configuration file location",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resolvedPath, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resolvedPath)
			if !exists {
				fmt.Fprintln(out, "(file does not exist; built-in defaults apply)")
			}
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, resolvedPath, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Configuration file: %s\n\n", resolvedPath)
			} else {
				fmt.Fprintf(out, "Configuration file: %s (missing, defaults shown)\n\n", resolvedPath)
			}

			rows := [][]string{
				{"watch_dirs", strings.Join(cfg.Paths.WatchDirs, ", ")},
				{"output_dir", cfg.Paths.OutputDir},
				{"cache_dir", cfg.Paths.CacheDir},
				{"log_dir", cfg.Paths.LogDir},
				{"output_beside_video", yesNo(cfg.Admission.OutputBesideVideo)},
				{"worker_concurrency", fmt.Sprintf("%d", cfg.Queue.WorkerConcurrency)},
				{"max_active_jobs", fmt.Sprintf("%d", cfg.Queue.MaxActiveJobs)},
				{"ffmpeg_concurrency", fmt.Sprintf("%d", cfg.Queue.FFmpegConcurrency)},
				{"priority_enabled", yesNo(cfg.Queue.PriorityEnabled)},
				{"asr.backend", cfg.ASR.Backend},
				{"translate.enabled", yesNo(cfg.Translate.Enabled)},
				{"translate.simplified_target", cfg.Translate.SimplifiedTarget},
				{"metadata.enabled", yesNo(cfg.Metadata.Enabled)},
				{"ipc.socket_path", cfg.IPC.SocketPath},
				{"logging.level", cfg.Logging.Level},
				{"logging.format", cfg.Logging.Format},
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Setting", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"subweave/internal/logging"
	"subweave/internal/translate"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the translation cache",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cached translation counts per target language",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer cache.Close()

			perLang, total, err := cache.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache database: %s\n", cache.Path())
			if total == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}

			langs := make([]string, 0, len(perLang))
			for lang := range perLang {
				langs = append(langs, lang)
			}
			sort.Strings(langs)

			rows := make([][]string, 0, len(langs)+1)
			for _, lang := range langs {
				rows = append(rows, []string{lang, fmt.Sprintf("%d", perLang[lang])})
			}
			rows = append(rows, []string{"total", fmt.Sprintf("%d", total)})
			fmt.Fprintln(out, renderTable(
				[]string{"Language", "Entries"},
				rows,
				[]columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached translation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer cache.Close()

			removed, err := cache.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached translation(s)\n", removed)
			return nil
		},
	}
}

func openCache(ctx *commandContext) (*translate.SQLiteCache, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return translate.OpenCache(cfg.Paths.CacheDir, logging.NewNop())
}

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"subburn/internal/transcriptcache"
	"subburn/internal/workspace"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the transcript cache",
	}
	cmd.AddCommand(newCacheStatsCommand(ctx))
	cmd.AddCommand(newCachePruneCommand(ctx))
	cmd.AddCommand(newCacheDeleteCommand(ctx))
	return cmd
}

func openCache(ctx *commandContext) (*transcriptcache.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return transcriptcache.Open(cfg)
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cached transcript counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Path", store.Path()},
				{"Transcripts", strconv.Itoa(stats.Entries)},
				{"Words", strconv.FormatInt(stats.Words, 10)},
				{"Oldest", formatStamp(stats.Oldest)},
				{"Newest", formatStamp(stats.Newest)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows))
			return nil
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove transcripts not used recently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.Logging.RetentionDays
			}
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}
			store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Duration(days)*24*time.Hour)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d transcript(s) unused for %d day(s)\n", removed, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Age threshold in days (defaults to logging.retention_days)")
	return cmd
}

func newCacheDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <media>",
		Short: "Forget the cached transcript for a file or URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := transcriptcache.KeyForURL(args[0])
			if !workspace.IsRemote(args[0]) {
				var err error
				if key, err = transcriptcache.KeyForFile(args[0]); err != nil {
					return err
				}
			}
			store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", key)
			return nil
		},
	}
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"subburn/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		date   string
		filter logs.Filter
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show server log records",
		Long: "Print the last records from the server's daily JSON log, optionally\n" +
			"narrowed to one embed job or API request.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			day := time.Now()
			if date != "" {
				day, err = time.ParseInLocation("20060102", date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q (want YYYYMMDD)", date)
				}
			}
			path := cfg.LogPath(day)

			out := cmd.OutOrStdout()
			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines, Filter: filter})
			if err != nil {
				return err
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			offset := result.Offset
			for follow {
				result, err = logs.Tail(cmd.Context(), path, logs.TailOptions{
					Offset: offset,
					Follow: true,
					Wait:   time.Minute,
					Filter: filter,
				})
				if err != nil {
					return err
				}
				for _, line := range result.Lines {
					fmt.Fprintln(out, line)
				}
				offset = result.Offset
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of records to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new records")
	cmd.Flags().StringVar(&date, "date", "", "Day to read as YYYYMMDD (default today)")
	cmd.Flags().StringVar(&filter.JobID, "job", "", "Only records for this embed job ID")
	cmd.Flags().StringVar(&filter.RequestID, "request", "", "Only records for this API request ID")
	cmd.Flags().StringVar(&filter.EventType, "event", "", "Only records with this event_type")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level (debug, info, warn, error)")
	return cmd
}

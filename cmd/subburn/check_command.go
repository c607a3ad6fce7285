package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subburn/internal/blobstore"
	"subburn/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories, tools, storage and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			var results []preflight.Result
			store, err := blobstore.New(cfg)
			if err != nil {
				results = append(results, preflight.Result{Name: "Storage", Detail: err.Error()})
				results = append(results, preflight.RunAll(cmd.Context(), cfg, nil)...)
			} else {
				results = append(results, preflight.RunAll(cmd.Context(), cfg, store)...)
			}
			for _, status := range preflight.CheckSystemDeps(cmd.Context(), cfg) {
				detail := status.Command
				if !status.Available {
					detail = status.Detail
				}
				results = append(results, preflight.Result{Name: status.Name, Passed: status.Available, Detail: detail})
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, yesNo(r.Passed), r.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			fmt.Fprintln(out, renderTable([]string{"Check", "OK", "Detail"}, rows))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return errors.New(plural(len(failed), "check") + " failed")
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

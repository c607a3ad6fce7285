package preflight

import (
	"context"

	"subburn/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// StorageChecker is implemented by blob stores.
type StorageChecker interface {
	Check(ctx context.Context) error
	Name() string
}

// RunAll executes all applicable preflight checks for the given config. The
// storage check runs only when store is non-nil.
func RunAll(ctx context.Context, cfg *config.Config, store StorageChecker) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	if cfg.Media.MinFreeGiB > 0 {
		results = append(results, CheckFreeSpace("Work directory free space", cfg.Paths.WorkDir, uint64(cfg.Media.MinFreeGiB)<<30))
	}
	results = append(results, CheckAPIKey("AssemblyAI", cfg.AssemblyAI.APIKey))
	if store != nil {
		results = append(results, CheckStorage(ctx, store))
	}
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

package workspace

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subburn/internal/logging"
)

// CleanStaleResult lists the job directories removed and those that could
// not be inspected or removed.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes job directories under root whose creation time and last
// modification are both older than maxAge. Entries whose names are not job
// IDs are never touched.
func CleanStale(ctx context.Context, root string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	var result CleanStaleResult
	root = strings.TrimSpace(root)
	if root == "" {
		return result
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		created, isJob := jobCreated(entry.Name())
		if !entry.IsDir() || !isJob {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
			continue
		}
		lastUsed := info.ModTime()
		if created.After(lastUsed) {
			lastUsed = created
		}
		if !lastUsed.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale job directory", "workspace_cleanup_failed",
				logging.String("path", dir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dir)
		if logger != nil {
			logger.Debug("removed stale job directory",
				logging.String("path", dir),
				logging.Duration("idle", time.Since(lastUsed).Round(time.Second)),
				logging.String(logging.FieldEventType, "workspace_cleanup"),
			)
		}
	}
	return result
}

package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subburn/internal/fileutil"
	"subburn/internal/logging"
	"subburn/internal/textutil"
)

// ErrDownload marks a failed remote fetch. The HTTP status, when known, is in
// the error text.
var ErrDownload = errors.New("download failed")

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	lower := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch makes source available as a local file for the job. URLs are
// downloaded into the job directory; local paths must exist and are returned
// as absolute paths without copying.
func (m *Manager) Fetch(ctx context.Context, job *Job, source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", errors.New("empty media source")
	}
	if !IsRemote(source) {
		abs, err := filepath.Abs(source)
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", source, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("media source: %w", err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("media source %q is a directory", abs)
		}
		return abs, nil
	}
	return m.download(ctx, job, source)
}

func (m *Manager) download(ctx context.Context, job *Job, url string) (string, error) {
	name := textutil.FileNameFromURL(url, "input.mp4")
	if name == SubtitleFileName || name == OutputFileName {
		name = "source-" + name
	}
	dest := job.Path(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrDownload, err)
	}
	started := time.Now()
	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned %s", ErrDownload, url, resp.Status)
	}

	var written int64
	err = fileutil.WriteAtomicFunc(dest, 0o644, func(w io.Writer) error {
		n, err := io.Copy(w, resp.Body)
		written = n
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: write %s: %w", ErrDownload, dest, err)
	}
	m.logger.Info("media downloaded",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("path", dest),
		logging.Int64("bytes", written),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldEventType, "media_downloaded"),
	)
	return dest, nil
}

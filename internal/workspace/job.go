package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"subburn/internal/logging"
)

// jobTimeLayout prefixes every job ID; the remainder is eight hex digits.
const jobTimeLayout = "20060102_150405"

// Well-known file names inside a job directory.
const (
	SubtitleFileName = "styled_subtitles.ass"
	OutputFileName   = "output.mp4"
)

// Manager creates job directories under a root.
type Manager struct {
	root   string
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option customizes a Manager.
type Option func(*Manager)

// WithHTTPClient overrides the client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		if client != nil {
			m.client = client
		}
	}
}

// WithLogger sets the logger used for download and cleanup events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logging.NewComponentLogger(logger, "workspace")
	}
}

// NewManager returns a manager rooted at root.
func NewManager(root string, opts ...Option) *Manager {
	m := &Manager{
		root:   root,
		client: &http.Client{},
		logger: logging.NewNop(),
		now:    time.Now,
		newID:  func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:8] },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Root returns the directory holding job directories.
func (m *Manager) Root() string {
	return m.root
}

// Job is one embed run's scratch directory.
type Job struct {
	ID  string
	Dir string
}

// Path joins name onto the job directory.
func (j *Job) Path(name string) string {
	return filepath.Join(j.Dir, name)
}

// Remove deletes the job directory and everything in it.
func (j *Job) Remove() error {
	if j == nil || j.Dir == "" {
		return nil
	}
	return os.RemoveAll(j.Dir)
}

// Create makes a fresh job directory.
func (m *Manager) Create(ctx context.Context) (*Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(m.root) == "" {
		return nil, errors.New("workspace root is not configured")
	}
	id := m.now().Format(jobTimeLayout) + "_" + m.newID()
	dir := filepath.Join(m.root, id)
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create job directory: %w", err)
	}
	return &Job{ID: id, Dir: dir}, nil
}

// jobCreated parses the creation time encoded in a job ID. Names that do not
// look like job IDs report false.
func jobCreated(name string) (time.Time, bool) {
	stamp, suffix, ok := strings.Cut(name[min(len(name), len(jobTimeLayout)):], "_")
	if !ok || stamp != "" || len(suffix) != 8 {
		return time.Time{}, false
	}
	created, err := time.ParseInLocation(jobTimeLayout, name[:len(jobTimeLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return created, true
}

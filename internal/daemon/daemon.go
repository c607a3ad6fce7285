package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"subburn/internal/config"
	"subburn/internal/logging"
	"subburn/internal/workspace"
)

const (
	staleJobAge     = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
	logPattern      = "subburn-*.log"
)

// CachePruner removes cached transcripts that have not been used recently.
type CachePruner interface {
	Prune(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Daemon serves the API and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	handler http.Handler
	cache   CachePruner

	lockPath string
	lock     *flock.Flock

	server   *http.Server
	listener net.Listener
	done     chan struct{}
	stopOnce *sync.Once

	running atomic.Bool
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithCachePruner enables transcript cache pruning at startup. Entries idle
// for longer than logging.retention_days are removed.
func WithCachePruner(p CachePruner) Option {
	return func(d *Daemon) {
		d.cache = p
	}
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Address      string
	LockFilePath string
}

// New constructs a daemon serving handler.
func New(cfg *config.Config, handler http.Handler, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || handler == nil {
		return nil, errors.New("daemon requires config and handler")
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		handler:  handler,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Start acquires the lock, runs maintenance and begins serving. It returns
// once the listener is bound; serving stops when ctx is cancelled or Stop is
// called.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another subburn server instance is already running")
	}

	d.maintain(ctx)

	bind := strings.TrimSpace(d.cfg.Paths.APIBind)
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	d.listener = listener
	d.server = &http.Server{
		Handler:           d.handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	d.done = make(chan struct{})
	d.stopOnce = new(sync.Once)
	d.running.Store(true)

	go func() {
		defer close(d.done)
		if err := d.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(d.logger, "api server error", "api_server_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check api_bind and restart the server"),
			)
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			d.Stop()
		case <-d.done:
		}
	}()

	d.logger.Info("subburn server started",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldEventType, "server_started"),
	)
	return nil
}

// Stop shuts the HTTP server down gracefully and releases the lock.
// Concurrent callers block until shutdown completes.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.stopOnce.Do(d.shutdown)
}

func (d *Daemon) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("api server shutdown incomplete", logging.Error(err))
		_ = d.server.Close()
	}
	<-d.done
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release server lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("subburn server stopped", logging.String(logging.FieldEventType, "server_stopped"))
}

// Wait blocks until the server stops serving.
func (d *Daemon) Wait() {
	if d.done != nil {
		<-d.done
	}
}

// Addr returns the bound listener address, or "" before Start.
func (d *Daemon) Addr() string {
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		Address:      d.Addr(),
		LockFilePath: d.lockPath,
	}
}

func (d *Daemon) maintain(ctx context.Context) {
	result := workspace.CleanStale(ctx, d.cfg.Paths.WorkDir, staleJobAge, d.logger)
	if len(result.Removed) > 0 {
		d.logger.Info("stale job directories removed", logging.Int("count", len(result.Removed)))
	}

	retention := d.cfg.Logging.RetentionDays
	logging.PruneLogs(d.logger, d.cfg.Paths.LogDir, logPattern, d.cfg.LogPath(time.Now()), retention)

	if d.cache == nil || retention <= 0 {
		return
	}
	removed, err := d.cache.Prune(ctx, time.Duration(retention)*24*time.Hour)
	if err != nil {
		logging.WarnWithContext(d.logger, "transcript cache prune failed", "cache_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "stale transcripts remain cached"),
		)
		return
	}
	if removed > 0 {
		d.logger.Info("stale transcripts pruned",
			logging.Int64("count", removed),
			logging.String(logging.FieldEventType, "cache_pruned"),
		)
	}
}

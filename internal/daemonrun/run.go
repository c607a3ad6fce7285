package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"subburn/internal/api"
	"subburn/internal/config"
	"subburn/internal/daemon"
	"subburn/internal/logging"
	"subburn/internal/preflight"
)

// Options configures server runtime behavior.
type Options struct {
	// LogLevel overrides logging.level when set.
	LogLevel string
	// Bind overrides paths.api_bind when set.
	Bind string
}

// Run starts the server and blocks until SIGINT/SIGTERM or ctx cancellation.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if lvl := strings.TrimSpace(opts.LogLevel); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if bind := strings.TrimSpace(opts.Bind); bind != "" {
		cfg.Paths.APIBind = bind
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg, true)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(signalCtx, logger, cfg)

	pipeline, err := NewPipeline(cfg, logger)
	if err != nil {
		logger.Error("build pipeline", logging.Error(err))
		return err
	}
	defer pipeline.Close()

	var daemonOpts []daemon.Option
	if pipeline.Cache != nil {
		daemonOpts = append(daemonOpts, daemon.WithCachePruner(pipeline.Cache))
	}
	router := api.NewRouter(cfg, pipeline.Service, logger)
	d, err := daemon.New(cfg, router, logger, daemonOpts...)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("subburn server shutting down")
	d.Stop()
	return nil
}

func logDependencySnapshot(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("assemblyai_key_present", strings.TrimSpace(cfg.AssemblyAI.APIKey) != ""),
		logging.String("storage_backend", cfg.Storage.Backend),
	}
	for _, status := range preflight.CheckSystemDeps(ctx, cfg) {
		key := strings.ToLower(strings.ReplaceAll(status.Name, " ", "_"))
		attrs = append(attrs, logging.Bool(key+"_available", status.Available))
		if !status.Available {
			logging.WarnWithContext(logger, "dependency unavailable", "dependency_missing",
				logging.String("dependency", status.Name),
				logging.String("detail", status.Detail),
				logging.String(logging.FieldErrorHint, "install the tool or set its path under [media]"),
				logging.String(logging.FieldImpact, "embed requests will fail"),
				logging.Alert("dependency_missing"),
			)
		}
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}

package daemonrun

import (
	"context"
	"errors"
	"testing"

	"subburn/internal/config"
	"subburn/internal/logging"
	"subburn/internal/services"
	"subburn/internal/testsupport"
)

func TestNewPipelineWiresCollaborators(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.AssemblyAI.CacheEnabled = true

	p, err := NewPipeline(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })

	if p.Service == nil || p.Store == nil {
		t.Fatalf("expected service and store, got %+v", p)
	}
	if p.Store.Name() != config.StorageFilesystem {
		t.Fatalf("expected filesystem store, got %q", p.Store.Name())
	}
	if p.Cache == nil || p.Cache.Path() != cfg.TranscriptCachePath() {
		t.Fatalf("expected cache at %s", cfg.TranscriptCachePath())
	}
}

func TestNewPipelineWithoutAPIKey(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAssemblyAIKey(""))
	cfg.AssemblyAI.CacheEnabled = false

	p, err := NewPipeline(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	defer p.Close()
	if p.Cache != nil {
		t.Fatal("expected no cache when disabled")
	}

	_, err = p.Service.Transcribe(context.Background(), "https://cdn.test/a.mp3")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewPipelineRejectsBadStorage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Storage.Backend = "ftp"
	if _, err := NewPipeline(cfg, logging.NewNop()); err == nil {
		t.Fatal("expected unknown backend error")
	}
}

func TestNewPipelineRequiresConfig(t *testing.T) {
	if _, err := NewPipeline(nil, nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

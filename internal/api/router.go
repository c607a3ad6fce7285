package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"subburn/internal/config"
	"subburn/internal/layout"
	"subburn/internal/logging"
	"subburn/internal/subtitles"
	"subburn/internal/transcript"
)

// Pipeline is the subset of subtitles.Service the handlers call.
type Pipeline interface {
	Transcribe(ctx context.Context, source string) (subtitles.TranscribeResult, error)
	TranscriptByID(ctx context.Context, id string) (subtitles.TranscribeResult, error)
	Segment(ctx context.Context, utterances []transcript.Utterance) ([]transcript.Sentence, error)
	Render(ctx context.Context, cues []layout.Cue, cfg layout.Config) (subtitles.RenderResult, error)
	Embed(ctx context.Context, req subtitles.EmbedRequest) (subtitles.EmbedResult, error)
}

// Handler serves the HTTP API.
type Handler struct {
	pipeline Pipeline
	logger   *slog.Logger
}

// NewRouter builds the chi router with request IDs, logging, panic recovery,
// CORS, a body size cap and a per-request timeout taken from cfg.
func NewRouter(cfg *config.Config, pipeline Pipeline, logger *slog.Logger) http.Handler {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	logger = logging.NewComponentLogger(logger, "api")
	h := &Handler{pipeline: pipeline, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(corsOptions(cfg.API.AllowedOrigins)))

	r.Get("/healthz", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(maxBodySize(int64(cfg.API.MaxBodyMiB) << 20))
		if timeout := cfg.RequestTimeout(); timeout > 0 {
			r.Use(chimw.Timeout(timeout))
		}
		r.Post("/transcribe", h.Transcribe)
		r.Post("/segment", h.Segment)
		r.Post("/render", h.Render)
		r.Post("/embed_subtitle", h.EmbedSubtitle)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorType(w, r, http.StatusNotFound, "not_found", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorType(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method "+r.Method+" not allowed")
	})
	return r
}

package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"subburn/internal/config"
	"subburn/internal/logging"
	"subburn/internal/transcript"
)

// ProviderName identifies AssemblyAI in cache entries and logs.
const ProviderName = "assemblyai"

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("assemblyai api key is not configured")
	// ErrTranscriptFailed marks a transcript the provider finished with an
	// error status.
	ErrTranscriptFailed = errors.New("transcript failed")
	// ErrNotReady is returned by Fetch for transcripts still queued or
	// processing.
	ErrNotReady = errors.New("transcript not ready")
)

// transcriptsAPI is the subset of *aai.TranscriptService used here.
type transcriptsAPI interface {
	TranscribeFromURL(ctx context.Context, audioURL string, opts *aai.TranscriptOptionalParams) (aai.Transcript, error)
	TranscribeFromReader(ctx context.Context, reader io.Reader, opts *aai.TranscriptOptionalParams) (aai.Transcript, error)
	Get(ctx context.Context, transcriptID string) (aai.Transcript, error)
}

// Client wraps the AssemblyAI transcripts API.
type Client struct {
	api         transcriptsAPI
	cfg         config.AssemblyAI
	pollTimeout time.Duration
	logger      *slog.Logger
	httpClient  *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client handed to the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "transcription")
	}
}

// New builds a client from the [assemblyai] config section.
func New(cfg config.AssemblyAI, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		cfg:         cfg,
		pollTimeout: time.Duration(cfg.PollTimeoutSeconds) * time.Second,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var clientOpts []aai.ClientOption
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientOpts = append(clientOpts, aai.WithBaseURL(base))
	}
	if c.httpClient != nil {
		clientOpts = append(clientOpts, aai.WithHTTPClient(c.httpClient))
	}
	c.api = aai.NewClient(key, clientOpts...).Transcripts
	return c, nil
}

func newWithAPI(api transcriptsAPI, cfg config.AssemblyAI) *Client {
	return &Client{
		api:         api,
		cfg:         cfg,
		pollTimeout: time.Duration(cfg.PollTimeoutSeconds) * time.Second,
		logger:      logging.NewNop(),
	}
}

// Result is a completed transcript.
type Result struct {
	ID         string
	Text       string
	Utterances []transcript.Utterance
}

// Transcribe submits source and waits for the transcript to complete.
// Sources starting with http:// or https:// are passed to the provider by
// URL; anything else is read from disk and uploaded.
func (c *Client) Transcribe(ctx context.Context, source string) (Result, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return Result{}, errors.New("empty media source")
	}
	if c.pollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.pollTimeout)
		defer cancel()
	}

	params := c.params()
	started := time.Now()
	var (
		tr  aai.Transcript
		err error
	)
	if isRemote(source) {
		tr, err = c.api.TranscribeFromURL(ctx, source, params)
	} else {
		var f *os.File
		f, err = os.Open(source)
		if err != nil {
			return Result{}, fmt.Errorf("open media: %w", err)
		}
		defer f.Close()
		tr, err = c.api.TranscribeFromReader(ctx, f, params)
	}
	if err != nil {
		return Result{}, fmt.Errorf("assemblyai transcribe: %w", err)
	}

	result, err := toResult(tr)
	if err != nil {
		return Result{}, err
	}
	c.logger.Info("transcript completed",
		logging.String("transcript_id", result.ID),
		logging.Int("utterances", len(result.Utterances)),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldEventType, "transcript_completed"),
	)
	return result, nil
}

// Fetch retrieves a previously submitted transcript by ID.
func (c *Client) Fetch(ctx context.Context, id string) (Result, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Result{}, errors.New("empty transcript id")
	}
	tr, err := c.api.Get(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("assemblyai get %s: %w", id, err)
	}
	return toResult(tr)
}

func (c *Client) params() *aai.TranscriptOptionalParams {
	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(c.cfg.SpeakerLabels),
	}
	if lang := strings.TrimSpace(c.cfg.LanguageCode); lang != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(lang)
	} else {
		params.LanguageDetection = aai.Bool(true)
	}
	return params
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func toResult(tr aai.Transcript) (Result, error) {
	id := deref(tr.ID)
	switch tr.Status {
	case aai.TranscriptStatusCompleted:
	case aai.TranscriptStatusError:
		return Result{}, fmt.Errorf("%w: %s: %s", ErrTranscriptFailed, id, deref(tr.Error))
	default:
		return Result{}, fmt.Errorf("%w: %s is %s", ErrNotReady, id, tr.Status)
	}
	return Result{
		ID:         id,
		Text:       deref(tr.Text),
		Utterances: mapUtterances(tr),
	}, nil
}

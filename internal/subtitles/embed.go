package subtitles

import (
	"context"
	"errors"
	"os"
	"path"
	"strings"
	"time"

	"subburn/internal/blobstore"
	"subburn/internal/layout"
	"subburn/internal/logging"
	"subburn/internal/media/ffprobe"
	"subburn/internal/services"
	"subburn/internal/workspace"
)

// EmbedRequest asks for cues to be burned into a video.
type EmbedRequest struct {
	// VideoPath is an http(s) URL, a local file, or a stored object written
	// as "key:<key>" or "s3://<bucket>/<key>".
	VideoPath string
	Cues      []layout.Cue
}

// EmbedResult describes the published video.
type EmbedResult struct {
	JobID     string
	OutputURL string
	ObjectKey string
	Width     int
	Height    int
	Lines     int
}

// Embed fetches the video, renders cues at its resolution, burns them in and
// publishes the output. The job directory is removed afterwards unless
// media.keep_work_dirs is set.
func (s *Service) Embed(ctx context.Context, req EmbedRequest) (EmbedResult, error) {
	if strings.TrimSpace(req.VideoPath) == "" {
		return EmbedResult{}, services.Wrap(services.ErrValidation, "embed", "validate request", "video_path is required", nil)
	}
	if s.store == nil {
		return EmbedResult{}, services.Wrap(services.ErrConfiguration, "embed", "init", "No blob store configured", nil)
	}

	job, err := s.workspace.Create(ctx)
	if err != nil {
		return EmbedResult{}, services.Wrap(services.ErrTransient, "embed", "create workspace", "Failed to create job directory", err)
	}
	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, s.logger)
	if !s.config.Media.KeepWorkDirs {
		defer func() {
			if err := job.Remove(); err != nil {
				logging.WarnWithContext(logger, "failed to remove job directory", "workspace_cleanup_failed",
					logging.String("path", job.Dir),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "remove it manually or run subburn check"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
			}
		}()
	}
	started := time.Now()

	input, err := s.fetch(services.WithStage(ctx, "download"), job, req.VideoPath)
	if err != nil {
		return EmbedResult{}, err
	}

	width, height, err := s.inspect(services.WithStage(ctx, "inspect"), input)
	if err != nil {
		return EmbedResult{}, err
	}
	cfg := layout.Config{VideoWidth: width, VideoHeight: height}

	subtitlePath := job.Path(workspace.SubtitleFileName)
	events, err := s.RenderFile(services.WithStage(ctx, "render"), req.Cues, cfg, subtitlePath)
	if err != nil {
		return EmbedResult{}, err
	}

	outputPath := job.Path(workspace.OutputFileName)
	if err := s.burner.Burn(services.WithStage(ctx, "burn"), BurnRequest{
		InputPath:    input,
		SubtitlePath: subtitlePath,
		OutputPath:   outputPath,
		Width:        width,
		Height:       height,
	}); err != nil {
		marker := services.ErrExternalTool
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return EmbedResult{}, services.Wrap(marker, "burn", "ffmpeg", "Failed to burn subtitles into video", err)
	}

	key := blobstore.JobKey(job.ID, workspace.OutputFileName)
	obj, err := s.store.Put(services.WithStage(ctx, "upload"), key, outputPath)
	if err != nil {
		s.discardUpload(ctx, key)
		marker := services.ErrTransient
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return EmbedResult{}, services.Wrap(marker, "upload", s.store.Name(), "Failed to publish rendered video", err)
	}

	result := EmbedResult{
		JobID:     job.ID,
		OutputURL: obj.URL,
		ObjectKey: obj.Key,
		Width:     width,
		Height:    height,
		Lines:     countLines(events),
	}
	logger.Info("subtitle embed complete",
		logging.String(logging.FieldEventType, "embed_complete"),
		logging.String("output_url", result.OutputURL),
		logging.Int("dialogue_lines", result.Lines),
		logging.Int("video_width", width),
		logging.Int("video_height", height),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

// discardUpload removes whatever a failed Put left behind under key.
func (s *Service) discardUpload(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := s.store.Delete(ctx, key); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "failed to remove partial upload", "upload_cleanup_failed",
			logging.String("object_key", key),
			logging.String("store", s.store.Name()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the object with subburn storage delete"),
			logging.String(logging.FieldImpact, "an incomplete object may remain in the store"),
		)
	}
}

func (s *Service) fetch(ctx context.Context, job *workspace.Job, source string) (string, error) {
	if key, ok := blobstore.ParseRef(source); ok {
		return s.fetchStored(ctx, job, key)
	}
	if timeout := s.config.DownloadTimeout(); timeout > 0 && workspace.IsRemote(source) {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	path, err := s.workspace.Fetch(ctx, job, source)
	if err == nil {
		return path, nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "", services.Wrap(services.ErrTimeout, "download", "fetch video", "Video download timed out", err)
	case errors.Is(err, os.ErrNotExist):
		return "", services.Wrap(services.ErrNotFound, "download", "fetch video", "Video source does not exist", err)
	case errors.Is(err, workspace.ErrDownload):
		return "", services.Wrap(services.ErrExternalTool, "download", "fetch video", "Video download failed", err)
	default:
		return "", services.Wrap(services.ErrValidation, "download", "fetch video", "Video source is not usable", err)
	}
}

// fetchStored downloads a previously stored object into the job directory.
func (s *Service) fetchStored(ctx context.Context, job *workspace.Job, key string) (string, error) {
	cleaned, err := blobstore.CleanKey(key)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "download", "fetch stored video", "Stored video key is invalid", err)
	}
	if timeout := s.config.DownloadTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	name := path.Base(cleaned)
	if name == workspace.SubtitleFileName || name == workspace.OutputFileName {
		name = "source-" + name
	}
	dest := job.Path(name)
	obj, err := s.store.Get(ctx, cleaned, dest)
	switch {
	case err == nil:
		logging.WithContext(ctx, s.logger).Info("stored video fetched",
			logging.String(logging.FieldEventType, "stored_video_fetched"),
			logging.String("object_key", obj.Key),
			logging.String("store", s.store.Name()),
			logging.Int64("bytes", obj.Size),
		)
		return dest, nil
	case errors.Is(err, context.DeadlineExceeded):
		return "", services.Wrap(services.ErrTimeout, "download", "fetch stored video", "Stored video download timed out", err)
	case errors.Is(err, os.ErrNotExist):
		return "", services.Wrap(services.ErrNotFound, "download", "fetch stored video", "Stored video does not exist", err)
	default:
		return "", services.Wrap(services.ErrTransient, "download", s.store.Name(), "Failed to fetch stored video", err)
	}
}

func (s *Service) inspect(ctx context.Context, path string) (int, int, error) {
	result, err := inspectMedia(ctx, s.config.Media.FFprobeBinary, path)
	if err != nil {
		return 0, 0, services.Wrap(services.ErrExternalTool, "inspect", "ffprobe", "Failed to inspect video", err)
	}
	width, height, err := result.VideoDimensions()
	if err != nil {
		marker := services.ErrExternalTool
		if errors.Is(err, ffprobe.ErrNoVideoStream) {
			marker = services.ErrValidation
		}
		return 0, 0, services.Wrap(marker, "inspect", "video dimensions", "Video has no usable video stream", err)
	}
	return width, height, nil
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"subburn/internal/layout"
	"subburn/internal/logging"
	"subburn/internal/services"
	"subburn/internal/subtitles"
	"subburn/internal/transcript"
)

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Transcribe runs (or fetches) a transcript.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req TranscribeRequest
	if !h.decode(w, r, &req) {
		return
	}
	var (
		result subtitles.TranscribeResult
		err    error
	)
	switch {
	case strings.TrimSpace(req.TranscriptID) != "":
		result, err = h.pipeline.TranscriptByID(r.Context(), req.TranscriptID)
	case strings.TrimSpace(req.AudioPath) != "":
		result, err = h.pipeline.Transcribe(r.Context(), req.AudioPath)
	default:
		err = services.Wrap(services.ErrValidation, "api", "transcribe", "audio_path is required", nil)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Status: statusSuccess, Data: TranscribeData{
		TranscriptID: result.ID,
		Cached:       result.Cached,
		Utterances:   result.Utterances,
	}})
}

// Segment splits utterances into sentences.
func (h *Handler) Segment(w http.ResponseWriter, r *http.Request) {
	var req SegmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	sentences, err := h.pipeline.Segment(r.Context(), req.Utterances)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if sentences == nil {
		sentences = []transcript.Sentence{}
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Status: statusSuccess, Data: SegmentData{Sentences: sentences}})
}

// Render produces an SSA, SRT or WebVTT document.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !h.decode(w, r, &req) {
		return
	}
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = subtitles.FormatASS
	}
	switch format {
	case subtitles.FormatASS, subtitles.FormatSRT, subtitles.FormatVTT:
	default:
		h.fail(w, r, services.Wrap(services.ErrValidation, "api", "render", fmt.Sprintf("unsupported format %q", req.Format), nil))
		return
	}

	result, err := h.pipeline.Render(r.Context(), Cues(req.SubtitleData), layout.Config{
		VideoWidth:  req.VideoWidth,
		VideoHeight: req.VideoHeight,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	doc := result.Document
	if format != subtitles.FormatASS {
		var buf bytes.Buffer
		if err := subtitles.Export(&buf, result.Events, format); err != nil {
			h.fail(w, r, services.Wrap(services.ErrInternal, "api", "render", "Failed to export subtitles", err))
			return
		}
		doc = buf.String()
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Status: statusSuccess, Data: RenderData{
		Format:   format,
		Document: doc,
		Events:   len(result.Events),
		Lines:    result.Lines,
	}})
}

// EmbedSubtitle burns cues into a video and returns the published URL.
func (h *Handler) EmbedSubtitle(w http.ResponseWriter, r *http.Request) {
	var req EmbedSubtitleRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.pipeline.Embed(r.Context(), subtitles.EmbedRequest{
		VideoPath: req.VideoPath,
		Cues:      Cues(req.SubtitleData),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, EmbedSubtitleResponse{
		Status:  statusSuccess,
		Message: "subtitles embedded",
		Output:  result.OutputURL,
		JobID:   result.JobID,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorType(w, r, http.StatusRequestEntityTooLarge, "request_too_large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		h.fail(w, r, services.Wrap(services.ErrValidation, "api", "decode request", "invalid JSON body", err))
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.WarnWithContext(logging.WithContext(r.Context(), h.logger), "request failed", "api_request_failed",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect the error_message and the pipeline stage named in it"),
			logging.String(logging.FieldImpact, "caller received an error response"),
		)
	}
	writeErrorType(w, r, status, services.ErrorType(err), err.Error())
}

func writeErrorType(w http.ResponseWriter, r *http.Request, status int, errorType, message string) {
	resp := ErrorResponse{Status: statusError, ErrorType: errorType, ErrorMessage: message}
	if id, ok := services.RequestIDFromContext(r.Context()); ok {
		resp.RequestID = id
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

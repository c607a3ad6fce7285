package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"subburn/internal/api"
	"subburn/internal/logging"
	"subburn/internal/services"
	"subburn/internal/subtitles"
	"subburn/internal/testsupport"
)

// stubPipeline uses the real service for pure operations and canned results
// for the ones that reach external systems.
type stubPipeline struct {
	*subtitles.Service

	transcribeSource string
	transcribeErr    error
	embedReq         subtitles.EmbedRequest
	embedErr         error
}

func (s *stubPipeline) Transcribe(_ context.Context, source string) (subtitles.TranscribeResult, error) {
	s.transcribeSource = source
	if s.transcribeErr != nil {
		return subtitles.TranscribeResult{}, s.transcribeErr
	}
	return subtitles.TranscribeResult{ID: "tr-1", Utterances: testsupport.SampleUtterances()}, nil
}

func (s *stubPipeline) TranscriptByID(_ context.Context, id string) (subtitles.TranscribeResult, error) {
	return subtitles.TranscribeResult{ID: id, Cached: true, Utterances: testsupport.SampleUtterances()}, nil
}

func (s *stubPipeline) Embed(_ context.Context, req subtitles.EmbedRequest) (subtitles.EmbedResult, error) {
	s.embedReq = req
	if s.embedErr != nil {
		return subtitles.EmbedResult{}, s.embedErr
	}
	return subtitles.EmbedResult{JobID: "job-1", OutputURL: "http://files.test/outputs/jobs/job-1/output.mp4"}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *stubPipeline) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	pipeline := &stubPipeline{Service: subtitles.NewService(cfg, logging.NewNop())}
	srv := httptest.NewServer(api.NewRouter(cfg, pipeline, logging.NewNop()))
	t.Cleanup(srv.Close)
	return srv, pipeline
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return resp, payload
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get(api.RequestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv, _ := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(api.RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(api.RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected caller request id, got %q", got)
	}
}

func TestTranscribe(t *testing.T) {
	srv, pipeline := newTestServer(t)

	resp, payload := post(t, srv, "/transcribe", `{"audio_path":"https://cdn.test/a.mp3"}`)
	if resp.StatusCode != http.StatusOK || payload["status"] != "success" {
		t.Fatalf("unexpected response %d %v", resp.StatusCode, payload)
	}
	if pipeline.transcribeSource != "https://cdn.test/a.mp3" {
		t.Fatalf("source not passed through: %q", pipeline.transcribeSource)
	}
	data := payload["data"].(map[string]any)
	if data["transcript_id"] != "tr-1" || len(data["utterances"].([]any)) != 2 {
		t.Fatalf("unexpected data %v", data)
	}

	_, payload = post(t, srv, "/transcribe", `{"transcript_id":"tr-9"}`)
	if data := payload["data"].(map[string]any); data["transcript_id"] != "tr-9" || data["cached"] != true {
		t.Fatalf("unexpected fetch data %v", data)
	}
}

func TestTranscribeErrors(t *testing.T) {
	srv, pipeline := newTestServer(t)

	resp, payload := post(t, srv, "/transcribe", `{}`)
	if resp.StatusCode != http.StatusBadRequest || payload["error_type"] != "validation_error" {
		t.Fatalf("expected validation error, got %d %v", resp.StatusCode, payload)
	}

	pipeline.transcribeErr = services.Wrap(services.ErrExternalTool, "transcribe", "poll", "transcript failed", nil)
	resp, payload = post(t, srv, "/transcribe", `{"audio_path":"/tmp/a.mp3"}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	if payload["status"] != "error" || payload["error_type"] != "external_tool_error" {
		t.Fatalf("unexpected error payload %v", payload)
	}
	if msg, _ := payload["error_message"].(string); !strings.Contains(msg, "transcript failed") {
		t.Fatalf("expected cause in message, got %q", msg)
	}
	if id, _ := payload["request_id"].(string); id == "" {
		t.Fatal("expected request id in error payload")
	}
}

func TestSegment(t *testing.T) {
	srv, _ := newTestServer(t)
	body := `{"utterances":[{"text":"Hi there. Bye now.","speaker":"A","words":[
		{"text":"Hi","start":0,"end":100},{"text":"there.","start":100,"end":400},
		{"text":"Bye","start":500,"end":700},{"text":"now.","start":700,"end":900}]}]}`
	resp, payload := post(t, srv, "/segment", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", resp.StatusCode, payload)
	}
	sentences := payload["data"].(map[string]any)["sentences"].([]any)
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %v", sentences)
	}
	second := sentences[1].(map[string]any)
	if second["text"] != "Bye now." || second["start"] != float64(500) || second["end"] != float64(900) {
		t.Fatalf("unexpected second sentence %v", second)
	}

	_, payload = post(t, srv, "/segment", `{"utterances":[]}`)
	if got := payload["data"].(map[string]any)["sentences"].([]any); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestRenderAppliesDefaultStyle(t *testing.T) {
	srv, _ := newTestServer(t)
	body := `{"subtitle_data":[{"text":"Hello","start":0,"end":1000},
		{"text":"Plain","start":1000,"end":2000,"font_color":"","font_size":0}],
		"video_width":1280,"video_height":720}`
	resp, payload := post(t, srv, "/render", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", resp.StatusCode, payload)
	}
	data := payload["data"].(map[string]any)
	doc := data["document"].(string)
	if data["format"] != "ass" {
		t.Fatalf("expected ass format, got %v", data["format"])
	}
	for _, want := range []string{
		`{\c&H0000FF&\fs10}Hello`,
		",,0,0,0,,Plain\n",
		"PlayResX: 1280\n",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestRenderSRT(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, payload := post(t, srv, "/render", `{"subtitle_data":[{"text":"Hello","start":0,"end":1000}],
		"video_width":1280,"video_height":720,"format":"srt"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", resp.StatusCode, payload)
	}
	doc := payload["data"].(map[string]any)["document"].(string)
	if !strings.Contains(doc, "00:00:00,000 --> 00:00:01,000") || !strings.Contains(doc, "Hello") {
		t.Fatalf("unexpected srt:\n%s", doc)
	}
}

func TestRenderRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)
	cases := []struct {
		name string
		body string
	}{
		{"zero width", `{"subtitle_data":[],"video_width":0,"video_height":720}`},
		{"bad format", `{"subtitle_data":[],"video_width":1280,"video_height":720,"format":"sub"}`},
		{"inverted cue", `{"subtitle_data":[{"text":"x","start":900,"end":100}],"video_width":1280,"video_height":720}`},
		{"malformed json", `{"subtitle_data":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, payload := post(t, srv, "/render", tc.body)
			if resp.StatusCode != http.StatusBadRequest || payload["status"] != "error" {
				t.Fatalf("expected 400 error, got %d %v", resp.StatusCode, payload)
			}
		})
	}
}

func TestEmbedSubtitle(t *testing.T) {
	srv, pipeline := newTestServer(t)
	resp, payload := post(t, srv, "/embed_subtitle", `{"video_path":"https://cdn.test/v.mp4",
		"subtitle_data":[{"text":"Hi","start":0,"end":500,"font_color":"#00FF00"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", resp.StatusCode, payload)
	}
	if payload["status"] != "success" || payload["output"] != "http://files.test/outputs/jobs/job-1/output.mp4" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if len(pipeline.embedReq.Cues) != 1 {
		t.Fatalf("expected one cue, got %+v", pipeline.embedReq)
	}
	if cue := pipeline.embedReq.Cues[0]; cue.FontColor != "#00FF00" || cue.FontSize != api.DefaultFontSize {
		t.Fatalf("unexpected cue %+v", cue)
	}

	pipeline.embedErr = services.Wrap(services.ErrNotFound, "embed", "fetch video", "Video not found", nil)
	resp, payload = post(t, srv, "/embed_subtitle", `{"video_path":"/missing.mp4","subtitle_data":[]}`)
	if resp.StatusCode != http.StatusNotFound || payload["error_type"] != "not_found" {
		t.Fatalf("expected 404, got %d %v", resp.StatusCode, payload)
	}
}

func TestBodyLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.API.MaxBodyMiB = 1
	router := api.NewRouter(cfg, &stubPipeline{Service: subtitles.NewService(cfg, logging.NewNop())}, logging.NewNop())

	big := `{"audio_path":"` + strings.Repeat("a", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(big))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"error_type":"request_too_large"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, payload := post(t, srv, "/nope", `{}`)
	if resp.StatusCode != http.StatusNotFound || payload["error_type"] != "not_found" {
		t.Fatalf("expected 404, got %d %v", resp.StatusCode, payload)
	}
}

func TestSubtitleDataDefaults(t *testing.T) {
	color := "#123456"
	size := 0
	cases := []struct {
		name      string
		data      api.SubtitleData
		wantColor string
		wantSize  int
	}{
		{"absent", api.SubtitleData{Text: "a"}, api.DefaultFontColor, api.DefaultFontSize},
		{"explicit", api.SubtitleData{Text: "a", FontColor: &color}, "#123456", api.DefaultFontSize},
		{"explicit zero size", api.SubtitleData{Text: "a", FontSize: &size}, api.DefaultFontColor, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cue := tc.data.Cue()
			if cue.FontColor != tc.wantColor || cue.FontSize != tc.wantSize {
				t.Fatalf("got color=%q size=%d", cue.FontColor, cue.FontSize)
			}
		})
	}
}

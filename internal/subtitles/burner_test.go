package subtitles

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"subburn/internal/config"
)

func TestBurnerBuildsArgsAndRenamesOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.mp4")
	script := filepath.Join(dir, "styled_subtitles.ass")
	output := filepath.Join(dir, "output.mp4")
	for _, p := range []string{input, script} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	burner := NewBurner(config.Media{FFmpegBinary: "/opt/ffmpeg/bin/ffmpeg", VideoCodec: "libx265"}, nil)
	var gotName string
	var gotArgs []string
	burner.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return os.WriteFile(args[len(args)-1], []byte("video"), 0o644)
	})

	if err := burner.Burn(context.Background(), BurnRequest{
		InputPath: input, SubtitlePath: script, OutputPath: output, Width: 1920, Height: 1080,
	}); err != nil {
		t.Fatalf("Burn: %v", err)
	}
	if gotName != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected binary %q", gotName)
	}
	want := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", input,
		"-vf", "ass=" + script + ",scale=1920:1080",
		"-c:v", "libx265",
		"-c:a", "aac",
		filepath.Join(dir, ".burn-output.mp4"),
	}
	if !slices.Equal(gotArgs, want) {
		t.Fatalf("args = %q\nwant %q", gotArgs, want)
	}
	if data, err := os.ReadFile(output); err != nil || string(data) != "video" {
		t.Fatalf("output = %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".burn-output.mp4")); !os.IsNotExist(err) {
		t.Fatal("temporary output should be renamed away")
	}
}

func TestBurnerFailureCleansTemp(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.mp4")
	script := filepath.Join(dir, "s.ass")
	for _, p := range []string{input, script} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	boom := errors.New("exit status 1")
	burner := NewBurner(config.Media{}, nil)
	burner.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		_ = os.WriteFile(args[len(args)-1], []byte("partial"), 0o644)
		return boom
	})
	err := burner.Burn(context.Background(), BurnRequest{
		InputPath: input, SubtitlePath: script, OutputPath: filepath.Join(dir, "out.mp4"), Width: 10, Height: 10,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected ffmpeg error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("expected only inputs to remain, got %d entries", len(entries))
	}
}

func TestBurnerValidatesRequest(t *testing.T) {
	burner := NewBurner(config.Media{}, nil)
	cases := []BurnRequest{
		{},
		{InputPath: "/a.mp4", OutputPath: "/b.mp4", Width: 0, Height: 10},
		{InputPath: filepath.Join(t.TempDir(), "missing.mp4"), SubtitlePath: "x", OutputPath: "/b.mp4", Width: 10, Height: 10},
	}
	for i, req := range cases {
		if err := burner.Burn(context.Background(), req); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestEscapeFilterValue(t *testing.T) {
	tests := map[string]string{
		"/work/job/styled_subtitles.ass": "/work/job/styled_subtitles.ass",
		"C:/work/subs.ass":               `C\\:/work/subs.ass`,
		"/work/it's,here.ass":            `/work/it\\\'s\,here.ass`,
	}
	for in, want := range tests {
		if got := escapeFilterValue(in); got != want {
			t.Errorf("escapeFilterValue(%q) = %q, want %q", in, got, want)
		}
	}
}

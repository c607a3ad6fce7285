package workspace

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"subburn/internal/logging"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(filepath.Join(t.TempDir(), "work"))
	m.now = func() time.Time { return time.Date(2026, 10, 19, 10, 15, 0, 0, time.UTC) }
	m.newID = func() string { return "1a2b3c4d" }
	return m
}

func TestCreateJob(t *testing.T) {
	m := newTestManager(t)
	job, err := m.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.ID != "20261019_101500_1a2b3c4d" {
		t.Fatalf("unexpected job id %q", job.ID)
	}
	if info, err := os.Stat(job.Dir); err != nil || !info.IsDir() {
		t.Fatalf("job dir missing: %v", err)
	}
	if job.Path(OutputFileName) != filepath.Join(m.Root(), job.ID, "output.mp4") {
		t.Fatalf("unexpected output path %q", job.Path(OutputFileName))
	}

	if _, err := m.Create(context.Background()); err == nil {
		t.Fatal("expected collision error for duplicate id")
	}

	if err := job.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(job.Dir); !os.IsNotExist(err) {
		t.Fatal("job dir should be gone")
	}
}

func TestCreateHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestManager(t).Create(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFetchDownloadsRemoteVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos/clip.mp4" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("fake-mp4-bytes"))
	}))
	defer srv.Close()

	m := newTestManager(t)
	job, err := m.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	path, err := m.Fetch(context.Background(), job, srv.URL+"/videos/clip.mp4?token=abc")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if path != job.Path("clip.mp4") {
		t.Fatalf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fake-mp4-bytes" {
		t.Fatalf("unexpected content %q", data)
	}

	_, err = m.Fetch(context.Background(), job, srv.URL+"/missing.mp4")
	if !errors.Is(err, ErrDownload) || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected download error with status, got %v", err)
	}
}

func TestFetchAvoidsReservedNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	m := newTestManager(t)
	job, err := m.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	path, err := m.Fetch(context.Background(), job, srv.URL+"/output.mp4")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if filepath.Base(path) != "source-output.mp4" {
		t.Fatalf("expected renamed download, got %q", path)
	}
}

func TestFetchLocalPath(t *testing.T) {
	m := newTestManager(t)
	job, err := m.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	local := filepath.Join(t.TempDir(), "local.mp4")
	if err := os.WriteFile(local, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := m.Fetch(context.Background(), job, local)
	if err != nil || got != local {
		t.Fatalf("Fetch local = %q, %v", got, err)
	}

	if _, err := m.Fetch(context.Background(), job, filepath.Join(t.TempDir(), "nope.mp4")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := m.Fetch(context.Background(), job, t.TempDir()); err == nil {
		t.Fatal("expected error for directory source")
	}
	if _, err := m.Fetch(context.Background(), job, " "); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestIsRemote(t *testing.T) {
	for source, want := range map[string]bool{
		"https://x/y.mp4": true,
		"HTTP://x/y.mp4":  true,
		"/tmp/y.mp4":      false,
		"ftp://x/y.mp4":   false,
		"httpfile.mp4":    false,
	} {
		if got := IsRemote(source); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", source, got, want)
		}
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldDirectories(t *testing.T) {
	root := t.TempDir()

	oldDir := filepath.Join(root, "20200101_000000_deadbeef")
	if err := os.Mkdir(oldDir, 0o755); err != nil {
		t.Fatalf("create old dir: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldDir, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}
	recentDir := filepath.Join(root, time.Now().Format(jobTimeLayout)+"_0badc0de")
	if err := os.Mkdir(recentDir, 0o755); err != nil {
		t.Fatalf("create recent dir: %v", err)
	}
	foreignDir := filepath.Join(root, "keep-me")
	if err := os.Mkdir(foreignDir, 0o755); err != nil {
		t.Fatalf("create foreign dir: %v", err)
	}
	if err := os.Chtimes(foreignDir, oldTime, oldTime); err != nil {
		t.Fatalf("set foreign time: %v", err)
	}

	result := CleanStale(context.Background(), root, time.Hour, logging.NewNop())
	if len(result.Removed) != 1 || result.Removed[0] != oldDir {
		t.Fatalf("unexpected removal set: %v", result.Removed)
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Error("old directory should have been removed")
	}
	if _, err := os.Stat(recentDir); err != nil {
		t.Error("recent directory should still exist")
	}
	if _, err := os.Stat(foreignDir); err != nil {
		t.Error("directories that are not jobs must be left alone")
	}
}

func TestJobCreated(t *testing.T) {
	for name, want := range map[string]bool{
		"20200101_000000_deadbeef": true,
		"20200101_000000_dead":     false,
		"20201301_000000_deadbeef": false,
		"recent":                   false,
		"":                         false,
	} {
		if _, ok := jobCreated(name); ok != want {
			t.Errorf("jobCreated(%q) ok = %v, want %v", name, ok, want)
		}
	}
}

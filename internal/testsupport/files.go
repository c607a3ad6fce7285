package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFakeMedia creates path, including parent directories, filled with size
// bytes of placeholder data. Stubbed ffmpeg runs never decode it; tests only
// need the file to exist with a known size. size <= 0 writes one byte.
func WriteFakeMedia(t testing.TB, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, max(size, 1)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

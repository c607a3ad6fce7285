package blobstore

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"subburn/internal/config"
)

// ErrInvalidKey is returned for object keys that are empty, absolute, or
// escape the store root.
var ErrInvalidKey = errors.New("invalid object key")

// Object describes a stored blob.
type Object struct {
	Key    string
	URL    string
	Size   int64
	SHA256 string
	ETag   string
}

// Store uploads local files under a key and reports where they can be read.
type Store interface {
	Put(ctx context.Context, key, localPath string) (Object, error)
	// Get downloads the blob at key to localPath. Missing keys yield an
	// error matching os.ErrNotExist.
	Get(ctx context.Context, key, localPath string) (Object, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
	// Check verifies the backend is reachable and writable enough to accept
	// uploads.
	Check(ctx context.Context) error
	Name() string
}

// New builds the store selected by cfg.Storage.Backend.
func New(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	switch cfg.Storage.Backend {
	case config.StorageS3:
		return NewS3(cfg.Storage)
	case config.StorageFilesystem, "":
		return NewFilesystem(cfg.Storage.Dir, cfg.Storage.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

// CleanKey normalizes an object key to forward-slash form and rejects keys
// that would leave the store root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(filepath.ToSlash(key))
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}

// ParseRef extracts the object key from a stored-media reference of the form
// "key:<key>" or "s3://<bucket>/<key>". The bucket is informational; keys
// always resolve against the configured store.
func ParseRef(source string) (string, bool) {
	source = strings.TrimSpace(source)
	lower := strings.ToLower(source)
	switch {
	case strings.HasPrefix(lower, "key:"):
		return strings.TrimSpace(source[len("key:"):]), true
	case strings.HasPrefix(lower, "s3://"):
		rest := source[len("s3://"):]
		if _, key, ok := strings.Cut(rest, "/"); ok {
			return key, true
		}
		return "", true
	default:
		return "", false
	}
}

// JobKey returns the key a job's rendered output is stored under.
func JobKey(jobID, fileName string) string {
	return path.Join("jobs", jobID, fileName)
}

var knownTypes = map[string]string{
	".mp4": "video/mp4",
	".mkv": "video/x-matroska",
	".ass": "text/x-ssa",
	".srt": "application/x-subrip",
	".vtt": "text/vtt",
}

func contentType(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ct, ok := knownTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// joinURL appends an escaped key to base.
func joinURL(base, key string) string {
	base = strings.TrimRight(base, "/")
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return base + "/" + strings.Join(segments, "/")
}

package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"subburn/internal/fileutil"
)

// Filesystem stores blobs as files under a root directory.
type Filesystem struct {
	root    string
	baseURL string
}

// NewFilesystem returns a store rooted at dir. When baseURL is empty, URLs
// are file:// URLs pointing at the stored file.
func NewFilesystem(dir, baseURL string) *Filesystem {
	return &Filesystem{root: dir, baseURL: strings.TrimSpace(baseURL)}
}

// Name identifies the backend in logs and diagnostics.
func (f *Filesystem) Name() string { return "filesystem" }

// Put copies localPath into the store and verifies the copy.
func (f *Filesystem) Put(ctx context.Context, key, localPath string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	cleaned, err := CleanKey(key)
	if err != nil {
		return Object{}, err
	}
	dest := f.path(cleaned)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Object{}, fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}
	sum, err := fileutil.CopyVerified(localPath, dest)
	if err != nil {
		return Object{}, fmt.Errorf("store %s: %w", cleaned, err)
	}
	info, err := os.Stat(dest)
	if err != nil {
		return Object{}, fmt.Errorf("stat stored object: %w", err)
	}
	return Object{Key: cleaned, URL: f.URL(cleaned), Size: info.Size(), SHA256: sum}, nil
}

// Get copies the blob at key to localPath and verifies the copy.
func (f *Filesystem) Get(ctx context.Context, key, localPath string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	cleaned, err := CleanKey(key)
	if err != nil {
		return Object{}, err
	}
	sum, err := fileutil.CopyVerified(f.path(cleaned), localPath)
	if err != nil {
		return Object{}, fmt.Errorf("fetch %s: %w", cleaned, err)
	}
	info, err := os.Stat(localPath)
	if err != nil {
		return Object{}, fmt.Errorf("stat fetched object: %w", err)
	}
	return Object{Key: cleaned, URL: f.URL(cleaned), Size: info.Size(), SHA256: sum}, nil
}

// Delete removes the blob at key. Missing blobs are ignored.
func (f *Filesystem) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cleaned, err := CleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(f.path(cleaned)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", cleaned, err)
	}
	return nil
}

// URL returns the public URL for key.
func (f *Filesystem) URL(key string) string {
	if f.baseURL != "" {
		return joinURL(f.baseURL, key)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(f.path(key))}
	return u.String()
}

// Check ensures the root directory exists and is a directory.
func (f *Filesystem) Check(ctx context.Context) error {
	if strings.TrimSpace(f.root) == "" {
		return errors.New("storage dir is not configured")
	}
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.root, ".subburn-check-*")
	if err != nil {
		return fmt.Errorf("storage dir not writable: %w", err)
	}
	name := tmp.Name()
	_ = tmp.Close()
	return os.Remove(name)
}

func (f *Filesystem) path(key string) string {
	return filepath.Join(f.root, filepath.FromSlash(key))
}

package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"subburn/internal/config"
)

// objectAPI is the subset of *minio.Client the S3 store uses.
type objectAPI interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	FGetObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.GetObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
}

// S3 stores blobs in an S3-compatible bucket.
type S3 struct {
	client   objectAPI
	bucket   string
	endpoint string
	secure   bool
	baseURL  string
}

// NewS3 connects to the endpoint described by cfg. No request is made until
// the first operation.
func NewS3(cfg config.Storage) (*S3, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" || strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3 storage requires endpoint and bucket")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return newS3WithClient(client, cfg), nil
}

func newS3WithClient(client objectAPI, cfg config.Storage) *S3 {
	return &S3{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: strings.TrimSpace(cfg.Endpoint),
		secure:   cfg.UseSSL,
		baseURL:  strings.TrimSpace(cfg.PublicBaseURL),
	}
}

// Name identifies the backend in logs and diagnostics.
func (s *S3) Name() string { return "s3" }

// Put uploads localPath to key.
func (s *S3) Put(ctx context.Context, key, localPath string) (Object, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return Object{}, err
	}
	info, err := s.client.FPutObject(ctx, s.bucket, cleaned, localPath, minio.PutObjectOptions{
		ContentType: contentType(cleaned),
	})
	if err != nil {
		return Object{}, fmt.Errorf("upload %s to bucket %s: %w", cleaned, s.bucket, err)
	}
	return Object{Key: cleaned, URL: s.URL(cleaned), Size: info.Size, ETag: info.ETag}, nil
}

// Get downloads key to localPath. minio writes through a temporary sibling
// file and renames it into place.
func (s *S3) Get(ctx context.Context, key, localPath string) (Object, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return Object{}, err
	}
	info, err := s.client.StatObject(ctx, s.bucket, cleaned, minio.StatObjectOptions{})
	if err != nil {
		return Object{}, s.objectError("stat", cleaned, err)
	}
	if err := s.client.FGetObject(ctx, s.bucket, cleaned, localPath, minio.GetObjectOptions{}); err != nil {
		return Object{}, s.objectError("download", cleaned, err)
	}
	return Object{Key: cleaned, URL: s.URL(cleaned), Size: info.Size, ETag: info.ETag}, nil
}

func (s *S3) objectError(op, key string, err error) error {
	if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return fmt.Errorf("%s %s in bucket %s: %w (%s)", op, key, s.bucket, os.ErrNotExist, resp.Message)
	}
	return fmt.Errorf("%s %s in bucket %s: %w", op, key, s.bucket, err)
}

// Delete removes the object at key.
func (s *S3) Delete(ctx context.Context, key string) error {
	cleaned, err := CleanKey(key)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, cleaned, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s from bucket %s: %w", cleaned, s.bucket, err)
	}
	return nil
}

// URL returns the public URL for key. Without a public base URL the
// path-style endpoint URL is used.
func (s *S3) URL(key string) string {
	if s.baseURL != "" {
		return joinURL(s.baseURL, key)
	}
	scheme := "http"
	if s.secure {
		scheme = "https"
	}
	return joinURL(scheme+"://"+s.endpoint+"/"+s.bucket, key)
}

// Check confirms the bucket exists.
func (s *S3) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"educa/logger"
)

// GCS keeps blobs in one Google Cloud Storage bucket.
type GCS struct {
	client        *gcs.Client
	bucket        string
	publicBaseURL string
	log           *logger.Logger
}

func NewGCS(ctx context.Context, bucket, publicBaseURL string, log *logger.Logger, opts ...option.ClientOption) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("missing env var GCS_BUCKET")
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("service", "GCSBlobStore")
	log.Info("object storage initialized", "bucket", bucket, "public_base_url", publicBaseURL)
	return &GCS{client: client, bucket: bucket, publicBaseURL: publicBaseURL, log: log}, nil
}

func (s *GCS) Save(ctx context.Context, category Category, filename string, r io.Reader) (Object, error) {
	contentType, body, err := Sniff(r)
	if err != nil {
		return Object{}, fmt.Errorf("sniff upload: %w", err)
	}
	key := NewKey(category, filename)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	size, err := io.Copy(w, body)
	if err != nil {
		_ = w.Close()
		return Object{}, fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return Object{Key: key, URL: s.URL(key), Size: size, ContentType: contentType, OriginalName: filepath.Base(filename)}, nil
}

func (s *GCS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotExist)
	}
	return rc, err
}

func (s *GCS) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, s.bucket, err)
	}
	return nil
}

func (s *GCS) URL(key string) string {
	if key == "" {
		return ""
	}
	return joinURL(joinURL(s.publicBaseURL, s.bucket), key)
}

func (s *GCS) Close() error { return s.client.Close() }

// Package storage keeps uploaded File and Image payloads.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"educa/config"
	"educa/logger"
)

type Category string

const (
	CategoryFiles  Category = "files"
	CategoryImages Category = "images"
)

var ErrNotExist = errors.New("blob does not exist")

// Object describes a stored blob.
type Object struct {
	Key          string
	URL          string
	Size         int64
	ContentType  string
	OriginalName string
}

type Store interface {
	Save(ctx context.Context, category Category, filename string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New builds the store selected by cfg.BlobBackend.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (Store, error) {
	switch cfg.BlobBackend {
	case "", "local":
		return NewLocal(cfg.MediaRoot, cfg.MediaURL, log), nil
	case "gcs":
		return NewGCS(ctx, cfg.GCSBucket, cfg.GCSPublicBaseURL, log, gcsOptions(cfg)...)
	default:
		return nil, fmt.Errorf("unsupported BLOB_BACKEND %q", cfg.BlobBackend)
	}
}

// NewKey returns a unique object key inside category that keeps the
// upload's extension.
func NewKey(category Category, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(string(category), uuid.NewString()+ext)
}

const sniffLen = 3072

// Sniff detects the content type from the head of r and returns a reader
// that still yields the full stream.
func Sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	return mimetype.Detect(head).String(), io.MultiReader(bytes.NewReader(head), r), nil
}

// gcsOptions picks credentials: the emulator needs none, otherwise an
// explicit key file wins over application default credentials.
func gcsOptions(cfg *config.Config) []option.ClientOption {
	if host := strings.TrimSpace(cfg.GCSEmulatorHost); host != "" {
		return []option.ClientOption{
			option.WithoutAuthentication(),
			option.WithEndpoint(strings.TrimRight(host, "/") + "/storage/v1/"),
		}
	}
	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadWrite)}
	if f := strings.TrimSpace(cfg.GCSCredentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}
	return opts
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

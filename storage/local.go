package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"educa/logger"
)

// Local writes blobs below a media root served at baseURL.
type Local struct {
	root    string
	baseURL string
	log     *logger.Logger
}

func NewLocal(root, baseURL string, log *logger.Logger) *Local {
	if log == nil {
		log = logger.Nop()
	}
	return &Local{root: root, baseURL: baseURL, log: log.With("service", "LocalBlobStore")}
}

func (s *Local) Save(ctx context.Context, category Category, filename string, r io.Reader) (Object, error) {
	contentType, body, err := Sniff(r)
	if err != nil {
		return Object{}, fmt.Errorf("sniff upload: %w", err)
	}

	key := NewKey(category, filename)
	dest := s.path(key)

	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Object{}, err
	}
	dst, err := os.Create(dest)
	if err != nil {
		return Object{}, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, body)
	if err != nil {
		_ = os.Remove(dest)
		return Object{}, fmt.Errorf("write %s: %w", key, err)
	}

	s.log.Debug("blob stored", "key", key, "size", size, "content_type", contentType)
	return Object{Key: key, URL: s.URL(key), Size: size, ContentType: contentType, OriginalName: filepath.Base(filename)}, nil
}

func (s *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotExist)
	}
	return f, err
}

func (s *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Local) URL(key string) string {
	if key == "" {
		return ""
	}
	return joinURL(s.baseURL, key)
}

// path keeps keys inside the media root.
func (s *Local) path(key string) string {
	clean := filepath.Clean("/" + strings.TrimSpace(key))
	return filepath.Join(s.root, clean)
}

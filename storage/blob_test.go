package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"educa/config"
)

func TestNewKeyKeepsExtension(t *testing.T) {
	a := NewKey(CategoryFiles, "Report.PDF")
	b := NewKey(CategoryFiles, "Report.PDF")
	assert.True(t, strings.HasPrefix(a, "files/"))
	assert.True(t, strings.HasSuffix(a, ".pdf"))
	assert.NotEqual(t, a, b)
}

func TestNewSelectsBackend(t *testing.T) {
	store, err := New(context.Background(), &config.Config{BlobBackend: "local", MediaRoot: t.TempDir(), MediaURL: "/media/"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Local{}, store)

	_, err = New(context.Background(), &config.Config{BlobBackend: "s3"}, nil)
	assert.Error(t, err)

	_, err = New(context.Background(), &config.Config{BlobBackend: "gcs"}, nil)
	assert.Error(t, err)
}

func TestGCSOptions(t *testing.T) {
	assert.Len(t, gcsOptions(&config.Config{GCSEmulatorHost: "http://localhost:4443/"}), 2)
	assert.Len(t, gcsOptions(&config.Config{}), 1)
	assert.Len(t, gcsOptions(&config.Config{GCSCredentialsFile: "/secrets/key.json"}), 2)
}

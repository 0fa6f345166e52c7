package oembed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveReturnsEmbedHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://video.example/watch?v=1", r.URL.Query().Get("url"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"type": "video", "html": ` <iframe src="https://video.example/embed/1"></iframe> `})
	}))
	defer srv.Close()

	html, err := New(srv.URL, nil).Resolve(context.Background(), "https://video.example/watch?v=1")
	require.NoError(t, err)
	assert.Equal(t, `<iframe src="https://video.example/embed/1"></iframe>`, html)
}

func TestResolveIgnoresNonVideoAndErrors(t *testing.T) {
	photo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"type": "photo", "html": "<img>"})
	}))
	defer photo.Close()
	html, err := New(photo.URL, nil).Resolve(context.Background(), "https://x")
	require.NoError(t, err)
	assert.Empty(t, html)

	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()
	html, err = New(missing.URL, nil).Resolve(context.Background(), "https://x")
	require.NoError(t, err)
	assert.Empty(t, html)

	html, err = Nop{}.Resolve(context.Background(), "https://x")
	require.NoError(t, err)
	assert.Empty(t, html)
}

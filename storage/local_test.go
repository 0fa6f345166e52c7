package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid PNG header + IHDR chunk
var pngHead = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestLocalSaveOpenDelete(t *testing.T) {
	store := NewLocal(t.TempDir(), "/media/", nil)
	ctx := context.Background()

	obj, err := store.Save(ctx, CategoryImages, "Diagram.PNG", bytes.NewReader(pngHead))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.Key, "images/"))
	assert.True(t, strings.HasSuffix(obj.Key, ".png"))
	assert.Equal(t, "/media/"+obj.Key, obj.URL)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(len(pngHead)), obj.Size)
	assert.Equal(t, "Diagram.PNG", obj.OriginalName)

	rc, err := store.Open(ctx, obj.Key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, pngHead, got)

	require.NoError(t, store.Delete(ctx, obj.Key))
	_, err = store.Open(ctx, obj.Key)
	assert.ErrorIs(t, err, ErrNotExist)
	assert.NoError(t, store.Delete(ctx, obj.Key))
}

func TestLocalPathStaysInRoot(t *testing.T) {
	root := t.TempDir()
	store := NewLocal(root, "/media", nil)
	assert.True(t, strings.HasPrefix(store.path("../../etc/passwd"), root))
	assert.Equal(t, "/media/files/a.pdf", store.URL("files/a.pdf"))
	assert.Equal(t, "", store.URL(""))
}

func TestSniffKeepsStream(t *testing.T) {
	body := strings.Repeat("plain text ", 1000)
	ct, r, err := Sniff(strings.NewReader(body))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ct, "text/plain"))
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, body, string(rest))
}

package storage

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURL(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestDecodeDataURL(t *testing.T) {
	contentType, data, err := DecodeDataURL(pngDataURL("hello"))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, []byte("hello"), data)

	for _, bad := range []string{
		"hello",
		"data:image/png,abc",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png;base64,%%%",
		"data:image/png;base64,",
	} {
		_, _, err := DecodeDataURL(bad)
		assert.ErrorIs(t, err, ErrInvalidImage, bad)
	}
}

func TestUploadImage_LocalStorage(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocalStorage(dir, "http://localhost:8080/media")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := UploadImage(ctx, local, "posts", pngDataURL("image-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/media/posts/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	key := strings.TrimPrefix(url, "http://localhost:8080/media/")
	content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(content))

	require.NoError(t, local.Delete(ctx, url))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	// 外部 URL 删除时忽略
	assert.NoError(t, local.Delete(ctx, "https://cdn.example.com/a.png"))
}

func TestUploadImage_PassThrough(t *testing.T) {
	url, err := UploadImage(context.Background(), nil, "posts", "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", url)

	url, err = UploadImage(context.Background(), nil, "posts", "   ")
	require.NoError(t, err)
	assert.Empty(t, url)

	_, err = UploadImage(context.Background(), nil, "posts", pngDataURL("x"))
	assert.Error(t, err)
}

func TestLocalStorage_KeyCannotEscapeBase(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocalStorage(filepath.Join(dir, "media"), "/media")
	require.NoError(t, err)

	url, err := local.Upload(context.Background(), "../../etc/evil.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/media/etc/evil.png", url)
	_, err = os.Stat(filepath.Join(dir, "media", "etc", "evil.png"))
	assert.NoError(t, err)
}

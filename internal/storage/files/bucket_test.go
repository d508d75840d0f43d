package files

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":               ".jpg",
		"image/svg+xml":            ".svg",
		"IMAGE/PNG":                ".png",
		"image/webp; charset=utf8": ".webp",
	}
	for ct, want := range cases {
		got, err := Extension(ct)
		require.NoError(t, err, ct)
		assert.Equal(t, want, got)
	}

	_, err := Extension("application/pdf")
	assert.Error(t, err)
}

func TestUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBucket(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	name, err := ObjectName("job-postings/p-1", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "job-postings/p-1/"))
	assert.True(t, strings.HasSuffix(name, ".png"))

	url, err := b.Upload(ctx, name, "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+name, url)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, b.Delete(ctx, url))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(name)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, b.Delete(ctx, url))
	assert.Error(t, b.Delete(ctx, "https://elsewhere/x.png"))
}

func TestUploadRejectsTraversal(t *testing.T) {
	b, err := NewBucket(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = b.Upload(context.Background(), "../escape.png", "image/png", nil)
	assert.Error(t, err)
}

func TestPut(t *testing.T) {
	b, err := NewBucket(t.TempDir(), "https://cdn.test/uploads")
	require.NoError(t, err)

	url, err := b.Put(context.Background(), "job-postings/p-1", "image/jpeg", []byte{0xff, 0xd8})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.test/uploads/job-postings/p-1/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	_, err = b.Put(context.Background(), "job-postings/p-1", "text/html", nil)
	assert.Error(t, err)
}

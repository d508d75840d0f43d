// Package files stores uploaded blobs on the local filesystem and serves them
// under a public base URL.
package files

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// Extension maps an image MIME type to a file extension
func Extension(contentType string) (string, error) {
	return domain.ImageExtension(contentType)
}

// Bucket writes objects under dir and hands out URLs below baseURL
type Bucket struct {
	dir     string
	baseURL string
}

func NewBucket(dir, baseURL string) (*Bucket, error) {
	if dir == "" {
		return nil, errors.New("files: upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("files: create %s: %w", dir, err)
	}
	return &Bucket{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// ObjectName builds a unique object name under prefix for contentType
func ObjectName(prefix, contentType string) (string, error) {
	ext, err := Extension(contentType)
	if err != nil {
		return "", err
	}
	return path.Join(prefix, uuid.NewString()+ext), nil
}

// Upload stores data as name and returns its public URL
func (b *Bucket) Upload(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := b.path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("files: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("files: write %s: %w", name, err)
	}
	return b.baseURL + "/" + name, nil
}

// Put stores data under a fresh name below prefix
func (b *Bucket) Put(ctx context.Context, prefix, contentType string, data []byte) (string, error) {
	name, err := ObjectName(prefix, contentType)
	if err != nil {
		return "", err
	}
	return b.Upload(ctx, name, contentType, data)
}

// Delete removes the object behind url; missing objects are not an error
func (b *Bucket) Delete(_ context.Context, url string) error {
	name := strings.TrimPrefix(url, b.baseURL+"/")
	if name == url {
		return fmt.Errorf("files: %s is not in this bucket", url)
	}
	full, err := b.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("files: delete %s: %w", name, err)
	}
	return nil
}

func (b *Bucket) path(name string) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" || strings.Contains(name, "..") {
		return "", fmt.Errorf("files: invalid object name %q", name)
	}
	return filepath.Join(b.dir, filepath.FromSlash(clean)), nil
}

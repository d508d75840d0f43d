package posting

import (
	"context"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// Repository persists job postings
type Repository interface {
	Posting(ctx context.Context, id string) (domain.JobPosting, error)

	// UpdatePosting runs fn against the stored posting inside one transaction
	// and writes the result back; an error from fn aborts the write
	UpdatePosting(ctx context.Context, id string, fn func(p *domain.JobPosting) error) (domain.JobPosting, error)
}

// BlobStore stores uploaded images and hands out their public URLs
type BlobStore interface {
	Put(ctx context.Context, prefix, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// Revalidator tells downstream caches which paths went stale
type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string) error
}

// Package events fans out cache revalidation notices. Front-end caches and
// in-process caches (company groups) subscribe to the same paths.
package events

import (
	"context"
	"fmt"
	"sync"
)

// Handler receives revalidated paths
type Handler func(paths []string)

// Bus publishes revalidation paths and dispatches them to subscribers
type Bus interface {
	Revalidate(ctx context.Context, paths ...string) error
	OnRevalidate(h Handler)
}

// Revalidation is the wire payload
type Revalidation struct {
	Paths []string `json:"paths"`
}

func PostingPath(id string) string { return "/company/job-postings/" + id }

const PostingListPath = "/company/job-postings"

func GroupsPath(accountID string) string { return "/company/groups/" + accountID }

func CandidatePath(id string) string { return "/candidates/" + id }

type handlers struct {
	mu   sync.RWMutex
	list []Handler
}

func (h *handlers) add(fn Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.list = append(h.list, fn)
}

func (h *handlers) dispatch(paths []string) {
	h.mu.RLock()
	list := append([]Handler(nil), h.list...)
	h.mu.RUnlock()

	for _, fn := range list {
		fn(paths)
	}
}

// Local dispatches synchronously inside the process
type Local struct {
	handlers
}

func NewLocal() *Local { return &Local{} }

func (l *Local) Revalidate(ctx context.Context, paths ...string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("revalidate: %w", err)
	}
	if len(paths) == 0 {
		return nil
	}
	l.dispatch(paths)
	return nil
}

func (l *Local) OnRevalidate(h Handler) { l.add(h) }

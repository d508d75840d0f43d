// Package group lists company groups and deletes them with everything that
// references them.
package group

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/honeycarbs/scoutdesk/internal/auth"
	"github.com/honeycarbs/scoutdesk/internal/domain"
	"github.com/honeycarbs/scoutdesk/internal/events"
	"github.com/honeycarbs/scoutdesk/internal/metrics"
	"github.com/honeycarbs/scoutdesk/internal/repository"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

// Repository reads groups and runs the cascade delete
type Repository interface {
	Groups(ctx context.Context, accountID string) ([]domain.CompanyGroup, error)
	Group(ctx context.Context, id string) (domain.CompanyGroup, error)

	// DeleteGroupCascade removes the group and every referencing row in one
	// transaction and returns the ids of the deleted job postings
	DeleteGroupCascade(ctx context.Context, groupID string) ([]string, error)
}

// Deleted reports what a group delete removed
type Deleted struct {
	GroupID    string   `json:"group_id"`
	PostingIDs []string `json:"posting_ids"`
}

type Service interface {
	List(ctx context.Context, p auth.Principal) ([]domain.CompanyGroup, error)
	Delete(ctx context.Context, p auth.Principal, groupID string) (Deleted, error)
}

// Option configures Service
type Option func(*config)

type config struct {
	repo     Repository
	index    repository.PostingIndex
	bus      events.Bus
	cacheTTL time.Duration
	clock    func() time.Time
	log      *logging.Logger
	metrics  *metrics.Metrics
}

func WithRepository(repo Repository) Option {
	return func(c *config) { c.repo = repo }
}

func WithIndex(idx repository.PostingIndex) Option {
	return func(c *config) { c.index = idx }
}

// WithBus sets the revalidation bus; the cache also listens on it
func WithBus(b events.Bus) Option {
	return func(c *config) { c.bus = b }
}

// WithCacheTTL overrides DefaultCacheTTL; zero disables caching
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) { c.cacheTTL = ttl }
}

func WithClock(clock func() time.Time) Option {
	return func(c *config) { c.clock = clock }
}

func WithLogger(log *logging.Logger) Option {
	return func(c *config) { c.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

func NewService(opts ...Option) (Service, error) {
	cfg := &config{
		index:    repository.NopIndex{},
		bus:      events.NewLocal(),
		cacheTTL: DefaultCacheTTL,
		clock:    time.Now,
		log:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.repo == nil {
		return nil, fmt.Errorf("group.Service: repository is required")
	}

	s := &service{
		repo:    cfg.repo,
		index:   cfg.index,
		bus:     cfg.bus,
		cache:   newCache(cfg.cacheTTL, cfg.clock),
		log:     cfg.log.Named("group"),
		metrics: cfg.metrics,
	}
	s.bus.OnRevalidate(s.evict)
	return s, nil
}

type service struct {
	repo    Repository
	index   repository.PostingIndex
	bus     events.Bus
	cache   *cache
	log     *logging.Logger
	metrics *metrics.Metrics
}

// evict drops cached lists whose groups path was revalidated
func (s *service) evict(paths []string) {
	prefix := events.GroupsPath("")
	for _, path := range paths {
		if accountID, ok := strings.CutPrefix(path, prefix); ok && accountID != "" {
			s.cache.delete(accountID)
		}
	}
}

func (s *service) List(ctx context.Context, p auth.Principal) ([]domain.CompanyGroup, error) {
	accountID := p.CompanyAccountID
	if accountID == "" || !p.OwnsCompany(accountID) {
		return nil, fmt.Errorf("list groups: %w", domain.ErrForbidden)
	}

	if groups, ok := s.cache.get(accountID); ok {
		s.metrics.ObserveGroupCache(true)
		return groups, nil
	}
	s.metrics.ObserveGroupCache(false)

	groups, err := s.repo.Groups(ctx, accountID)
	if err != nil {
		return nil, err
	}
	s.cache.set(accountID, groups)
	return groups, nil
}

func (s *service) Delete(ctx context.Context, p auth.Principal, groupID string) (Deleted, error) {
	g, err := s.repo.Group(ctx, groupID)
	if err != nil {
		return Deleted{}, err
	}
	if !p.OwnsCompany(g.CompanyAccountID) {
		return Deleted{}, fmt.Errorf("company group %s: %w", groupID, domain.ErrForbidden)
	}

	postingIDs, err := s.repo.DeleteGroupCascade(ctx, groupID)
	s.metrics.ObserveGroupDelete(err)
	if err != nil {
		s.log.Error("group cascade delete failed", "group_id", groupID, "error", err)
		return Deleted{}, err
	}

	if len(postingIDs) > 0 {
		if err := s.index.Remove(ctx, postingIDs...); err != nil {
			s.log.Warn("posting index cleanup failed", "group_id", groupID, "postings", len(postingIDs), "error", err)
		}
	}

	paths := []string{events.GroupsPath(g.CompanyAccountID), events.PostingListPath}
	for _, id := range postingIDs {
		paths = append(paths, events.PostingPath(id))
	}
	s.cache.delete(g.CompanyAccountID)
	if err := s.bus.Revalidate(ctx, paths...); err != nil {
		s.log.Warn("revalidation failed", "group_id", groupID, "error", err)
	}

	s.log.Info("company group deleted", "group_id", groupID, "account_id", g.CompanyAccountID, "postings", len(postingIDs))
	return Deleted{GroupID: groupID, PostingIDs: postingIDs}, nil
}

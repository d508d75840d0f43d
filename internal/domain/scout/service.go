package scout

import (
	"context"
	"fmt"
	"time"

	"github.com/honeycarbs/scoutdesk/internal/auth"
	"github.com/honeycarbs/scoutdesk/internal/domain"
	"github.com/honeycarbs/scoutdesk/internal/metrics"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

type Service interface {
	// Snapshot computes the candidate's scout funnel as of the service clock
	Snapshot(ctx context.Context, p auth.Principal, candidateID string) (Snapshot, error)

	// SnapshotAt is Snapshot with an explicit now
	SnapshotAt(ctx context.Context, p auth.Principal, candidateID string, now time.Time) (Snapshot, error)
}

// Option configures Service
type Option func(*config)

type config struct {
	repo    Repository
	clock   func() time.Time
	log     *logging.Logger
	metrics *metrics.Metrics
}

// WithRepository sets the event repository
func WithRepository(repo Repository) Option {
	return func(c *config) {
		c.repo = repo
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}

func WithLogger(log *logging.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// NewService builds Service from options
func NewService(opts ...Option) (Service, error) {
	cfg := &config{
		clock: time.Now,
		log:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.repo == nil {
		return nil, fmt.Errorf("scout.Service: repository is required")
	}

	return &service{
		repo:    cfg.repo,
		clock:   cfg.clock,
		log:     cfg.log.Named("scout"),
		metrics: cfg.metrics,
	}, nil
}

type service struct {
	repo    Repository
	clock   func() time.Time
	log     *logging.Logger
	metrics *metrics.Metrics
}

func (s *service) Snapshot(ctx context.Context, p auth.Principal, candidateID string) (Snapshot, error) {
	return s.SnapshotAt(ctx, p, candidateID, s.clock())
}

func (s *service) SnapshotAt(ctx context.Context, p auth.Principal, candidateID string, now time.Time) (Snapshot, error) {
	if candidateID == "" {
		return Snapshot{}, fmt.Errorf("candidate id is required: %w", domain.ErrNotFound)
	}
	if !p.IsCandidate(candidateID) {
		return Snapshot{}, fmt.Errorf("scout stats of %s: %w", candidateID, domain.ErrForbidden)
	}

	msgs, err := s.repo.ScoutMessages(ctx, candidateID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load scout messages: %w", err)
	}
	apps, err := s.repo.Applications(ctx, candidateID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load applications: %w", err)
	}

	snap := Aggregate(candidateID, now, msgs, apps)
	s.metrics.ObserveSnapshot()
	s.log.Debug("scout snapshot computed",
		"candidate_id", candidateID,
		"messages", len(msgs),
		"applications", len(apps),
		"received_total", snap.Total.Received,
	)

	return snap, nil
}

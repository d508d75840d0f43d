package candidate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/honeycarbs/scoutdesk/internal/auth"
	"github.com/honeycarbs/scoutdesk/internal/domain"
	"github.com/honeycarbs/scoutdesk/internal/domain/workflow"
	"github.com/honeycarbs/scoutdesk/internal/events"
	"github.com/honeycarbs/scoutdesk/internal/metrics"
	"github.com/honeycarbs/scoutdesk/internal/staging"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

// Repository persists candidate profiles
type Repository interface {
	Candidate(ctx context.Context, id string) (domain.Candidate, error)

	// SaveCandidate upserts the profile row and replaces every child
	// collection in one transaction
	SaveCandidate(ctx context.Context, c domain.Candidate) error
}

// Revalidator tells downstream caches which paths went stale
type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string) error
}

// EditURL is where a missing draft sends the user back to
func EditURL(id string) string { return events.CandidatePath(id) + "/edit" }

type EditView struct {
	Draft  Draft          `json:"draft"`
	State  workflow.State `json:"state"`
	Staged bool           `json:"staged"`
}

type Outcome struct {
	Candidate domain.Candidate `json:"-"`
	State     workflow.State   `json:"state"`
	Redirect  string           `json:"redirect,omitempty"`
}

type Service interface {
	Edit(ctx context.Context, p auth.Principal, id string) (EditView, error)
	Stage(ctx context.Context, p auth.Principal, id string, form Form) (Draft, error)
	Confirm(ctx context.Context, p auth.Principal, id string) (EditView, error)
	Back(ctx context.Context, p auth.Principal, id string) (Draft, error)
	Commit(ctx context.Context, p auth.Principal, id string) (Outcome, error)
}

// Option configures Service
type Option func(*config)

type config struct {
	repo    Repository
	stager  staging.Stager
	bus     Revalidator
	clock   func() time.Time
	log     *logging.Logger
	metrics *metrics.Metrics
}

func WithRepository(repo Repository) Option {
	return func(c *config) { c.repo = repo }
}

func WithStager(s staging.Stager) Option {
	return func(c *config) { c.stager = s }
}

func WithRevalidator(r Revalidator) Option {
	return func(c *config) { c.bus = r }
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
		bus:   events.NewLocal(),
		clock: time.Now,
		log:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.repo == nil {
		return nil, fmt.Errorf("candidate.Service: repository is required")
	}
	if cfg.stager == nil {
		return nil, fmt.Errorf("candidate.Service: stager is required")
	}

	return &service{
		repo:    cfg.repo,
		stager:  cfg.stager,
		bus:     cfg.bus,
		clock:   cfg.clock,
		log:     cfg.log.Named("candidate"),
		metrics: cfg.metrics,
	}, nil
}

type service struct {
	repo    Repository
	stager  staging.Stager
	bus     Revalidator
	clock   func() time.Time
	log     *logging.Logger
	metrics *metrics.Metrics
}

// authorize checks p may edit profile id and returns its edit-session scope
func authorize(p auth.Principal, id string) (string, error) {
	if !p.IsCandidate(id) {
		return "", fmt.Errorf("candidate %s: %w", id, domain.ErrForbidden)
	}
	return p.RequireSession()
}

func (s *service) staged(ctx context.Context, scope, id string) (staging.Entry, Draft, bool, error) {
	e, found, err := s.stager.Load(ctx, scope, id)
	if err != nil || !found {
		return staging.Entry{}, Draft{}, false, err
	}
	if e.Kind != staging.KindCandidate {
		return staging.Entry{}, Draft{}, false, nil
	}
	var d Draft
	if err := e.Decode(&d); err != nil {
		return staging.Entry{}, Draft{}, false, fmt.Errorf("decode staged profile: %w", err)
	}
	return e, d, true, nil
}

func (s *service) save(ctx context.Context, scope, id string, state workflow.State, d Draft) error {
	e, err := staging.NewEntry(staging.KindCandidate, id, state, d)
	if err != nil {
		return err
	}
	return s.stager.Save(ctx, scope, id, e)
}

// stored returns the saved profile, or an empty one for a first edit
func (s *service) stored(ctx context.Context, id string) (domain.Candidate, error) {
	c, err := s.repo.Candidate(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Candidate{ID: id}, nil
	}
	return c, err
}

func (s *service) Edit(ctx context.Context, p auth.Principal, id string) (EditView, error) {
	scope, err := authorize(p, id)
	if err != nil {
		return EditView{}, err
	}

	e, d, found, err := s.staged(ctx, scope, id)
	if err != nil {
		return EditView{}, err
	}
	if found {
		return EditView{Draft: d, State: e.State, Staged: true}, nil
	}

	c, err := s.stored(ctx, id)
	if err != nil {
		return EditView{}, err
	}
	return EditView{Draft: FromCandidate(c), State: workflow.StateEditing}, nil
}

func (s *service) Stage(ctx context.Context, p auth.Principal, id string, form Form) (Draft, error) {
	scope, err := authorize(p, id)
	if err != nil {
		return Draft{}, err
	}

	d, err := validateForm(form)
	if err != nil {
		return Draft{}, err
	}

	current := workflow.StateNone
	e, found, err := s.stager.Load(ctx, scope, id)
	if err != nil {
		return Draft{}, err
	}
	if found && e.Kind == staging.KindCandidate {
		current = e.State
	}
	switch current {
	case workflow.StateCommitting, workflow.StateScopeSelection, workflow.StateDone:
		current = workflow.StateNone
	}

	next, err := workflow.Next(current, workflow.EventSubmit)
	if err != nil {
		return Draft{}, err
	}
	if err := s.save(ctx, scope, id, next, d); err != nil {
		return Draft{}, err
	}

	s.metrics.ObserveStage(string(staging.KindCandidate))
	s.log.Debug("candidate profile staged", "candidate_id", id, "scope", scope)
	return d, nil
}

func validateForm(form Form) (Draft, error) {
	d, parseErr := form.Draft()

	verr := &domain.ValidationError{}
	var pe *domain.ValidationError
	if errors.As(parseErr, &pe) {
		for k, v := range pe.Fields {
			verr.Add(k, v)
		}
	}
	if err := d.Validate(); err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return Draft{}, err
		}
		for k, v := range ve.Fields {
			verr.Add(k, v)
		}
	}

	if err := verr.OrNil(); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func (s *service) Confirm(ctx context.Context, p auth.Principal, id string) (EditView, error) {
	scope, err := authorize(p, id)
	if err != nil {
		return EditView{}, err
	}

	e, d, found, err := s.staged(ctx, scope, id)
	if err != nil {
		return EditView{}, err
	}
	if !found || e.State != workflow.StateStaged {
		return EditView{}, fmt.Errorf("candidate %s: %w", id, domain.ErrDraftNotFound)
	}
	return EditView{Draft: d, State: e.State, Staged: true}, nil
}

func (s *service) Back(ctx context.Context, p auth.Principal, id string) (Draft, error) {
	scope, err := authorize(p, id)
	if err != nil {
		return Draft{}, err
	}

	e, d, found, err := s.staged(ctx, scope, id)
	if err != nil {
		return Draft{}, err
	}
	if !found {
		return Draft{}, fmt.Errorf("candidate %s: %w", id, domain.ErrDraftNotFound)
	}

	next, err := workflow.Next(e.State, workflow.EventBack)
	if err != nil {
		return Draft{}, err
	}
	if err := s.save(ctx, scope, id, next, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Commit writes the staged profile and clears the draft; profiles have no
// publication step so a successful commit ends the cycle
func (s *service) Commit(ctx context.Context, p auth.Principal, id string) (Outcome, error) {
	scope, err := authorize(p, id)
	if err != nil {
		return Outcome{}, err
	}

	e, d, found, err := s.staged(ctx, scope, id)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		return Outcome{}, fmt.Errorf("candidate %s: %w", id, domain.ErrDraftNotFound)
	}

	committing, err := workflow.Next(e.State, workflow.EventConfirm)
	if err != nil {
		return Outcome{}, err
	}
	if err := s.save(ctx, scope, id, committing, d); err != nil {
		return Outcome{}, err
	}

	c, err := s.commit(ctx, id, d)
	s.metrics.ObserveCommit(string(staging.KindCandidate), err)
	if err != nil {
		failed, _ := workflow.Next(committing, workflow.EventFailed)
		if saveErr := s.save(ctx, scope, id, failed, d); saveErr != nil {
			s.log.Error("failed to restore staged profile", "candidate_id", id, "error", saveErr)
		}
		s.log.Warn("candidate commit failed", "candidate_id", id, "error", err)
		return Outcome{State: failed}, err
	}

	if err := s.stager.Clear(ctx, scope, id); err != nil {
		s.log.Warn("failed to clear staged profile", "candidate_id", id, "error", err)
	}
	if err := s.bus.Revalidate(ctx, events.CandidatePath(id)); err != nil {
		s.log.Warn("revalidation failed", "candidate_id", id, "error", err)
	}
	s.log.Info("candidate profile committed", "candidate_id", id)

	return Outcome{Candidate: c, State: workflow.StateDone, Redirect: events.CandidatePath(id)}, nil
}

func (s *service) commit(ctx context.Context, id string, d Draft) (domain.Candidate, error) {
	c, err := s.stored(ctx, id)
	if err != nil {
		return domain.Candidate{}, err
	}
	d.Apply(&c)
	c.UpdatedAt = s.clock()

	if err := s.repo.SaveCandidate(ctx, c); err != nil {
		return domain.Candidate{}, err
	}
	return c, nil
}

package posting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/honeycarbs/scoutdesk/internal/auth"
	"github.com/honeycarbs/scoutdesk/internal/domain"
	"github.com/honeycarbs/scoutdesk/internal/domain/workflow"
	"github.com/honeycarbs/scoutdesk/internal/events"
	"github.com/honeycarbs/scoutdesk/internal/metrics"
	"github.com/honeycarbs/scoutdesk/internal/repository"
	"github.com/honeycarbs/scoutdesk/internal/staging"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

const maxParallelUploads = 4

// EditURL is where a missing or stale draft sends the user back to
func EditURL(id string) string { return events.PostingPath(id) + "/edit" }

// DetailURL is where a finished edit lands
func DetailURL(id string) string { return events.PostingPath(id) }

// EditView is what the edit form renders: the staged draft when one exists,
// otherwise the stored posting
type EditView struct {
	Posting domain.JobPosting `json:"-"`
	Draft   Draft             `json:"draft"`
	State   workflow.State    `json:"state"`
	Staged  bool              `json:"staged"`
}

// Outcome reports a finished step and where the client goes next
type Outcome struct {
	Posting  domain.JobPosting `json:"-"`
	State    workflow.State    `json:"state"`
	Redirect string            `json:"redirect,omitempty"`
}

type Service interface {
	Get(ctx context.Context, p auth.Principal, id string) (domain.JobPosting, error)
	Edit(ctx context.Context, p auth.Principal, id string) (EditView, error)
	Stage(ctx context.Context, p auth.Principal, id string, form Form) (Draft, error)
	Confirm(ctx context.Context, p auth.Principal, id string) (EditView, error)
	Back(ctx context.Context, p auth.Principal, id string) (Draft, error)
	Commit(ctx context.Context, p auth.Principal, id string) (Outcome, error)
	SetPublication(ctx context.Context, p auth.Principal, id string, t domain.PublicationType) (Outcome, error)
	ChangeStatus(ctx context.Context, p auth.Principal, id string, status domain.PostingStatus) (domain.JobPosting, error)
	Related(ctx context.Context, p auth.Principal, id string, limit int) ([]repository.RelatedPosting, error)
}

// Option configures Service
type Option func(*config)

type config struct {
	repo    Repository
	stager  staging.Stager
	blobs   BlobStore
	index   repository.PostingIndex
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

// WithBlobStore sets where new images are uploaded
func WithBlobStore(b BlobStore) Option {
	return func(c *config) { c.blobs = b }
}

// WithIndex sets the graph index of visible postings
func WithIndex(idx repository.PostingIndex) Option {
	return func(c *config) { c.index = idx }
}

func WithRevalidator(r Revalidator) Option {
	return func(c *config) { c.bus = r }
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(c *config) { c.clock = clock }
}

func WithLogger(log *logging.Logger) Option {
	return func(c *config) { c.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// NewService builds Service from options
func NewService(opts ...Option) (Service, error) {
	cfg := &config{
		index: repository.NopIndex{},
		bus:   events.NewLocal(),
		clock: time.Now,
		log:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.repo == nil {
		return nil, fmt.Errorf("posting.Service: repository is required")
	}
	if cfg.stager == nil {
		return nil, fmt.Errorf("posting.Service: stager is required")
	}

	return &service{
		repo:    cfg.repo,
		stager:  cfg.stager,
		blobs:   cfg.blobs,
		index:   cfg.index,
		bus:     cfg.bus,
		clock:   cfg.clock,
		log:     cfg.log.Named("posting"),
		metrics: cfg.metrics,
	}, nil
}

type service struct {
	repo    Repository
	stager  staging.Stager
	blobs   BlobStore
	index   repository.PostingIndex
	bus     Revalidator
	clock   func() time.Time
	log     *logging.Logger
	metrics *metrics.Metrics
}

// owned loads the posting and checks the principal's company owns it
func (s *service) owned(ctx context.Context, p auth.Principal, id string) (domain.JobPosting, error) {
	posting, err := s.repo.Posting(ctx, id)
	if err != nil {
		return domain.JobPosting{}, err
	}
	if !p.OwnsCompany(posting.CompanyAccountID) {
		return domain.JobPosting{}, fmt.Errorf("job posting %s: %w", id, domain.ErrForbidden)
	}
	return posting, nil
}

// staged loads the draft of id from the principal's edit session
func (s *service) staged(ctx context.Context, scope, id string) (staging.Entry, Draft, bool, error) {
	e, found, err := s.stager.Load(ctx, scope, id)
	if err != nil || !found {
		return staging.Entry{}, Draft{}, false, err
	}
	if e.Kind != staging.KindJobPosting {
		return staging.Entry{}, Draft{}, false, nil
	}
	var d Draft
	if err := e.Decode(&d); err != nil {
		return staging.Entry{}, Draft{}, false, fmt.Errorf("decode staged draft: %w", err)
	}
	return e, d, true, nil
}

func (s *service) save(ctx context.Context, scope, id string, state workflow.State, d Draft) error {
	e, err := staging.NewEntry(staging.KindJobPosting, id, state, d)
	if err != nil {
		return err
	}
	return s.stager.Save(ctx, scope, id, e)
}

func (s *service) Get(ctx context.Context, p auth.Principal, id string) (domain.JobPosting, error) {
	posting, err := s.repo.Posting(ctx, id)
	if err != nil {
		return domain.JobPosting{}, err
	}
	if !posting.Visible() && !p.OwnsCompany(posting.CompanyAccountID) {
		return domain.JobPosting{}, fmt.Errorf("job posting %s: %w", id, domain.ErrNotFound)
	}
	return posting, nil
}

func (s *service) Edit(ctx context.Context, p auth.Principal, id string) (EditView, error) {
	scope, err := p.RequireSession()
	if err != nil {
		return EditView{}, err
	}
	posting, err := s.owned(ctx, p, id)
	if err != nil {
		return EditView{}, err
	}

	e, d, found, err := s.staged(ctx, scope, id)
	if err != nil {
		return EditView{}, err
	}
	if !found {
		return EditView{Posting: posting, Draft: FromPosting(posting), State: workflow.StateEditing}, nil
	}
	return EditView{Posting: posting, Draft: d, State: e.State, Staged: true}, nil
}

func (s *service) Stage(ctx context.Context, p auth.Principal, id string, form Form) (Draft, error) {
	scope, err := p.RequireSession()
	if err != nil {
		return Draft{}, err
	}
	if _, err := s.owned(ctx, p, id); err != nil {
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
	if found {
		current = e.State
	}
	// a finished cycle starts over, and so does a commit that never came back
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

	s.metrics.ObserveStage(string(staging.KindJobPosting))
	s.log.Debug("job posting draft staged", "posting_id", id, "scope", scope, "new_images", len(d.Images.New))
	return d, nil
}

// validateForm normalizes the form and reports every failing field at once
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

	for _, img := range d.Images.New {
		if _, err := domain.ImageExtension(img.ContentType); err != nil {
			verr.Add("images", img.Filename+" is not a supported image type")
			continue
		}
		if _, err := img.Bytes(); err != nil {
			verr.Add("images", "could not read "+img.Filename)
		}
	}

	if err := verr.OrNil(); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func (s *service) Confirm(ctx context.Context, p auth.Principal, id string) (EditView, error) {
	scope, err := p.RequireSession()
	if err != nil {
		return EditView{}, err
	}
	posting, err := s.owned(ctx, p, id)
	if err != nil {
		return EditView{}, err
	}

	e, d, found, err := s.staged(ctx, scope, id)
	if err != nil {
		return EditView{}, err
	}
	if !found || e.State != workflow.StateStaged {
		return EditView{}, fmt.Errorf("job posting %s: %w", id, domain.ErrDraftNotFound)
	}
	return EditView{Posting: posting, Draft: d, State: e.State, Staged: true}, nil
}

func (s *service) Back(ctx context.Context, p auth.Principal, id string) (Draft, error) {
	scope, err := p.RequireSession()
	if err != nil {
		return Draft{}, err
	}
	if _, err := s.owned(ctx, p, id); err != nil {
		return Draft{}, err
	}

	e, d, found, err := s.staged(ctx, scope, id)
	if err != nil {
		return Draft{}, err
	}
	if !found {
		return Draft{}, fmt.Errorf("job posting %s: %w", id, domain.ErrDraftNotFound)
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

func (s *service) Commit(ctx context.Context, p auth.Principal, id string) (Outcome, error) {
	scope, err := p.RequireSession()
	if err != nil {
		return Outcome{}, err
	}
	if _, err := s.owned(ctx, p, id); err != nil {
		return Outcome{}, err
	}

	e, d, found, err := s.staged(ctx, scope, id)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		return Outcome{}, fmt.Errorf("job posting %s: %w", id, domain.ErrDraftNotFound)
	}

	committing, err := workflow.Next(e.State, workflow.EventConfirm)
	if err != nil {
		return Outcome{}, err
	}
	if err := s.save(ctx, scope, id, committing, d); err != nil {
		return Outcome{}, err
	}

	posting, err := s.commit(ctx, p, id, d)
	s.metrics.ObserveCommit(string(staging.KindJobPosting), err)
	if err != nil {
		failed, _ := workflow.Next(committing, workflow.EventFailed)
		if saveErr := s.save(ctx, scope, id, failed, d); saveErr != nil {
			s.log.Error("failed to restore staged draft", "posting_id", id, "error", saveErr)
		}
		s.log.Warn("job posting commit failed", "posting_id", id, "error", err)
		return Outcome{State: failed}, err
	}

	done, _ := workflow.Next(committing, workflow.EventSucceeded)
	if err := s.save(ctx, scope, id, done, d); err != nil {
		return Outcome{}, err
	}

	if posting.Visible() {
		s.reindex(ctx, posting)
	}
	s.revalidate(ctx, events.PostingPath(id), events.PostingListPath)
	s.log.Info("job posting committed", "posting_id", id, "status", posting.Status)

	return Outcome{Posting: posting, State: done}, nil
}

// commit uploads the new images and writes the draft. Uploads finish before
// any row is written; a failure on either side deletes this commit's blobs.
func (s *service) commit(ctx context.Context, p auth.Principal, id string, d Draft) (domain.JobPosting, error) {
	uploaded, err := s.upload(ctx, id, d.Images.New)
	if err != nil {
		return domain.JobPosting{}, err
	}

	posting, err := s.repo.UpdatePosting(ctx, id, func(cur *domain.JobPosting) error {
		if !p.OwnsCompany(cur.CompanyAccountID) {
			return fmt.Errorf("job posting %s: %w", id, domain.ErrForbidden)
		}
		cur.Apply(d.Changes(imageURLs(cur.ImageURLs, d.Images.Existing, uploaded)), s.clock())
		return nil
	})
	if err != nil {
		s.discard(uploaded)
		return domain.JobPosting{}, err
	}
	return posting, nil
}

// imageURLs appends uploads to the kept URLs; nil keeps the stored list
func imageURLs(stored, existing, uploaded []string) []string {
	if existing == nil && len(uploaded) == 0 {
		return nil
	}
	base := existing
	if base == nil {
		base = stored
	}
	out := make([]string, 0, len(base)+len(uploaded))
	out = append(out, base...)
	return append(out, uploaded...)
}

func (s *service) upload(ctx context.Context, id string, imgs []NewImage) ([]string, error) {
	if len(imgs) == 0 {
		return nil, nil
	}
	if s.blobs == nil {
		return nil, fmt.Errorf("no blob store configured: %w", domain.ErrUpload)
	}

	urls := make([]string, len(imgs))
	var mu sync.Mutex
	var done []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)
	for i, img := range imgs {
		g.Go(func() error {
			data, err := img.Bytes()
			if err != nil {
				return err
			}
			url, err := s.blobs.Put(gctx, "job-postings/"+id, img.ContentType, data)
			s.metrics.ObserveUpload(err)
			if err != nil {
				return fmt.Errorf("upload %s: %w", img.Filename, err)
			}
			urls[i] = url
			mu.Lock()
			done = append(done, url)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.discard(done)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpload, err)
	}
	return urls, nil
}

// discard deletes blobs of an aborted commit
func (s *service) discard(urls []string) {
	if len(urls) == 0 || s.blobs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, u := range urls {
		if err := s.blobs.Delete(ctx, u); err != nil {
			s.log.Warn("failed to delete orphaned upload", "url", u, "error", err)
		}
	}
}

func (s *service) SetPublication(ctx context.Context, p auth.Principal, id string, t domain.PublicationType) (Outcome, error) {
	if !t.Valid() {
		verr := &domain.ValidationError{}
		verr.Add("publication_type", "is invalid")
		return Outcome{}, verr
	}
	scope, err := p.RequireSession()
	if err != nil {
		return Outcome{}, err
	}
	if _, err := s.owned(ctx, p, id); err != nil {
		return Outcome{}, err
	}

	e, found, err := s.stager.Load(ctx, scope, id)
	if err != nil {
		return Outcome{}, err
	}
	state := workflow.StateDone
	if found {
		if state, err = workflow.Next(e.State, workflow.EventSaveScope); err != nil {
			return Outcome{}, err
		}
	}

	posting, err := s.repo.UpdatePosting(ctx, id, func(cur *domain.JobPosting) error {
		if !p.OwnsCompany(cur.CompanyAccountID) {
			return fmt.Errorf("job posting %s: %w", id, domain.ErrForbidden)
		}
		cur.PublicationType = t
		cur.UpdatedAt = s.clock()
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	s.reindex(ctx, posting)
	if found {
		if err := s.stager.Clear(ctx, scope, id); err != nil {
			s.log.Warn("failed to clear staged draft", "posting_id", id, "error", err)
		}
	}
	s.revalidate(ctx, events.PostingPath(id), events.PostingListPath)
	s.log.Info("publication scope saved", "posting_id", id, "publication_type", t)

	return Outcome{Posting: posting, State: state, Redirect: DetailURL(id)}, nil
}

func (s *service) ChangeStatus(ctx context.Context, p auth.Principal, id string, status domain.PostingStatus) (domain.JobPosting, error) {
	if !p.IsAdmin() {
		return domain.JobPosting{}, fmt.Errorf("change status: %w", domain.ErrForbidden)
	}
	if !status.Valid() {
		verr := &domain.ValidationError{}
		verr.Add("status", "is invalid")
		return domain.JobPosting{}, verr
	}

	posting, err := s.repo.UpdatePosting(ctx, id, func(cur *domain.JobPosting) error {
		cur.Apply(domain.PostingChanges{Status: &status}, s.clock())
		return nil
	})
	if err != nil {
		return domain.JobPosting{}, err
	}

	s.reindex(ctx, posting)
	s.revalidate(ctx, events.PostingPath(id), events.PostingListPath)
	s.log.Info("job posting status changed", "posting_id", id, "status", status)
	return posting, nil
}

func (s *service) Related(ctx context.Context, p auth.Principal, id string, limit int) ([]repository.RelatedPosting, error) {
	if _, err := s.Get(ctx, p, id); err != nil {
		return nil, err
	}
	return s.index.Related(ctx, id, limit)
}

// reindex indexes visible postings and removes the rest; failures are only logged
func (s *service) reindex(ctx context.Context, posting domain.JobPosting) {
	var err error
	if posting.Visible() {
		err = s.index.Index(ctx, posting)
	} else {
		err = s.index.Remove(ctx, posting.ID)
	}
	if err != nil {
		s.log.Warn("posting index update failed", "posting_id", posting.ID, "error", err)
	}
}

func (s *service) revalidate(ctx context.Context, paths ...string) {
	if err := s.bus.Revalidate(ctx, paths...); err != nil {
		s.log.Warn("revalidation failed", "paths", paths, "error", err)
	}
}

package posting

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/scoutdesk/internal/auth"
	"github.com/honeycarbs/scoutdesk/internal/domain"
	"github.com/honeycarbs/scoutdesk/internal/domain/workflow"
	"github.com/honeycarbs/scoutdesk/internal/events"
	"github.com/honeycarbs/scoutdesk/internal/repository"
	"github.com/honeycarbs/scoutdesk/internal/staging"
)

var now = time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC)

type memRepo struct {
	mu       sync.Mutex
	postings map[string]domain.JobPosting
	failNext error
}

func (r *memRepo) Posting(_ context.Context, id string) (domain.JobPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.postings[id]
	if !ok {
		return domain.JobPosting{}, fmt.Errorf("job posting %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (r *memRepo) UpdatePosting(_ context.Context, id string, fn func(*domain.JobPosting) error) (domain.JobPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext; err != nil {
		r.failNext = nil
		return domain.JobPosting{}, err
	}
	p, ok := r.postings[id]
	if !ok {
		return domain.JobPosting{}, domain.ErrNotFound
	}
	if err := fn(&p); err != nil {
		return domain.JobPosting{}, err
	}
	r.postings[id] = p
	return p, nil
}

type memBlobs struct {
	mu      sync.Mutex
	stored  map[string]bool
	failOn  string
	counter int
}

func (b *memBlobs) Put(_ context.Context, prefix, contentType string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if string(data) == b.failOn {
		return "", errors.New("bucket unavailable")
	}
	b.counter++
	url := fmt.Sprintf("/uploads/%s/%d", prefix, b.counter)
	b.stored[url] = true
	return url, nil
}

func (b *memBlobs) Delete(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.stored, url)
	return nil
}

func (b *memBlobs) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.stored)
}

type recordingIndex struct {
	repository.NopIndex
	indexed []string
	removed []string
}

func (i *recordingIndex) Index(_ context.Context, p domain.JobPosting) error {
	i.indexed = append(i.indexed, p.ID)
	return nil
}

func (i *recordingIndex) Remove(_ context.Context, ids ...string) error {
	i.removed = append(i.removed, ids...)
	return nil
}

type fixture struct {
	svc    Service
	repo   *memRepo
	blobs  *memBlobs
	stager *staging.Memory
	index  *recordingIndex
	paths  [][]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: &memRepo{postings: map[string]domain.JobPosting{
			"p-1": {
				ID:               "p-1",
				GroupID:          "g-1",
				CompanyAccountID: "acct-1",
				Title:            "Old title",
				ImageURLs:        []string{"/uploads/old.png"},
				Status:           domain.StatusDraft,
				PublicationType:  domain.PublicationPublic,
			},
		}},
		blobs:  &memBlobs{stored: map[string]bool{}},
		stager: staging.NewMemory(time.Hour),
		index:  &recordingIndex{},
	}
	bus := events.NewLocal()
	bus.OnRevalidate(func(paths []string) { f.paths = append(f.paths, paths) })

	svc, err := NewService(
		WithRepository(f.repo),
		WithStager(f.stager),
		WithBlobStore(f.blobs),
		WithIndex(f.index),
		WithRevalidator(bus),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

var owner = auth.Principal{Role: auth.RoleCompany, CompanyAccountID: "acct-1", SessionID: "tab-1"}

func validForm(t *testing.T) Form {
	t.Helper()
	raw := `{
		"title": "Backend engineer",
		"job_types": [{"id": "jt-1", "name": "Engineering"}],
		"industries": "IT",
		"description": "Build APIs",
		"position_summary": "Lead the platform team",
		"required_skills": ["Go", "SQL"],
		"preferred_skills": "",
		"other_requirements": "Business-level Japanese",
		"salary_min": "4,000,000",
		"salary_max": 6000000,
		"locations": ["Tokyo", " ", "Osaka"],
		"working_hours": "9:00-18:00",
		"holidays": "Weekends",
		"selection_process": "Two interviews",
		"appeal_points": ["Remote friendly"],
		"skills": [{"name": "Go"}, "PostgreSQL"],
		"images": {"existing": ["/uploads/old.png"]}
	}`
	var f Form
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	return f
}

func TestStageNormalizesForm(t *testing.T) {
	f := newFixture(t)

	d, err := f.svc.Stage(context.Background(), owner, "p-1", validForm(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"Engineering"}, d.JobTypes)
	assert.Equal(t, []string{"IT"}, d.Industries)
	assert.Equal(t, []string{"Tokyo", "Osaka"}, d.Locations)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, d.Skills)
	assert.Equal(t, "Go\nSQL", d.RequiredSkills)
	assert.Equal(t, 4000000, *d.SalaryMin)
	assert.Equal(t, 6000000, *d.SalaryMax)

	e, found, err := f.stager.Load(context.Background(), "tab-1", "p-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, workflow.StateStaged, e.State)
}

func TestStageRejectsInvertedSalary(t *testing.T) {
	f := newFixture(t)
	form := validForm(t)
	form.SalaryMin = domain.FlexOf("800")
	form.SalaryMax = domain.FlexOf("600")

	_, err := f.svc.Stage(context.Background(), owner, "p-1", form)
	require.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "salary_max")

	_, found, err := f.stager.Load(context.Background(), "tab-1", "p-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStageReportsEveryMissingField(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Stage(context.Background(), owner, "p-1", Form{SalaryMin: domain.FlexOf("abc")})

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	for _, field := range []string{
		"title", "job_types", "industries", "description", "position_summary",
		"required_skills", "other_requirements", "salary_min", "salary_max",
		"locations", "working_hours", "holidays", "selection_process", "appeal_points",
	} {
		assert.Contains(t, verr.Fields, field)
	}
	assert.Equal(t, "must be a whole number", verr.Fields["salary_min"])
	assert.NotContains(t, verr.Fields, "preferred_skills")
	assert.NotContains(t, verr.Fields, "remarks")
}

func TestStageConfirmBackPreservesDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	staged, err := f.svc.Stage(ctx, owner, "p-1", validForm(t))
	require.NoError(t, err)

	view, err := f.svc.Confirm(ctx, owner, "p-1")
	require.NoError(t, err)
	assert.Equal(t, staged, view.Draft)

	back, err := f.svc.Back(ctx, owner, "p-1")
	require.NoError(t, err)
	assert.Equal(t, staged, back)

	edit, err := f.svc.Edit(ctx, owner, "p-1")
	require.NoError(t, err)
	assert.True(t, edit.Staged)
	assert.Equal(t, workflow.StateEditing, edit.State)
	assert.Equal(t, staged, edit.Draft)

	// confirm is only reachable again after resubmitting
	_, err = f.svc.Confirm(ctx, owner, "p-1")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestEditWithoutDraftShowsStoredPosting(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.Edit(context.Background(), owner, "p-1")
	require.NoError(t, err)
	assert.False(t, view.Staged)
	assert.Equal(t, "Old title", view.Draft.Title)
}

func TestConfirmWithoutDraft(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Confirm(context.Background(), owner, "p-1")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)

	_, err = f.svc.Commit(context.Background(), owner, "p-1")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestOwnershipAndSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := auth.Principal{Role: auth.RoleCompany, CompanyAccountID: "acct-2", SessionID: "tab-9"}
	_, err := f.svc.Stage(ctx, other, "p-1", validForm(t))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	noSession := owner
	noSession.SessionID = ""
	_, err = f.svc.Stage(ctx, noSession, "p-1", validForm(t))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Edit(ctx, owner, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func png(s string) NewImage {
	return NewImage{
		Data:        "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(s)),
		ContentType: "image/png",
		Filename:    s + ".png",
	}
}

func TestCommitAppliesDraftAndUploads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	form := validForm(t)
	form.Images.New = []NewImage{png("a"), png("b")}
	_, err := f.svc.Stage(ctx, owner, "p-1", form)
	require.NoError(t, err)

	out, err := f.svc.Commit(ctx, owner, "p-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateScopeSelection, out.State)

	stored := f.repo.postings["p-1"]
	assert.Equal(t, "Backend engineer", stored.Title)
	assert.Equal(t, []string{"Tokyo", "Osaka"}, stored.Locations)
	require.Len(t, stored.ImageURLs, 3)
	assert.Equal(t, "/uploads/old.png", stored.ImageURLs[0])
	assert.Equal(t, 2, f.blobs.count())
	assert.Equal(t, now, stored.UpdatedAt)
	assert.Nil(t, stored.PublishedAt)

	e, found, err := f.stager.Load(ctx, "tab-1", "p-1")
	require.NoError(t, err)
	require.True(t, found, "draft survives until the scope is saved")
	assert.Equal(t, workflow.StateScopeSelection, e.State)

	assert.Contains(t, f.paths, []string{"/company/job-postings/p-1", "/company/job-postings"})
}

func TestCommitUploadFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.blobs.failOn = "broken"
	ctx := context.Background()

	form := validForm(t)
	form.Images.New = []NewImage{png("a"), png("broken"), png("c")}
	_, err := f.svc.Stage(ctx, owner, "p-1", form)
	require.NoError(t, err)

	out, err := f.svc.Commit(ctx, owner, "p-1")
	require.ErrorIs(t, err, domain.ErrUpload)
	assert.Equal(t, workflow.StateStaged, out.State)

	assert.Equal(t, "Old title", f.repo.postings["p-1"].Title)
	assert.Zero(t, f.blobs.count(), "uploads of the aborted commit are deleted")

	e, found, err := f.stager.Load(ctx, "tab-1", "p-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, workflow.StateStaged, e.State)
}

func TestCommitDatabaseFailureDeletesUploads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	form := validForm(t)
	form.Images.New = []NewImage{png("a")}
	_, err := f.svc.Stage(ctx, owner, "p-1", form)
	require.NoError(t, err)

	boom := errors.New("database is locked")
	f.repo.failNext = boom

	_, err = f.svc.Commit(ctx, owner, "p-1")
	require.ErrorIs(t, err, boom)
	assert.Zero(t, f.blobs.count())

	// the draft is kept and can be committed again
	out, err := f.svc.Commit(ctx, owner, "p-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateScopeSelection, out.State)
}

func TestSetPublication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.repo.postings["p-1"]
	p.Status = domain.StatusPublished
	f.repo.postings["p-1"] = p

	_, err := f.svc.Stage(ctx, owner, "p-1", validForm(t))
	require.NoError(t, err)
	_, err = f.svc.SetPublication(ctx, owner, "p-1", domain.PublicationScoutOnly)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "scope is chosen after commit")

	_, err = f.svc.Commit(ctx, owner, "p-1")
	require.NoError(t, err)

	out, err := f.svc.SetPublication(ctx, owner, "p-1", domain.PublicationScoutOnly)
	require.NoError(t, err)
	assert.Equal(t, workflow.StateDone, out.State)
	assert.Equal(t, "/company/job-postings/p-1", out.Redirect)
	assert.Equal(t, domain.PublicationScoutOnly, f.repo.postings["p-1"].PublicationType)
	assert.Contains(t, f.index.indexed, "p-1")

	_, found, err := f.stager.Load(ctx, "tab-1", "p-1")
	require.NoError(t, err)
	assert.False(t, found, "draft is cleared once the scope is saved")

	_, err = f.svc.SetPublication(ctx, owner, "p-1", domain.PublicationStopped)
	require.NoError(t, err)
	assert.Equal(t, []string{"p-1"}, f.index.removed)
}

func TestSetPublicationRejectsUnknownType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SetPublication(context.Background(), owner, "p-1", "everyone")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestChangeStatusPublishedAtOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := auth.Principal{Role: auth.RoleAdmin}

	_, err := f.svc.ChangeStatus(ctx, owner, "p-1", domain.StatusPublished)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	p, err := f.svc.ChangeStatus(ctx, admin, "p-1", domain.StatusPublished)
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)
	assert.Equal(t, now, *p.PublishedAt)
	assert.Contains(t, f.index.indexed, "p-1")

	first := *p.PublishedAt
	p, err = f.svc.ChangeStatus(ctx, admin, "p-1", domain.StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, first, *p.PublishedAt)

	_, err = f.svc.ChangeStatus(ctx, admin, "p-1", "archived")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetHidesInvisiblePostingsFromStrangers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := auth.Principal{Role: auth.RoleCandidate, CandidateID: "c-1"}

	_, err := f.svc.Get(ctx, stranger, "p-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Get(ctx, owner, "p-1")
	assert.NoError(t, err)

	related, err := f.svc.Related(ctx, owner, "p-1", 5)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestImageURLs(t *testing.T) {
	stored := []string{"/a"}
	assert.Nil(t, imageURLs(stored, nil, nil))
	assert.Equal(t, []string{"/a", "/n"}, imageURLs(stored, nil, []string{"/n"}))
	assert.Equal(t, []string{"/n"}, imageURLs(stored, []string{}, []string{"/n"}))
	assert.Equal(t, []string{}, imageURLs(stored, []string{}, nil))
}

func TestStageRejectsUnsupportedImageType(t *testing.T) {
	f := newFixture(t)
	form := validForm(t)
	form.Images.New = []NewImage{{
		Data:        base64.StdEncoding.EncodeToString([]byte("%PDF-1.7")),
		ContentType: "application/pdf",
		Filename:    "brochure.pdf",
	}}

	_, err := f.svc.Stage(context.Background(), owner, "p-1", form)
	require.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "brochure.pdf is not a supported image type", verr.Fields["images"])
	assert.Zero(t, f.blobs.count())

	_, found, err := f.stager.Load(context.Background(), "tab-1", "p-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStageRestartsAfterInterruptedCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.svc.Stage(ctx, owner, "p-1", validForm(t))
	require.NoError(t, err)
	stuck, err := staging.NewEntry(staging.KindJobPosting, "p-1", workflow.StateCommitting, d)
	require.NoError(t, err)
	require.NoError(t, f.stager.Save(ctx, "tab-1", "p-1", stuck))

	_, err = f.svc.Stage(ctx, owner, "p-1", validForm(t))
	require.NoError(t, err)

	e, found, err := f.stager.Load(ctx, "tab-1", "p-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, workflow.StateStaged, e.State)
}

func TestCommitPublishesDraftPosting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	form := validForm(t)
	form.Status = domain.FlexOf(" Published ")
	d, err := f.svc.Stage(ctx, owner, "p-1", form)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, d.Status)

	out, err := f.svc.Commit(ctx, owner, "p-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, out.Posting.Status)
	require.NotNil(t, out.Posting.PublishedAt)
	assert.Equal(t, now, *out.Posting.PublishedAt)

	stored := f.repo.postings["p-1"]
	assert.Equal(t, domain.StatusPublished, stored.Status)
	assert.Contains(t, f.index.indexed, "p-1")
}

func TestCommitKeepsPublishedAtOfPublishedPosting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := now.Add(-30 * 24 * time.Hour)
	p := f.repo.postings["p-1"]
	p.Status = domain.StatusPublished
	p.PublishedAt = &first
	f.repo.postings["p-1"] = p

	form := validForm(t)
	form.Status = domain.FlexOf("published")
	_, err := f.svc.Stage(ctx, owner, "p-1", form)
	require.NoError(t, err)

	out, err := f.svc.Commit(ctx, owner, "p-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, out.Posting.Status)
	require.NotNil(t, out.Posting.PublishedAt)
	assert.Equal(t, first, *out.Posting.PublishedAt)
}

func TestCommitWithoutStatusKeepsStoredStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Stage(ctx, owner, "p-1", validForm(t))
	require.NoError(t, err)

	out, err := f.svc.Commit(ctx, owner, "p-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, out.Posting.Status)
	assert.Nil(t, out.Posting.PublishedAt)
}

func TestStageRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	form := validForm(t)
	form.Status = domain.FlexOf("archived")

	_, err := f.svc.Stage(context.Background(), owner, "p-1", form)
	require.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "must be draft, pending_approval, published or closed", verr.Fields["status"])
}

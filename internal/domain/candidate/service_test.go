package candidate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/scoutdesk/internal/auth"
	"github.com/honeycarbs/scoutdesk/internal/domain"
	"github.com/honeycarbs/scoutdesk/internal/domain/workflow"
	"github.com/honeycarbs/scoutdesk/internal/events"
	"github.com/honeycarbs/scoutdesk/internal/staging"
)

var now = time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC)

type memRepo struct {
	candidates map[string]domain.Candidate
	saveErr    error
}

func (r *memRepo) Candidate(_ context.Context, id string) (domain.Candidate, error) {
	c, ok := r.candidates[id]
	if !ok {
		return domain.Candidate{}, fmt.Errorf("candidate %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

func (r *memRepo) SaveCandidate(_ context.Context, c domain.Candidate) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.candidates[c.ID] = c
	return nil
}

type fixture struct {
	svc    Service
	repo   *memRepo
	stager *staging.Memory
	paths  [][]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: &memRepo{candidates: map[string]domain.Candidate{
			"c-1": {ID: "c-1", LastName: "Yamada", FirstName: "Taro", Email: "taro@example.com", Skills: []string{"Go"}},
		}},
		stager: staging.NewMemory(time.Hour),
	}
	bus := events.NewLocal()
	bus.OnRevalidate(func(paths []string) { f.paths = append(f.paths, paths) })

	svc, err := NewService(
		WithRepository(f.repo),
		WithStager(f.stager),
		WithRevalidator(bus),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

var self = auth.Principal{Role: auth.RoleCandidate, CandidateID: "c-1", SessionID: "tab-1"}

func validForm(t *testing.T) Form {
	t.Helper()
	var f Form
	require.NoError(t, json.Unmarshal([]byte(`{
		"last_name": "Yamada",
		"first_name": "Taro",
		"email": "Taro@Example.com",
		"skills": ["Go", " SQL "],
		"education": [{"school_name": "Tokyo University", "graduated_on": "2015-03"}],
		"work_experience": [{"company_name": "Acme", "position": "Engineer"}],
		"job_type_experience": [{"job_type": "Backend", "years": 8}],
		"desired_salary": "900",
		"desired_locations": [{"id": "13", "name": "Tokyo"}, "Osaka"]
	}`), &f))
	return f
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService()
	assert.Error(t, err)

	_, err = NewService(WithRepository(&memRepo{}))
	assert.Error(t, err)
}

func TestStageNormalizesForm(t *testing.T) {
	f := newFixture(t)

	d, err := f.svc.Stage(context.Background(), self, "c-1", validForm(t))
	require.NoError(t, err)
	assert.Equal(t, "taro@example.com", d.Email)
	assert.Equal(t, []string{"Tokyo", "Osaka"}, d.Expectations.DesiredLocations)
	require.NotNil(t, d.Expectations.DesiredSalary)
	assert.Equal(t, 900, *d.Expectations.DesiredSalary)
	assert.Equal(t, 1, f.stager.Len())
}

func TestStageRejectsInvalidProfile(t *testing.T) {
	f := newFixture(t)
	form := validForm(t)
	form.Email = domain.FlexOf("not-an-email")
	form.Education = []domain.Education{{Department: "Law"}}
	form.DesiredSalary = domain.FlexOf("a lot")

	_, err := f.svc.Stage(context.Background(), self, "c-1", form)
	require.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "is required", verr.Fields["education[0].school_name"])
	assert.Equal(t, "must be a whole number", verr.Fields["expectations.desired_salary"])
	assert.Zero(t, f.stager.Len())
}

func TestStageForbiddenForOtherCandidate(t *testing.T) {
	f := newFixture(t)
	other := auth.Principal{Role: auth.RoleCandidate, CandidateID: "c-2", SessionID: "tab-1"}

	_, err := f.svc.Stage(context.Background(), other, "c-1", validForm(t))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEditFallsBackToStoredProfile(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.Edit(context.Background(), self, "c-1")
	require.NoError(t, err)
	assert.False(t, view.Staged)
	assert.Equal(t, "Yamada", view.Draft.LastName)
	assert.Equal(t, workflow.StateEditing, view.State)

	view, err = f.svc.Edit(context.Background(), auth.Principal{Role: auth.RoleCandidate, CandidateID: "c-9", SessionID: "s"}, "c-9")
	require.NoError(t, err)
	assert.Empty(t, view.Draft.LastName)
}

func TestConfirmBackKeepsDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	staged, err := f.svc.Stage(ctx, self, "c-1", validForm(t))
	require.NoError(t, err)

	view, err := f.svc.Confirm(ctx, self, "c-1")
	require.NoError(t, err)
	assert.Equal(t, staged, view.Draft)

	back, err := f.svc.Back(ctx, self, "c-1")
	require.NoError(t, err)
	assert.Equal(t, staged, back)

	view, err = f.svc.Edit(ctx, self, "c-1")
	require.NoError(t, err)
	assert.True(t, view.Staged)
	assert.Equal(t, workflow.StateEditing, view.State)
	assert.Equal(t, staged, view.Draft)

	_, err = f.svc.Confirm(ctx, self, "c-1")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestConfirmWithoutDraft(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Confirm(context.Background(), self, "c-1")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)

	_, err = f.svc.Commit(context.Background(), self, "c-1")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestCommitReplacesProfileAndClearsDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Stage(ctx, self, "c-1", validForm(t))
	require.NoError(t, err)

	out, err := f.svc.Commit(ctx, self, "c-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateDone, out.State)
	assert.Equal(t, "/candidates/c-1", out.Redirect)

	saved := f.repo.candidates["c-1"]
	assert.Equal(t, []string{"Go", "SQL"}, saved.Skills)
	assert.Equal(t, "Tokyo University", saved.Education[0].SchoolName)
	assert.Equal(t, 8, saved.JobTypeExperience[0].Years)
	assert.Equal(t, now, saved.UpdatedAt)

	assert.Zero(t, f.stager.Len())
	assert.Equal(t, [][]string{{"/candidates/c-1"}}, f.paths)
}

func TestCommitFailureKeepsDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.repo.saveErr = errors.New("database is locked")

	_, err := f.svc.Stage(ctx, self, "c-1", validForm(t))
	require.NoError(t, err)

	out, err := f.svc.Commit(ctx, self, "c-1")
	require.Error(t, err)
	assert.Equal(t, workflow.StateStaged, out.State)
	assert.Equal(t, "Yamada", f.repo.candidates["c-1"].LastName)
	assert.Empty(t, f.paths)

	f.repo.saveErr = nil
	_, err = f.svc.Commit(ctx, self, "c-1")
	require.NoError(t, err)
}

func TestStageRestartsAfterInterruptedCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.svc.Stage(ctx, self, "c-1", validForm(t))
	require.NoError(t, err)
	stuck, err := staging.NewEntry(staging.KindCandidate, "c-1", workflow.StateCommitting, d)
	require.NoError(t, err)
	require.NoError(t, f.stager.Save(ctx, "tab-1", "c-1", stuck))

	_, err = f.svc.Stage(ctx, self, "c-1", validForm(t))
	require.NoError(t, err)

	e, found, err := f.stager.Load(ctx, "tab-1", "c-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, workflow.StateStaged, e.State)
}

package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStatusStampsPublishedAtOnce(t *testing.T) {
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	later := first.Add(72 * time.Hour)

	p := JobPosting{Status: StatusDraft}
	p.SetStatus(StatusPublished, first)
	require.NotNil(t, p.PublishedAt)
	assert.Equal(t, first, *p.PublishedAt)

	p.SetStatus(StatusPublished, later)
	assert.Equal(t, first, *p.PublishedAt, "republishing must not reset publishedAt")

	p.SetStatus(StatusClosed, later)
	p.SetStatus(StatusPublished, later)
	assert.Equal(t, first, *p.PublishedAt, "publishedAt is set exactly once")
}

func TestApplyPartialChanges(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := JobPosting{
		Title:     "Backend engineer",
		Locations: []string{"Tokyo"},
		Skills:    []string{"Go"},
		Status:    StatusDraft,
	}

	title := "Platform engineer"
	p.Apply(PostingChanges{Title: &title, Locations: []string{"Osaka", "Remote"}}, now)

	assert.Equal(t, "Platform engineer", p.Title)
	assert.Equal(t, []string{"Osaka", "Remote"}, p.Locations)
	assert.Equal(t, []string{"Go"}, p.Skills, "nil list keeps stored value")
	assert.Equal(t, StatusDraft, p.Status)
	assert.Equal(t, now, p.UpdatedAt)
}

func TestVisible(t *testing.T) {
	assert.True(t, JobPosting{Status: StatusPublished, PublicationType: PublicationPublic}.Visible())
	assert.False(t, JobPosting{Status: StatusPublished, PublicationType: PublicationStopped}.Visible())
	assert.False(t, JobPosting{Status: StatusPendingApproval, PublicationType: PublicationPublic}.Visible())
}

func TestValidationError(t *testing.T) {
	var ve ValidationError
	assert.NoError(t, ve.OrNil())

	ve.Add("title", "is required")
	ve.Add("title", "ignored second message")
	ve.Add("salary_min", "must not exceed salary_max")

	err := ve.OrNil()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation failed: salary_min: must not exceed salary_max; title: is required", err.Error())
}

package repository

import (
	"context"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// RelatedPosting is a visible posting connected through shared graph elements
type RelatedPosting struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	GroupID      string   `json:"group_id"`
	SharedSkills []string `json:"shared_skills,omitempty"`
	SharedPlaces []string `json:"shared_locations,omitempty"`
	Relevance    int64    `json:"relevance"`
}

// PostingIndex is the graph index of candidate-visible job postings
type PostingIndex interface {
	// Index merges the posting and its skill, location, industry and group edges
	Index(ctx context.Context, p domain.JobPosting) error

	// Remove drops the posting node and its edges
	Remove(ctx context.Context, postingIDs ...string) error

	// Related finds visible postings sharing skills or locations with postingID
	Related(ctx context.Context, postingID string, limit int) ([]RelatedPosting, error)
}

// NopIndex is used when no graph database is configured
type NopIndex struct{}

var _ PostingIndex = NopIndex{}

func (NopIndex) Index(context.Context, domain.JobPosting) error { return nil }

func (NopIndex) Remove(context.Context, ...string) error { return nil }

func (NopIndex) Related(context.Context, string, int) ([]RelatedPosting, error) {
	return []RelatedPosting{}, nil
}

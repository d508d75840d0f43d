package http

import (
	"time"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// PostingView is the JSON shape of a job posting
type PostingView struct {
	ID                string                 `json:"id"`
	GroupID           string                 `json:"group_id"`
	Title             string                 `json:"title"`
	JobTypes          []string               `json:"job_types"`
	Industries        []string               `json:"industries"`
	Description       string                 `json:"description"`
	PositionSummary   string                 `json:"position_summary"`
	RequiredSkills    string                 `json:"required_skills"`
	PreferredSkills   string                 `json:"preferred_skills"`
	OtherRequirements string                 `json:"other_requirements"`
	SalaryMin         *int                   `json:"salary_min"`
	SalaryMax         *int                   `json:"salary_max"`
	Locations         []string               `json:"locations"`
	WorkingHours      string                 `json:"working_hours"`
	Holidays          string                 `json:"holidays"`
	SelectionProcess  string                 `json:"selection_process"`
	AppealPoints      []string               `json:"appeal_points"`
	Skills            []string               `json:"skills"`
	ImageURLs         []string               `json:"image_urls"`
	Remarks           string                 `json:"remarks"`
	Status            domain.PostingStatus   `json:"status"`
	PublicationType   domain.PublicationType `json:"publication_type"`
	PublishedAt       *time.Time             `json:"published_at,omitempty"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

func postingView(p domain.JobPosting) PostingView {
	return PostingView{
		ID:                p.ID,
		GroupID:           p.GroupID,
		Title:             p.Title,
		JobTypes:          p.JobTypes,
		Industries:        p.Industries,
		Description:       p.Description,
		PositionSummary:   p.PositionSummary,
		RequiredSkills:    p.RequiredSkills,
		PreferredSkills:   p.PreferredSkills,
		OtherRequirements: p.OtherRequirements,
		SalaryMin:         p.SalaryMin,
		SalaryMax:         p.SalaryMax,
		Locations:         p.Locations,
		WorkingHours:      p.WorkingHours,
		Holidays:          p.Holidays,
		SelectionProcess:  p.SelectionProcess,
		AppealPoints:      p.AppealPoints,
		Skills:            p.Skills,
		ImageURLs:         p.ImageURLs,
		Remarks:           p.Remarks,
		Status:            p.Status,
		PublicationType:   p.PublicationType,
		PublishedAt:       p.PublishedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

type GroupView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func groupViews(groups []domain.CompanyGroup) []GroupView {
	out := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupView{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt})
	}
	return out
}

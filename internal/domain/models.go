package domain

import (
	"time"
)

// PostingStatus is the administrative workflow axis of a job posting
type PostingStatus string

const (
	StatusDraft           PostingStatus = "draft"
	StatusPendingApproval PostingStatus = "pending_approval"
	StatusPublished       PostingStatus = "published"
	StatusClosed          PostingStatus = "closed"
)

func (s PostingStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusPublished, StatusClosed:
		return true
	}
	return false
}

// PublicationType is the candidate-visibility axis, independent of PostingStatus
type PublicationType string

const (
	PublicationPublic      PublicationType = "public"
	PublicationMembersOnly PublicationType = "members_only"
	PublicationScoutOnly   PublicationType = "scout_only"
	PublicationStopped     PublicationType = "stopped"
)

func (t PublicationType) Valid() bool {
	switch t {
	case PublicationPublic, PublicationMembersOnly, PublicationScoutOnly, PublicationStopped:
		return true
	}
	return false
}

// JobPosting is a company group's job advertisement
type JobPosting struct {
	ID               string
	GroupID          string
	CompanyAccountID string // owning account, resolved through the group

	Title             string
	JobTypes          []string
	Industries        []string
	Description       string
	PositionSummary   string
	RequiredSkills    string
	PreferredSkills   string
	OtherRequirements string
	SalaryMin         *int
	SalaryMax         *int
	Locations         []string
	WorkingHours      string
	Holidays          string
	SelectionProcess  string
	AppealPoints      []string
	Skills            []string
	ImageURLs         []string
	Remarks           string

	Status          PostingStatus
	PublicationType PublicationType
	PublishedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Visible reports whether candidates can see the posting at all
func (p JobPosting) Visible() bool {
	return p.Status == StatusPublished && p.PublicationType != PublicationStopped
}

// SetStatus moves the posting to next. PublishedAt is stamped only on the first
// transition into published; republishing never resets it.
func (p *JobPosting) SetStatus(next PostingStatus, now time.Time) {
	if next == StatusPublished && p.Status != StatusPublished && p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}
	p.Status = next
}

// PostingChanges is a partial update; nil fields keep the stored value
type PostingChanges struct {
	Title             *string
	JobTypes          []string
	Industries        []string
	Description       *string
	PositionSummary   *string
	RequiredSkills    *string
	PreferredSkills   *string
	OtherRequirements *string
	SalaryMin         *int
	SalaryMax         *int
	Locations         []string
	WorkingHours      *string
	Holidays          *string
	SelectionProcess  *string
	AppealPoints      []string
	Skills            []string
	ImageURLs         []string
	Remarks           *string
	Status            *PostingStatus
}

// Apply merges c into p and stamps UpdatedAt
func (p *JobPosting) Apply(c PostingChanges, now time.Time) {
	setString(&p.Title, c.Title)
	setString(&p.Description, c.Description)
	setString(&p.PositionSummary, c.PositionSummary)
	setString(&p.RequiredSkills, c.RequiredSkills)
	setString(&p.PreferredSkills, c.PreferredSkills)
	setString(&p.OtherRequirements, c.OtherRequirements)
	setString(&p.WorkingHours, c.WorkingHours)
	setString(&p.Holidays, c.Holidays)
	setString(&p.SelectionProcess, c.SelectionProcess)
	setString(&p.Remarks, c.Remarks)

	setList(&p.JobTypes, c.JobTypes)
	setList(&p.Industries, c.Industries)
	setList(&p.Locations, c.Locations)
	setList(&p.AppealPoints, c.AppealPoints)
	setList(&p.Skills, c.Skills)
	setList(&p.ImageURLs, c.ImageURLs)

	if c.SalaryMin != nil {
		v := *c.SalaryMin
		p.SalaryMin = &v
	}
	if c.SalaryMax != nil {
		v := *c.SalaryMax
		p.SalaryMax = &v
	}
	if c.Status != nil {
		p.SetStatus(*c.Status, now)
	}
	p.UpdatedAt = now
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setList(dst *[]string, v []string) {
	if v != nil {
		*dst = append([]string(nil), v...)
	}
}

// ScoutMessage is a company-initiated message to a candidate
type ScoutMessage struct {
	ID        string
	RoomID    string
	SentAt    time.Time
	ReadAt    *time.Time // nil until the candidate opens it
	RepliedAt *time.Time // nil until the candidate replies
}

// Application is a candidate applying to a posting, independent of the scout flow
type Application struct {
	ID           string
	CandidateID  string
	JobPostingID string
	CreatedAt    time.Time
}

type CompanyAccount struct {
	ID   string
	Name string
}

type CompanyGroup struct {
	ID               string
	CompanyAccountID string
	Name             string
	CreatedAt        time.Time
}

type Education struct {
	SchoolName     string `json:"school_name" validate:"required"`
	Department     string `json:"department,omitempty"`
	GraduatedOn    string `json:"graduated_on,omitempty"` // YYYY-MM
	GraduateStatus string `json:"graduate_status,omitempty"`
}

type WorkExperience struct {
	CompanyName string `json:"company_name" validate:"required"`
	Position    string `json:"position,omitempty"`
	Industry    string `json:"industry,omitempty"`
	StartedOn   string `json:"started_on,omitempty"` // YYYY-MM
	EndedOn     string `json:"ended_on,omitempty"`   // empty while employed
}

type JobTypeExperience struct {
	JobType string `json:"job_type" validate:"required"`
	Years   int    `json:"years" validate:"gte=0,lte=60"`
}

type Expectations struct {
	DesiredSalary     *int     `json:"desired_salary,omitempty" validate:"omitempty,gte=0"`
	DesiredLocations  []string `json:"desired_locations,omitempty"`
	DesiredJobTypes   []string `json:"desired_job_types,omitempty"`
	DesiredIndustries []string `json:"desired_industries,omitempty"`
}

// Candidate is a job seeker profile with its replace-on-save child collections
type Candidate struct {
	ID              string
	LastName        string
	FirstName       string
	Email           string
	Phone           string
	Prefecture      string
	CurrentCompany  string
	CurrentPosition string
	SelfPR          string
	UpdatedAt       time.Time

	Skills            []string
	Education         []Education
	WorkExperience    []WorkExperience
	JobTypeExperience []JobTypeExperience
	Expectations      Expectations
}

package posting

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// NewImage is an image picked in the edit form but not uploaded yet
type NewImage struct {
	Data        string `json:"data"` // base64, optionally as a data URL
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
}

// Bytes decodes the payload, accepting both plain base64 and data URLs
func (n NewImage) Bytes() ([]byte, error) {
	data := n.Data
	if strings.HasPrefix(data, "data:") {
		i := strings.Index(data, ",")
		if i < 0 {
			return nil, fmt.Errorf("image %s: malformed data URL", n.Filename)
		}
		data = data[i+1:]
	}
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", n.Filename, err)
	}
	return b, nil
}

// Images splits attachments into stored URLs and pending uploads. A nil
// Existing keeps the stored URL list untouched.
type Images struct {
	Existing []string   `json:"existing"`
	New      []NewImage `json:"new,omitempty"`
}

// Form is the raw job posting edit form as the front-end submits it
type Form struct {
	Title             domain.FlexValue `json:"title"`
	JobTypes          domain.FlexValue `json:"job_types"`
	Industries        domain.FlexValue `json:"industries"`
	Description       domain.FlexValue `json:"description"`
	PositionSummary   domain.FlexValue `json:"position_summary"`
	RequiredSkills    domain.FlexValue `json:"required_skills"`
	PreferredSkills   domain.FlexValue `json:"preferred_skills"`
	OtherRequirements domain.FlexValue `json:"other_requirements"`
	SalaryMin         domain.FlexValue `json:"salary_min"`
	SalaryMax         domain.FlexValue `json:"salary_max"`
	Locations         domain.FlexValue `json:"locations"`
	WorkingHours      domain.FlexValue `json:"working_hours"`
	Holidays          domain.FlexValue `json:"holidays"`
	SelectionProcess  domain.FlexValue `json:"selection_process"`
	AppealPoints      domain.FlexValue `json:"appeal_points"`
	Skills            domain.FlexValue `json:"skills"`
	Remarks           domain.FlexValue `json:"remarks"`
	Status            domain.FlexValue `json:"status"` // optional; empty keeps the stored status
	Images            Images           `json:"images"`
}

// Draft normalizes every field once; numeric fields that do not parse are
// reported the same way validation failures are
func (f Form) Draft() (Draft, error) {
	verr := &domain.ValidationError{}

	salaryMin, err := f.SalaryMin.IntPtr()
	if err != nil {
		verr.Add("salary_min", "must be a whole number")
	}
	salaryMax, err := f.SalaryMax.IntPtr()
	if err != nil {
		verr.Add("salary_max", "must be a whole number")
	}

	d := Draft{
		Title:             f.Title.String(),
		JobTypes:          f.JobTypes.Strings(),
		Industries:        f.Industries.Strings(),
		Description:       f.Description.String(),
		PositionSummary:   f.PositionSummary.String(),
		RequiredSkills:    f.RequiredSkills.String(),
		PreferredSkills:   f.PreferredSkills.String(),
		OtherRequirements: f.OtherRequirements.String(),
		SalaryMin:         salaryMin,
		SalaryMax:         salaryMax,
		Locations:         f.Locations.Strings(),
		WorkingHours:      f.WorkingHours.String(),
		Holidays:          f.Holidays.String(),
		SelectionProcess:  f.SelectionProcess.String(),
		AppealPoints:      f.AppealPoints.Strings(),
		Skills:            f.Skills.Strings(),
		Remarks:           f.Remarks.String(),
		Status:            domain.PostingStatus(strings.ToLower(f.Status.String())),
		Images:            f.Images,
	}
	if d.Images.Existing != nil {
		d.Images.Existing = domain.FlexOf(d.Images.Existing...).Strings()
	}

	return d, verr.OrNil()
}

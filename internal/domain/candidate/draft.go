// Package candidate runs the stage, confirm and commit flow for candidate profiles.
package candidate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// Form is the raw profile form. Free-text lists may arrive in any FlexValue
// shape; the repeating sections are submitted as plain objects.
type Form struct {
	LastName          domain.FlexValue           `json:"last_name"`
	FirstName         domain.FlexValue           `json:"first_name"`
	Email             domain.FlexValue           `json:"email"`
	Phone             domain.FlexValue           `json:"phone"`
	Prefecture        domain.FlexValue           `json:"prefecture"`
	CurrentCompany    domain.FlexValue           `json:"current_company"`
	CurrentPosition   domain.FlexValue           `json:"current_position"`
	SelfPR            domain.FlexValue           `json:"self_pr"`
	Skills            domain.FlexValue           `json:"skills"`
	Education         []domain.Education         `json:"education"`
	WorkExperience    []domain.WorkExperience    `json:"work_experience"`
	JobTypeExperience []domain.JobTypeExperience `json:"job_type_experience"`
	DesiredSalary     domain.FlexValue           `json:"desired_salary"`
	DesiredLocations  domain.FlexValue           `json:"desired_locations"`
	DesiredJobTypes   domain.FlexValue           `json:"desired_job_types"`
	DesiredIndustries domain.FlexValue           `json:"desired_industries"`
}

// Draft is the typed profile edit as it is staged
type Draft struct {
	LastName          string                     `json:"last_name" validate:"required"`
	FirstName         string                     `json:"first_name" validate:"required"`
	Email             string                     `json:"email" validate:"required,email"`
	Phone             string                     `json:"phone" validate:"omitempty,max=20"`
	Prefecture        string                     `json:"prefecture"`
	CurrentCompany    string                     `json:"current_company"`
	CurrentPosition   string                     `json:"current_position"`
	SelfPR            string                     `json:"self_pr" validate:"max=4000"`
	Skills            []string                   `json:"skills"`
	Education         []domain.Education         `json:"education" validate:"dive"`
	WorkExperience    []domain.WorkExperience    `json:"work_experience" validate:"dive"`
	JobTypeExperience []domain.JobTypeExperience `json:"job_type_experience" validate:"dive"`
	Expectations      domain.Expectations        `json:"expectations"`
}

// Draft normalizes the form; a desired salary that does not parse is reported
// like any other invalid field
func (f Form) Draft() (Draft, error) {
	verr := &domain.ValidationError{}

	salary, err := f.DesiredSalary.IntPtr()
	if err != nil {
		verr.Add("expectations.desired_salary", "must be a whole number")
	}

	d := Draft{
		LastName:          f.LastName.String(),
		FirstName:         f.FirstName.String(),
		Email:             strings.ToLower(f.Email.String()),
		Phone:             f.Phone.String(),
		Prefecture:        f.Prefecture.String(),
		CurrentCompany:    f.CurrentCompany.String(),
		CurrentPosition:   f.CurrentPosition.String(),
		SelfPR:            f.SelfPR.String(),
		Skills:            f.Skills.Strings(),
		Education:         f.Education,
		WorkExperience:    f.WorkExperience,
		JobTypeExperience: f.JobTypeExperience,
		Expectations: domain.Expectations{
			DesiredSalary:     salary,
			DesiredLocations:  listOrNil(f.DesiredLocations),
			DesiredJobTypes:   listOrNil(f.DesiredJobTypes),
			DesiredIndustries: listOrNil(f.DesiredIndustries),
		},
	}
	return d, verr.OrNil()
}

// listOrNil keeps empty optional lists nil so staged drafts decode unchanged
func listOrNil(v domain.FlexValue) []string {
	if out := v.Strings(); len(out) > 0 {
		return out
	}
	return nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func draftValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"max":      "is too long",
	"gte":      "must not be negative",
	"lte":      "is out of range",
}

// Validate returns a *domain.ValidationError keyed by field path, e.g.
// "education[0].school_name"
func (d Draft) Validate() error {
	err := draftValidator().Struct(d)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		verr.Add(fieldPath(fe.Namespace()), msg)
	}
	return verr.OrNil()
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return rest
}

// Apply copies the draft onto c; child collections are replaced wholesale
func (d Draft) Apply(c *domain.Candidate) {
	c.LastName = d.LastName
	c.FirstName = d.FirstName
	c.Email = d.Email
	c.Phone = d.Phone
	c.Prefecture = d.Prefecture
	c.CurrentCompany = d.CurrentCompany
	c.CurrentPosition = d.CurrentPosition
	c.SelfPR = d.SelfPR
	c.Skills = d.Skills
	c.Education = d.Education
	c.WorkExperience = d.WorkExperience
	c.JobTypeExperience = d.JobTypeExperience
	c.Expectations = d.Expectations
}

// FromCandidate pre-fills an edit draft from the stored profile
func FromCandidate(c domain.Candidate) Draft {
	return Draft{
		LastName:          c.LastName,
		FirstName:         c.FirstName,
		Email:             c.Email,
		Phone:             c.Phone,
		Prefecture:        c.Prefecture,
		CurrentCompany:    c.CurrentCompany,
		CurrentPosition:   c.CurrentPosition,
		SelfPR:            c.SelfPR,
		Skills:            c.Skills,
		Education:         c.Education,
		WorkExperience:    c.WorkExperience,
		JobTypeExperience: c.JobTypeExperience,
		Expectations:      c.Expectations,
	}
}

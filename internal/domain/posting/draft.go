package posting

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// Draft is a normalized, typed job posting edit as it is staged
type Draft struct {
	Title             string               `json:"title" validate:"required"`
	JobTypes          []string             `json:"job_types" validate:"min=1"`
	Industries        []string             `json:"industries" validate:"min=1"`
	Description       string               `json:"description" validate:"required"`
	PositionSummary   string               `json:"position_summary" validate:"required"`
	RequiredSkills    string               `json:"required_skills" validate:"required"`
	PreferredSkills   string               `json:"preferred_skills"`
	OtherRequirements string               `json:"other_requirements" validate:"required"`
	SalaryMin         *int                 `json:"salary_min" validate:"required,gte=0"`
	SalaryMax         *int                 `json:"salary_max" validate:"required,gte=0"`
	Locations         []string             `json:"locations" validate:"min=1"`
	WorkingHours      string               `json:"working_hours" validate:"required"`
	Holidays          string               `json:"holidays" validate:"required"`
	SelectionProcess  string               `json:"selection_process" validate:"required"`
	AppealPoints      []string             `json:"appeal_points" validate:"min=1"`
	Skills            []string             `json:"skills"`
	Remarks           string               `json:"remarks"`
	Status            domain.PostingStatus `json:"status,omitempty" validate:"omitempty,posting_status"`
	Images            Images               `json:"images" validate:"-"`
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
		_ = validate.RegisterValidation("posting_status", func(fl validator.FieldLevel) bool {
			return domain.PostingStatus(fl.Field().String()).Valid()
		})
		validate.RegisterStructValidation(salaryOrder, Draft{})
	})
	return validate
}

func salaryOrder(sl validator.StructLevel) {
	d := sl.Current().Interface().(Draft)
	if d.SalaryMin != nil && d.SalaryMax != nil && *d.SalaryMin > *d.SalaryMax {
		sl.ReportError(d.SalaryMax, "salary_max", "SalaryMax", "salary_order", "")
	}
}

var messages = map[string]string{
	"required":       "is required",
	"min":            "select at least one",
	"gte":            "must not be negative",
	"salary_order":   "must be greater than or equal to salary_min",
	"posting_status": "must be draft, pending_approval, published or closed",
}

// Validate checks the mandatory fields and the salary range and returns a
// *domain.ValidationError with one message per failing field
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
		verr.Add(fe.Field(), msg)
	}
	return verr.OrNil()
}

// Changes turns the draft into a partial update. Images are resolved by the
// commit step and passed in as the final URL list (nil keeps the stored list).
func (d Draft) Changes(imageURLs []string) domain.PostingChanges {
	str := func(s string) *string { return &s }

	var status *domain.PostingStatus
	if d.Status != "" {
		st := d.Status
		status = &st
	}

	return domain.PostingChanges{
		Title:             str(d.Title),
		JobTypes:          nonNil(d.JobTypes),
		Industries:        nonNil(d.Industries),
		Description:       str(d.Description),
		PositionSummary:   str(d.PositionSummary),
		RequiredSkills:    str(d.RequiredSkills),
		PreferredSkills:   str(d.PreferredSkills),
		OtherRequirements: str(d.OtherRequirements),
		SalaryMin:         d.SalaryMin,
		SalaryMax:         d.SalaryMax,
		Locations:         nonNil(d.Locations),
		WorkingHours:      str(d.WorkingHours),
		Holidays:          str(d.Holidays),
		SelectionProcess:  str(d.SelectionProcess),
		AppealPoints:      nonNil(d.AppealPoints),
		Skills:            nonNil(d.Skills),
		ImageURLs:         imageURLs,
		Remarks:           str(d.Remarks),
		Status:            status,
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// FromPosting pre-fills an edit draft from the stored posting
func FromPosting(p domain.JobPosting) Draft {
	return Draft{
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
		Remarks:           p.Remarks,
		Status:            p.Status,
		Images:            Images{Existing: p.ImageURLs},
	}
}

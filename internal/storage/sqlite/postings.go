package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

const postingColumns = `
	p.id, p.company_group_id, g.company_account_id,
	p.title, p.job_types, p.industries, p.description, p.position_summary,
	p.required_skills, p.preferred_skills, p.other_requirements,
	p.salary_min, p.salary_max, p.locations, p.working_hours, p.holidays,
	p.selection_process, p.appeal_points, p.skills, p.image_urls, p.remarks,
	p.status, p.publication_type, p.published_at, p.created_at, p.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(row rowScanner) (domain.JobPosting, error) {
	var (
		p                                                       domain.JobPosting
		jobTypes, industries, locations, appeal, skills, images sql.NullString
		salaryMin, salaryMax                                    sql.NullInt64
		status, publication                                     string
		publishedAt                                             sql.NullString
		createdAt, updatedAt                                    string
	)

	err := row.Scan(
		&p.ID, &p.GroupID, &p.CompanyAccountID,
		&p.Title, &jobTypes, &industries, &p.Description, &p.PositionSummary,
		&p.RequiredSkills, &p.PreferredSkills, &p.OtherRequirements,
		&salaryMin, &salaryMax, &locations, &p.WorkingHours, &p.Holidays,
		&p.SelectionProcess, &appeal, &skills, &images, &p.Remarks,
		&status, &publication, &publishedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.JobPosting{}, err
	}

	lists := []struct {
		src sql.NullString
		dst *[]string
	}{
		{jobTypes, &p.JobTypes},
		{industries, &p.Industries},
		{locations, &p.Locations},
		{appeal, &p.AppealPoints},
		{skills, &p.Skills},
		{images, &p.ImageURLs},
	}
	for _, l := range lists {
		if *l.dst, err = decodeList(l.src); err != nil {
			return domain.JobPosting{}, err
		}
	}

	p.SalaryMin = intPtr(salaryMin)
	p.SalaryMax = intPtr(salaryMax)
	p.Status = domain.PostingStatus(status)
	p.PublicationType = domain.PublicationType(publication)

	if p.PublishedAt, err = parseTimePtr(publishedAt); err != nil {
		return domain.JobPosting{}, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.JobPosting{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.JobPosting{}, err
	}
	return p, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getPosting(ctx context.Context, q querier, id string) (domain.JobPosting, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+postingColumns+`
		FROM job_postings p
		JOIN company_groups g ON g.id = p.company_group_id
		WHERE p.id = ?`, id)

	p, err := scanPosting(row)
	if err != nil {
		return domain.JobPosting{}, notFound(err, "job posting", id)
	}
	return p, nil
}

// Posting loads one job posting with its owning account
func (s *Store) Posting(ctx context.Context, id string) (domain.JobPosting, error) {
	return getPosting(ctx, s.DB, id)
}

// CreatePosting inserts p; CreatedAt and UpdatedAt default to now
func (s *Store) CreatePosting(ctx context.Context, p domain.JobPosting) error {
	now := s.clock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	if p.Status == "" {
		p.Status = domain.StatusDraft
	}
	if p.PublicationType == "" {
		p.PublicationType = domain.PublicationPublic
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO job_postings (
			id, company_group_id, title, job_types, industries, description, position_summary,
			required_skills, preferred_skills, other_requirements, salary_min, salary_max,
			locations, working_hours, holidays, selection_process, appeal_points, skills,
			image_urls, remarks, status, publication_type, published_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.GroupID, p.Title, encodeList(p.JobTypes), encodeList(p.Industries),
		p.Description, p.PositionSummary, p.RequiredSkills, p.PreferredSkills, p.OtherRequirements,
		nullInt(p.SalaryMin), nullInt(p.SalaryMax), encodeList(p.Locations), p.WorkingHours,
		p.Holidays, p.SelectionProcess, encodeList(p.AppealPoints), encodeList(p.Skills),
		encodeList(p.ImageURLs), p.Remarks, string(p.Status), string(p.PublicationType),
		formatTimePtr(p.PublishedAt), formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert job posting %s: %w", p.ID, err)
	}
	return nil
}

// UpdatePosting reads the posting, lets fn modify it and writes it back in one
// transaction, so the stored status fn sees is the one it overwrites
func (s *Store) UpdatePosting(ctx context.Context, id string, fn func(p *domain.JobPosting) error) (domain.JobPosting, error) {
	var out domain.JobPosting
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		p, err := getPosting(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(&p); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE job_postings SET
				title = ?, job_types = ?, industries = ?, description = ?, position_summary = ?,
				required_skills = ?, preferred_skills = ?, other_requirements = ?,
				salary_min = ?, salary_max = ?, locations = ?, working_hours = ?, holidays = ?,
				selection_process = ?, appeal_points = ?, skills = ?, image_urls = ?, remarks = ?,
				status = ?, publication_type = ?, published_at = ?, updated_at = ?
			WHERE id = ?`,
			p.Title, encodeList(p.JobTypes), encodeList(p.Industries), p.Description, p.PositionSummary,
			p.RequiredSkills, p.PreferredSkills, p.OtherRequirements,
			nullInt(p.SalaryMin), nullInt(p.SalaryMax), encodeList(p.Locations), p.WorkingHours, p.Holidays,
			p.SelectionProcess, encodeList(p.AppealPoints), encodeList(p.Skills), encodeList(p.ImageURLs), p.Remarks,
			string(p.Status), string(p.PublicationType), formatTimePtr(p.PublishedAt), formatTime(p.UpdatedAt),
			p.ID,
		)
		if err != nil {
			return fmt.Errorf("update job posting %s: %w", id, err)
		}
		out = p
		return nil
	})
	return out, err
}

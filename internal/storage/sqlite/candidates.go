package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// Candidate loads a profile with its child collections
func (s *Store) Candidate(ctx context.Context, id string) (domain.Candidate, error) {
	var (
		c         domain.Candidate
		updatedAt string
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, last_name, first_name, email, phone, prefecture,
		       current_company, current_position, self_pr, updated_at
		FROM candidates WHERE id = ?`, id).Scan(
		&c.ID, &c.LastName, &c.FirstName, &c.Email, &c.Phone, &c.Prefecture,
		&c.CurrentCompany, &c.CurrentPosition, &c.SelfPR, &updatedAt,
	)
	if err != nil {
		return domain.Candidate{}, notFound(err, "candidate", id)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Candidate{}, err
	}

	if c.Skills, err = s.candidateSkills(ctx, id); err != nil {
		return domain.Candidate{}, err
	}
	if c.Education, err = s.candidateEducation(ctx, id); err != nil {
		return domain.Candidate{}, err
	}
	if c.WorkExperience, err = s.candidateWork(ctx, id); err != nil {
		return domain.Candidate{}, err
	}
	if c.JobTypeExperience, err = s.candidateJobTypes(ctx, id); err != nil {
		return domain.Candidate{}, err
	}
	if c.Expectations, err = s.candidateExpectations(ctx, id); err != nil {
		return domain.Candidate{}, err
	}
	return c, nil
}

func (s *Store) candidateSkills(ctx context.Context, id string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT name FROM skills WHERE candidate_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Store) candidateEducation(ctx context.Context, id string) ([]domain.Education, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT school_name, department, graduated_on, graduate_status
		FROM education WHERE candidate_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Education{}
	for rows.Next() {
		var e domain.Education
		if err := rows.Scan(&e.SchoolName, &e.Department, &e.GraduatedOn, &e.GraduateStatus); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) candidateWork(ctx context.Context, id string) ([]domain.WorkExperience, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT company_name, job_position, industry, started_on, ended_on
		FROM work_experience WHERE candidate_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.WorkExperience{}
	for rows.Next() {
		var w domain.WorkExperience
		if err := rows.Scan(&w.CompanyName, &w.Position, &w.Industry, &w.StartedOn, &w.EndedOn); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) candidateJobTypes(ctx context.Context, id string) ([]domain.JobTypeExperience, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT job_type, years FROM job_type_experience WHERE candidate_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.JobTypeExperience{}
	for rows.Next() {
		var j domain.JobTypeExperience
		if err := rows.Scan(&j.JobType, &j.Years); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *Store) candidateExpectations(ctx context.Context, id string) (domain.Expectations, error) {
	var (
		e                               domain.Expectations
		salary                          sql.NullInt64
		locations, jobTypes, industries sql.NullString
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT desired_salary, desired_locations, desired_job_types, desired_industries
		FROM expectations WHERE candidate_id = ?`, id).Scan(&salary, &locations, &jobTypes, &industries)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Expectations{}, nil
	}
	if err != nil {
		return domain.Expectations{}, err
	}

	e.DesiredSalary = intPtr(salary)
	if e.DesiredLocations, err = decodeList(locations); err != nil {
		return domain.Expectations{}, err
	}
	if e.DesiredJobTypes, err = decodeList(jobTypes); err != nil {
		return domain.Expectations{}, err
	}
	if e.DesiredIndustries, err = decodeList(industries); err != nil {
		return domain.Expectations{}, err
	}
	return e, nil
}

// SaveCandidate upserts the profile row and replaces every child collection
// inside one transaction
func (s *Store) SaveCandidate(ctx context.Context, c domain.Candidate) error {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = s.clock()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO candidates (id, last_name, first_name, email, phone, prefecture,
				current_company, current_position, self_pr, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				last_name = excluded.last_name,
				first_name = excluded.first_name,
				email = excluded.email,
				phone = excluded.phone,
				prefecture = excluded.prefecture,
				current_company = excluded.current_company,
				current_position = excluded.current_position,
				self_pr = excluded.self_pr,
				updated_at = excluded.updated_at`,
			c.ID, c.LastName, c.FirstName, c.Email, c.Phone, c.Prefecture,
			c.CurrentCompany, c.CurrentPosition, c.SelfPR, formatTime(c.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("upsert candidate %s: %w", c.ID, err)
		}

		for _, table := range []string{"skills", "education", "work_experience", "job_type_experience", "expectations"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE candidate_id = ?`, c.ID); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		for i, name := range c.Skills {
			if _, err := tx.ExecContext(ctx, `INSERT INTO skills (candidate_id, position, name) VALUES (?, ?, ?)`,
				c.ID, i, name); err != nil {
				return fmt.Errorf("insert skill: %w", err)
			}
		}
		for i, e := range c.Education {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO education (candidate_id, position, school_name, department, graduated_on, graduate_status)
				VALUES (?, ?, ?, ?, ?, ?)`,
				c.ID, i, e.SchoolName, e.Department, e.GraduatedOn, e.GraduateStatus); err != nil {
				return fmt.Errorf("insert education: %w", err)
			}
		}
		for i, w := range c.WorkExperience {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO work_experience (candidate_id, position, company_name, job_position, industry, started_on, ended_on)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				c.ID, i, w.CompanyName, w.Position, w.Industry, w.StartedOn, w.EndedOn); err != nil {
				return fmt.Errorf("insert work experience: %w", err)
			}
		}
		for i, j := range c.JobTypeExperience {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO job_type_experience (candidate_id, position, job_type, years) VALUES (?, ?, ?, ?)`,
				c.ID, i, j.JobType, j.Years); err != nil {
				return fmt.Errorf("insert job type experience: %w", err)
			}
		}

		e := c.Expectations
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO expectations (candidate_id, desired_salary, desired_locations, desired_job_types, desired_industries)
			VALUES (?, ?, ?, ?, ?)`,
			c.ID, nullInt(e.DesiredSalary), encodeList(e.DesiredLocations),
			encodeList(e.DesiredJobTypes), encodeList(e.DesiredIndustries)); err != nil {
			return fmt.Errorf("insert expectations: %w", err)
		}
		return nil
	})
}

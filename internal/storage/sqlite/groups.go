package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// StepError names the cascade step that failed; the whole cascade is rolled back
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("cascade step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

type cascadeStep struct {
	name  string
	query string
}

// groupCascade deletes children before parents so foreign keys hold at every step
var groupCascade = []cascadeStep{
	{"company_user_group_permissions", `DELETE FROM company_user_group_permissions WHERE company_group_id = ?`},
	{"scout_sends", `DELETE FROM scout_sends WHERE company_group_id = ?`},
	{"search_templates", `DELETE FROM search_templates WHERE company_group_id = ?`},
	{"message_templates", `DELETE FROM message_templates WHERE company_group_id = ?`},
	{"selection_progress", `DELETE FROM selection_progress WHERE company_group_id = ?`},
	{"hidden_candidates", `DELETE FROM hidden_candidates WHERE company_group_id = ?`},
	{"saved_candidates", `DELETE FROM saved_candidates WHERE company_group_id = ?`},
	{"messages", `DELETE FROM messages WHERE room_id IN (SELECT id FROM rooms WHERE company_group_id = ?)`},
	{"rooms", `DELETE FROM rooms WHERE company_group_id = ?`},
	{"application", `DELETE FROM application WHERE job_posting_id IN (SELECT id FROM job_postings WHERE company_group_id = ?)`},
	{"job_postings", `DELETE FROM job_postings WHERE company_group_id = ?`},
	{"company_groups", `DELETE FROM company_groups WHERE id = ?`},
}

// CascadeTables lists the tables a group delete touches, in order
func CascadeTables() []string {
	out := make([]string, len(groupCascade))
	for i, s := range groupCascade {
		out[i] = s.name
	}
	return out
}

func scanGroup(row rowScanner) (domain.CompanyGroup, error) {
	var (
		g         domain.CompanyGroup
		createdAt string
	)
	if err := row.Scan(&g.ID, &g.CompanyAccountID, &g.Name, &createdAt); err != nil {
		return domain.CompanyGroup{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return domain.CompanyGroup{}, err
	}
	g.CreatedAt = t
	return g, nil
}

// Groups lists the groups of a company account
func (s *Store) Groups(ctx context.Context, accountID string) ([]domain.CompanyGroup, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, company_account_id, name, created_at
		FROM company_groups
		WHERE company_account_id = ?
		ORDER BY created_at, id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.CompanyGroup{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) Group(ctx context.Context, id string) (domain.CompanyGroup, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT id, company_account_id, name, created_at
		FROM company_groups
		WHERE id = ?`, id)
	g, err := scanGroup(row)
	if err != nil {
		return domain.CompanyGroup{}, notFound(err, "company group", id)
	}
	return g, nil
}

// DeleteGroupCascade removes the group and every row referencing it in one
// transaction. It returns the ids of the postings that were deleted.
func (s *Store) DeleteGroupCascade(ctx context.Context, groupID string) ([]string, error) {
	var postingIDs []string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT id FROM job_postings WHERE company_group_id = ? ORDER BY id`, groupID)
		if err != nil {
			return err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			postingIDs = append(postingIDs, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, step := range groupCascade {
			res, err := tx.ExecContext(ctx, step.query, groupID)
			if err != nil {
				return &StepError{Step: step.name, Err: err}
			}
			if step.name == "company_groups" {
				if n, _ := res.RowsAffected(); n == 0 {
					return fmt.Errorf("company group %s: %w", groupID, domain.ErrNotFound)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return postingIDs, nil
}

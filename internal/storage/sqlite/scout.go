package sqlite

import (
	"context"
	"database/sql"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// ScoutMessages returns the scout messages of every room the candidate is in
func (s *Store) ScoutMessages(ctx context.Context, candidateID string) ([]domain.ScoutMessage, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT m.id, m.room_id, m.sent_at, m.read_at, m.replied_at
		FROM messages m
		JOIN rooms r ON r.id = m.room_id
		WHERE r.candidate_id = ? AND m.message_type = 'scout'
		ORDER BY m.sent_at`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScoutMessage
	for rows.Next() {
		var (
			m               domain.ScoutMessage
			sentAt          string
			readAt, replied sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.RoomID, &sentAt, &readAt, &replied); err != nil {
			return nil, err
		}
		if m.SentAt, err = parseTime(sentAt); err != nil {
			return nil, err
		}
		if m.ReadAt, err = parseTimePtr(readAt); err != nil {
			return nil, err
		}
		if m.RepliedAt, err = parseTimePtr(replied); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Applications returns every application made by the candidate
func (s *Store) Applications(ctx context.Context, candidateID string) ([]domain.Application, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, candidate_id, job_posting_id, created_at
		FROM application
		WHERE candidate_id = ?
		ORDER BY created_at`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Application
	for rows.Next() {
		var (
			a         domain.Application
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.CandidateID, &a.JobPostingID, &createdAt); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

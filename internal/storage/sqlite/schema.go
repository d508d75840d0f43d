package sqlite

import "context"

// Migrate creates every table the services read or write. Timestamps are
// RFC 3339 TEXT in UTC and list columns hold JSON arrays.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS company_accounts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS company_groups (
	id TEXT PRIMARY KEY,
	company_account_id TEXT NOT NULL,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY(company_account_id) REFERENCES company_accounts(id)
);

CREATE TABLE IF NOT EXISTS company_users (
	id TEXT PRIMARY KEY,
	company_account_id TEXT NOT NULL,
	email TEXT NOT NULL,
	name TEXT,
	FOREIGN KEY(company_account_id) REFERENCES company_accounts(id)
);

CREATE TABLE IF NOT EXISTS company_user_group_permissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	company_user_id TEXT NOT NULL,
	company_group_id TEXT NOT NULL,
	role TEXT NOT NULL CHECK (role IN ('admin', 'scout', 'member')),
	FOREIGN KEY(company_user_id) REFERENCES company_users(id),
	FOREIGN KEY(company_group_id) REFERENCES company_groups(id)
);

CREATE TABLE IF NOT EXISTS candidates (
	id TEXT PRIMARY KEY,
	last_name TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	prefecture TEXT NOT NULL DEFAULT '',
	current_company TEXT NOT NULL DEFAULT '',
	current_position TEXT NOT NULL DEFAULT '',
	self_pr TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS skills (
	candidate_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	PRIMARY KEY(candidate_id, position),
	FOREIGN KEY(candidate_id) REFERENCES candidates(id)
);

CREATE TABLE IF NOT EXISTS education (
	candidate_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	school_name TEXT NOT NULL,
	department TEXT NOT NULL DEFAULT '',
	graduated_on TEXT NOT NULL DEFAULT '',
	graduate_status TEXT NOT NULL DEFAULT '',
	PRIMARY KEY(candidate_id, position),
	FOREIGN KEY(candidate_id) REFERENCES candidates(id)
);

CREATE TABLE IF NOT EXISTS work_experience (
	candidate_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	company_name TEXT NOT NULL,
	job_position TEXT NOT NULL DEFAULT '',
	industry TEXT NOT NULL DEFAULT '',
	started_on TEXT NOT NULL DEFAULT '',
	ended_on TEXT NOT NULL DEFAULT '',
	PRIMARY KEY(candidate_id, position),
	FOREIGN KEY(candidate_id) REFERENCES candidates(id)
);

CREATE TABLE IF NOT EXISTS job_type_experience (
	candidate_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	job_type TEXT NOT NULL,
	years INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY(candidate_id, position),
	FOREIGN KEY(candidate_id) REFERENCES candidates(id)
);

CREATE TABLE IF NOT EXISTS expectations (
	candidate_id TEXT PRIMARY KEY,
	desired_salary INTEGER,
	desired_locations TEXT NOT NULL DEFAULT '[]',
	desired_job_types TEXT NOT NULL DEFAULT '[]',
	desired_industries TEXT NOT NULL DEFAULT '[]',
	FOREIGN KEY(candidate_id) REFERENCES candidates(id)
);

CREATE TABLE IF NOT EXISTS job_postings (
	id TEXT PRIMARY KEY,
	company_group_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	job_types TEXT NOT NULL DEFAULT '[]',
	industries TEXT NOT NULL DEFAULT '[]',
	description TEXT NOT NULL DEFAULT '',
	position_summary TEXT NOT NULL DEFAULT '',
	required_skills TEXT NOT NULL DEFAULT '',
	preferred_skills TEXT NOT NULL DEFAULT '',
	other_requirements TEXT NOT NULL DEFAULT '',
	salary_min INTEGER,
	salary_max INTEGER,
	locations TEXT NOT NULL DEFAULT '[]',
	working_hours TEXT NOT NULL DEFAULT '',
	holidays TEXT NOT NULL DEFAULT '',
	selection_process TEXT NOT NULL DEFAULT '',
	appeal_points TEXT NOT NULL DEFAULT '[]',
	skills TEXT NOT NULL DEFAULT '[]',
	image_urls TEXT NOT NULL DEFAULT '[]',
	remarks TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'draft',
	publication_type TEXT NOT NULL DEFAULT 'public',
	published_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY(company_group_id) REFERENCES company_groups(id)
);

CREATE TABLE IF NOT EXISTS application (
	id TEXT PRIMARY KEY,
	candidate_id TEXT NOT NULL,
	job_posting_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY(candidate_id) REFERENCES candidates(id),
	FOREIGN KEY(job_posting_id) REFERENCES job_postings(id)
);

CREATE TABLE IF NOT EXISTS rooms (
	id TEXT PRIMARY KEY,
	candidate_id TEXT NOT NULL,
	company_group_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY(candidate_id) REFERENCES candidates(id),
	FOREIGN KEY(company_group_id) REFERENCES company_groups(id)
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	room_id TEXT NOT NULL,
	message_type TEXT NOT NULL DEFAULT 'normal',
	body TEXT NOT NULL DEFAULT '',
	sent_at TEXT NOT NULL,
	read_at TEXT,
	replied_at TEXT,
	FOREIGN KEY(room_id) REFERENCES rooms(id)
);

CREATE TABLE IF NOT EXISTS scout_sends (
	id TEXT PRIMARY KEY,
	company_group_id TEXT NOT NULL,
	candidate_id TEXT NOT NULL,
	sent_at TEXT NOT NULL,
	FOREIGN KEY(company_group_id) REFERENCES company_groups(id)
);

CREATE TABLE IF NOT EXISTS search_templates (
	id TEXT PRIMARY KEY,
	company_group_id TEXT NOT NULL,
	name TEXT NOT NULL,
	query TEXT NOT NULL DEFAULT '{}',
	FOREIGN KEY(company_group_id) REFERENCES company_groups(id)
);

CREATE TABLE IF NOT EXISTS message_templates (
	id TEXT PRIMARY KEY,
	company_group_id TEXT NOT NULL,
	name TEXT NOT NULL,
	body TEXT NOT NULL DEFAULT '',
	FOREIGN KEY(company_group_id) REFERENCES company_groups(id)
);

CREATE TABLE IF NOT EXISTS selection_progress (
	id TEXT PRIMARY KEY,
	company_group_id TEXT NOT NULL,
	candidate_id TEXT NOT NULL,
	job_posting_id TEXT,
	stage TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY(company_group_id) REFERENCES company_groups(id),
	FOREIGN KEY(job_posting_id) REFERENCES job_postings(id)
);

CREATE TABLE IF NOT EXISTS hidden_candidates (
	company_group_id TEXT NOT NULL,
	candidate_id TEXT NOT NULL,
	PRIMARY KEY(company_group_id, candidate_id),
	FOREIGN KEY(company_group_id) REFERENCES company_groups(id)
);

CREATE TABLE IF NOT EXISTS saved_candidates (
	company_group_id TEXT NOT NULL,
	candidate_id TEXT NOT NULL,
	PRIMARY KEY(company_group_id, candidate_id),
	FOREIGN KEY(company_group_id) REFERENCES company_groups(id)
);

CREATE INDEX IF NOT EXISTS idx_rooms_candidate ON rooms(candidate_id);
CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id);
CREATE INDEX IF NOT EXISTS idx_application_candidate ON application(candidate_id);
CREATE INDEX IF NOT EXISTS idx_job_postings_group ON job_postings(company_group_id);
`)
	return err
}

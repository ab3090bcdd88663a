package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Project is a billable project with its client name joined in.
type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	JobNumber  string `json:"job_number,omitempty"`
	ClientName string `json:"client_name,omitempty"`
}

// RecentEntry is a past timesheet entry used as model context.
type RecentEntry struct {
	ProjectID   string  `json:"project_id,omitempty"`
	ProjectName string  `json:"project_name,omitempty"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

// Entry is a persisted row of timesheet_entries.
type Entry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ProjectID   string    `json:"project_id,omitempty"`
	Hours       float64   `json:"hours"`
	Date        string    `json:"date"`
	Billable    bool      `json:"billable"`
	Description string    `json:"description"`
	TaskType    string    `json:"task_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (db *DB) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := db.QueryContext(ctx, db.rebind(
		`SELECT p.id, p.name, p.job_number, c.name
		 FROM projects p
		 LEFT JOIN clients c ON c.id = p.client_id
		 ORDER BY p.name ASC`,
	))
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		var jobNumber, clientName sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &jobNumber, &clientName); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		p.JobNumber = jobNumber.String
		p.ClientName = clientName.String
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ListRecentEntries returns the user's latest entries, newest date first.
func (db *DB) ListRecentEntries(ctx context.Context, userID string, limit int) ([]RecentEntry, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := db.QueryContext(ctx, db.rebind(
		`SELECT e.project_id, p.name, e.hours, e.description, CAST(e.date AS TEXT)
		 FROM timesheet_entries e
		 LEFT JOIN projects p ON p.id = e.project_id
		 WHERE e.user_id = ?
		 ORDER BY e.date DESC, e.created_at DESC
		 LIMIT ?`,
	), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent entries: %w", err)
	}
	defer rows.Close()

	var entries []RecentEntry
	for rows.Next() {
		var e RecentEntry
		var projectID, projectName sql.NullString
		if err := rows.Scan(&projectID, &projectName, &e.Hours, &e.Description, &e.Date); err != nil {
			return nil, fmt.Errorf("scanning recent entry: %w", err)
		}
		e.ProjectID = projectID.String
		e.ProjectName = projectName.String
		e.Date = normalizeDate(e.Date)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertEntry stores e, assigning an ID and creation time when unset.
func (db *DB) InsertEntry(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var projectID, taskType any
	if e.ProjectID != "" {
		projectID = e.ProjectID
	}
	if e.TaskType != "" {
		taskType = e.TaskType
	}

	_, err := db.ExecContext(ctx, db.rebind(
		`INSERT INTO timesheet_entries (id, user_id, project_id, hours, date, billable, description, task_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	), e.ID, e.UserID, projectID, e.Hours, e.Date, e.Billable, e.Description, taskType, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}

	db.logger.Debug("timesheet entry inserted", "id", e.ID, "user_id", e.UserID, "project_id", e.ProjectID)
	return nil
}

// GetProject looks up a single project by id.
func (db *DB) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	var jobNumber, clientName sql.NullString
	err := db.QueryRowContext(ctx, db.rebind(
		`SELECT p.id, p.name, p.job_number, c.name
		 FROM projects p
		 LEFT JOIN clients c ON c.id = p.client_id
		 WHERE p.id = ?`,
	), id).Scan(&p.ID, &p.Name, &jobNumber, &clientName)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying project %s: %w", id, err)
	}
	p.JobNumber = jobNumber.String
	p.ClientName = clientName.String
	return &p, nil
}

// UpsertClient and UpsertProject seed local databases; the hosted
// deployment manages these tables elsewhere.
func (db *DB) UpsertClient(ctx context.Context, id, name string) error {
	_, err := db.ExecContext(ctx, db.rebind(
		`INSERT INTO clients (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
	), id, name)
	if err != nil {
		return fmt.Errorf("upserting client: %w", err)
	}
	return nil
}

func (db *DB) UpsertProject(ctx context.Context, p Project, clientID string) error {
	var jobNumber, client any
	if p.JobNumber != "" {
		jobNumber = p.JobNumber
	}
	if clientID != "" {
		client = clientID
	}
	_, err := db.ExecContext(ctx, db.rebind(
		`INSERT INTO projects (id, name, job_number, client_id) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, job_number = excluded.job_number, client_id = excluded.client_id`,
	), p.ID, p.Name, jobNumber, client)
	if err != nil {
		return fmt.Errorf("upserting project: %w", err)
	}
	return nil
}

// normalizeDate trims driver-specific timestamp suffixes down to YYYY-MM-DD.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		if _, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return s[:10]
		}
	}
	return s
}

// Package tracking is the sample project-tracking store behind the built-in
// demo server. It exists so the client has something real to discover and
// dispatch against in development and tests; the production tracking service
// lives elsewhere.
package tracking

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type Service struct {
	db *sql.DB
}

// Project is one tracked project.
type Project struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Readsets int64  `json:"readsets"`
}

// Readset is one sequencing readset ingested under a project.
type Readset struct {
	ID      int64  `json:"id"`
	Project string `json:"project"`
	Sample  string `json:"sample"`
	State   string `json:"state"`
}

const schema = `
CREATE TABLE IF NOT EXISTS project (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS readset (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL REFERENCES project(id),
	sample TEXT NOT NULL,
	state TEXT NOT NULL DEFAULT 'fresh'
);
`

// NewService opens an in-memory SQLite database and seeds it with sample
// tracking data.
func NewService(ctx context.Context) (*Service, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives in its connection; a second connection
	// would see an empty database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &Service{db: db}
	if err := s.seed(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Service) seed(ctx context.Context) error {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM project`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count projects: %w", err)
	}
	if count > 0 {
		return nil
	}

	seeds := []struct {
		name     string
		readsets []Readset
	}{
		{"demo-lab", []Readset{{Sample: "DL-0001", State: "ingested"}}},
		{"moh-q", []Readset{{Sample: "MoHQ-CM-1-1", State: "delivered"}, {Sample: "MoHQ-CM-1-2", State: "fresh"}}},
	}
	for _, seed := range seeds {
		project, err := s.CreateProject(ctx, seed.name)
		if err != nil {
			return err
		}
		for _, r := range seed.readsets {
			if _, err := s.AddReadset(ctx, project.Name, r.Sample, r.State); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Service) Close() error {
	return s.db.Close()
}

// ListProjects returns all projects ordered by name.
func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, COUNT(r.id)
		FROM project p LEFT JOIN readset r ON r.project_id = p.id
		GROUP BY p.id ORDER BY p.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Readsets); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProject looks a project up by name.
func (s *Service) GetProject(ctx context.Context, name string) (*Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.name, COUNT(r.id)
		FROM project p LEFT JOIN readset r ON r.project_id = p.id
		WHERE p.name = ? GROUP BY p.id`, name).Scan(&p.ID, &p.Name, &p.Readsets)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project not found: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// CreateProject inserts a new project. Creating an existing project is an
// error rather than an upsert, so callers notice name collisions.
func (s *Service) CreateProject(ctx context.Context, name string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name must not be empty")
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO project (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create project %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new project id: %w", err)
	}
	return &Project{ID: id, Name: name}, nil
}

// ListReadsets returns the readsets of one project.
func (s *Service) ListReadsets(ctx context.Context, project string) ([]Readset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, p.name, r.sample, r.state
		FROM readset r JOIN project p ON p.id = r.project_id
		WHERE p.name = ? ORDER BY r.id`, project)
	if err != nil {
		return nil, fmt.Errorf("failed to list readsets: %w", err)
	}
	defer rows.Close()

	var readsets []Readset
	for rows.Next() {
		var r Readset
		if err := rows.Scan(&r.ID, &r.Project, &r.Sample, &r.State); err != nil {
			return nil, fmt.Errorf("failed to scan readset: %w", err)
		}
		readsets = append(readsets, r)
	}
	return readsets, rows.Err()
}

// AddReadset records one readset under an existing project.
func (s *Service) AddReadset(ctx context.Context, project, sample, state string) (*Readset, error) {
	if state == "" {
		state = "fresh"
	}
	p, err := s.GetProject(ctx, project)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO readset (project_id, sample, state) VALUES (?, ?, ?)`, p.ID, sample, state)
	if err != nil {
		return nil, fmt.Errorf("failed to add readset %s: %w", sample, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new readset id: %w", err)
	}
	return &Readset{ID: id, Project: p.Name, Sample: sample, State: state}, nil
}

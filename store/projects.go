package store

import (
	"database/sql"

	"github.com/calibrant/gdtbench/errors"
	"github.com/calibrant/gdtbench/gdt"
)

const (
	projectInsertQuery = `
		INSERT INTO projects (title, customer, revision, units, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	projectSelectQuery = `
		SELECT id, title, customer, revision, units, notes, created_at, updated_at
		FROM projects`

	projectUpdateQuery = `
		UPDATE projects SET title = ?, customer = ?, revision = ?, units = ?, notes = ?, updated_at = ?
		WHERE id = ?`

	projectSearchClause = `
		WHERE title LIKE ? OR customer LIKE ? OR notes LIKE ?`
)

// CreateProject inserts a project and fills in its ID and timestamps.
func (s *SQLStore) CreateProject(p *gdt.Project) error {
	now := s.now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := s.db.Exec(projectInsertQuery,
		p.Title, nullable(p.Customer), nullable(p.Revision), string(p.Units), nullable(p.Notes),
		formatTime(now), formatTime(now),
	)
	if err != nil {
		return errors.Wrap(err, "insert project")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "project insert id")
	}
	p.ID = id

	if s.logger != nil {
		s.logger.Infow("Project created", "project_id", p.ID, "title", p.Title)
	}
	return nil
}

// GetProject fetches one project by id.
func (s *SQLStore) GetProject(id int64) (*gdt.Project, error) {
	row := s.db.QueryRow(projectSelectQuery+" WHERE id = ?", id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "project %d", id)
	}
	return p, err
}

// ListProjects returns projects ordered by most recently updated. A non-empty
// search term filters by title, customer, or notes.
func (s *SQLStore) ListProjects(search string) ([]gdt.Project, error) {
	query := projectSelectQuery
	var args []any
	if search != "" {
		like := "%" + search + "%"
		query += projectSearchClause
		args = append(args, like, like, like)
	}
	query += " ORDER BY updated_at DESC, id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list projects")
	}
	defer rows.Close()

	var out []gdt.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateProject persists the mutable fields of p and bumps updated_at.
func (s *SQLStore) UpdateProject(p *gdt.Project) error {
	now := s.now().UTC()
	p.UpdatedAt = now

	res, err := s.db.Exec(projectUpdateQuery,
		p.Title, nullable(p.Customer), nullable(p.Revision), string(p.Units), nullable(p.Notes),
		formatTime(now), p.ID,
	)
	if err != nil {
		return errors.Wrap(err, "update project")
	}
	return requireRow(res, "project", p.ID)
}

// DeleteProject removes a project; drawings, requirements, and annotations
// cascade at the schema level.
func (s *SQLStore) DeleteProject(id int64) error {
	res, err := s.db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "delete project")
	}
	return requireRow(res, "project", id)
}

// ProjectTotals counts every entity for the dashboard.
func (s *SQLStore) ProjectTotals() (Totals, error) {
	var t Totals
	err := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM drawings),
			(SELECT COUNT(*) FROM requirements),
			(SELECT COUNT(*) FROM annotations)`,
	).Scan(&t.Projects, &t.Drawings, &t.Requirements, &t.Annotations)
	if err != nil {
		return Totals{}, errors.Wrap(err, "project totals")
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*gdt.Project, error) {
	var (
		p                    gdt.Project
		customer, revision   sql.NullString
		notes                sql.NullString
		units                string
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Title, &customer, &revision, &units, &notes, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "scan project")
	}
	p.Customer = fromNullable(customer)
	p.Revision = fromNullable(revision)
	p.Units = gdt.Unit(units)
	p.Notes = fromNullable(notes)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// requireRow converts a zero-row update/delete into ErrNotFound.
func requireRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "%s %d", entity, id)
	}
	return nil
}

package store

import (
	"database/sql"
	"time"

	"github.com/calibrant/gdtbench/errors"
)

// Drawing is one uploaded PDF belonging to a project.
type Drawing struct {
	ID           int64     `json:"id"`
	ProjectID    int64     `json:"project_id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	Title        string    `json:"title,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	PageCount    int       `json:"page_count"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

const (
	drawingInsertQuery = `
		INSERT INTO drawings (project_id, filename, original_name, title, notes, page_count, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	drawingSelectQuery = `
		SELECT id, project_id, filename, original_name, title, notes, page_count, uploaded_at
		FROM drawings`

	drawingUpdateQuery = `
		UPDATE drawings SET title = ?, notes = ?, filename = ? WHERE id = ?`
)

// CreateDrawing inserts a drawing row and fills in its ID and upload time.
func (s *SQLStore) CreateDrawing(d *Drawing) error {
	now := s.now().UTC()
	d.UploadedAt = now
	if d.PageCount < 1 {
		d.PageCount = 1
	}

	res, err := s.db.Exec(drawingInsertQuery,
		d.ProjectID, d.Filename, d.OriginalName, nullable(d.Title), nullable(d.Notes), d.PageCount,
		formatTime(now),
	)
	if err != nil {
		return errors.Wrap(err, "insert drawing")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "drawing insert id")
	}
	d.ID = id

	if s.logger != nil {
		s.logger.Infow("Drawing stored",
			"drawing_id", d.ID,
			"project_id", d.ProjectID,
			"pages", d.PageCount,
		)
	}
	return nil
}

// GetDrawing fetches one drawing by id.
func (s *SQLStore) GetDrawing(id int64) (*Drawing, error) {
	row := s.db.QueryRow(drawingSelectQuery+" WHERE id = ?", id)
	d, err := scanDrawing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "drawing %d", id)
	}
	return d, err
}

// ListDrawingsByProject returns a project's drawings, newest upload first.
func (s *SQLStore) ListDrawingsByProject(projectID int64) ([]Drawing, error) {
	rows, err := s.db.Query(drawingSelectQuery+" WHERE project_id = ? ORDER BY uploaded_at DESC, id DESC", projectID)
	if err != nil {
		return nil, errors.Wrap(err, "list drawings")
	}
	defer rows.Close()

	var out []Drawing
	for rows.Next() {
		d, err := scanDrawing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// UpdateDrawing persists title, notes, and filename changes.
func (s *SQLStore) UpdateDrawing(d *Drawing) error {
	res, err := s.db.Exec(drawingUpdateQuery, nullable(d.Title), nullable(d.Notes), d.Filename, d.ID)
	if err != nil {
		return errors.Wrap(err, "update drawing")
	}
	return requireRow(res, "drawing", d.ID)
}

// DeleteDrawing removes a drawing row; its annotations cascade.
func (s *SQLStore) DeleteDrawing(id int64) error {
	res, err := s.db.Exec("DELETE FROM drawings WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "delete drawing")
	}
	return requireRow(res, "drawing", id)
}

func scanDrawing(row rowScanner) (*Drawing, error) {
	var (
		d            Drawing
		title, notes sql.NullString
		uploadedAt   string
	)
	if err := row.Scan(&d.ID, &d.ProjectID, &d.Filename, &d.OriginalName, &title, &notes, &d.PageCount, &uploadedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "scan drawing")
	}
	d.Title = fromNullable(title)
	d.Notes = fromNullable(notes)
	d.UploadedAt = parseTime(uploadedAt)
	return &d, nil
}

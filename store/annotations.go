package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/calibrant/gdtbench/errors"
	"github.com/calibrant/gdtbench/geom"
)

// Annotation links a region on a drawing page to a requirement. Coords holds
// the normalized region coordinates exactly as supplied.
type Annotation struct {
	ID            int64           `json:"id"`
	RequirementID int64           `json:"requirement_id"`
	DrawingID     int64           `json:"drawing_id"`
	PageIndex     int             `json:"page_index"`
	Kind          string          `json:"kind"`
	Coords        json.RawMessage `json:"coords"`
	Label         string          `json:"label,omitempty"`
	ColorHex      string          `json:"color_hex,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Region decodes the annotation's stored coordinates.
func (a Annotation) Region() (geom.Region, error) {
	return geom.ParseRegion(a.Kind, a.Coords)
}

const (
	annotationInsertQuery = `
		INSERT INTO annotations (requirement_id, drawing_id, page_index, kind, coords, label, color_hex, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	annotationSelectQuery = `
		SELECT id, requirement_id, drawing_id, page_index, kind, coords, label, color_hex, created_at
		FROM annotations`
)

// defaultAnnotationColor matches the drawing overlay's highlight color.
const defaultAnnotationColor = "#ff0066"

// CreateAnnotation inserts an annotation and fills in its ID.
func (s *SQLStore) CreateAnnotation(a *Annotation) error {
	now := s.now().UTC()
	a.CreatedAt = now
	if a.ColorHex == "" {
		a.ColorHex = defaultAnnotationColor
	}

	res, err := s.db.Exec(annotationInsertQuery,
		a.RequirementID, a.DrawingID, a.PageIndex, a.Kind, string(a.Coords),
		nullable(a.Label), a.ColorHex, formatTime(now),
	)
	if err != nil {
		return errors.Wrap(err, "insert annotation")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "annotation insert id")
	}
	a.ID = id
	return nil
}

// GetAnnotation fetches one annotation by id.
func (s *SQLStore) GetAnnotation(id int64) (*Annotation, error) {
	row := s.db.QueryRow(annotationSelectQuery+" WHERE id = ?", id)
	a, err := scanAnnotation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "annotation %d", id)
	}
	return a, err
}

// ListAnnotationsByPage returns the annotations of one drawing page in
// insertion order. Hit resolution walks this order, so it is also the
// overlap precedence.
func (s *SQLStore) ListAnnotationsByPage(drawingID int64, pageIndex int) ([]Annotation, error) {
	rows, err := s.db.Query(annotationSelectQuery+" WHERE drawing_id = ? AND page_index = ? ORDER BY id ASC", drawingID, pageIndex)
	if err != nil {
		return nil, errors.Wrap(err, "list annotations")
	}
	return collectAnnotations(rows)
}

// ListAnnotationsByRequirement returns every annotation linked to a
// requirement across all drawings.
func (s *SQLStore) ListAnnotationsByRequirement(requirementID int64) ([]Annotation, error) {
	rows, err := s.db.Query(annotationSelectQuery+" WHERE requirement_id = ? ORDER BY id ASC", requirementID)
	if err != nil {
		return nil, errors.Wrap(err, "list annotations by requirement")
	}
	return collectAnnotations(rows)
}

// DeleteAnnotation removes one annotation.
func (s *SQLStore) DeleteAnnotation(id int64) error {
	res, err := s.db.Exec("DELETE FROM annotations WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "delete annotation")
	}
	return requireRow(res, "annotation", id)
}

func collectAnnotations(rows *sql.Rows) ([]Annotation, error) {
	defer rows.Close()
	var out []Annotation
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAnnotation(row rowScanner) (*Annotation, error) {
	var (
		a               Annotation
		coords          string
		label, colorHex sql.NullString
		createdAt       string
	)
	if err := row.Scan(&a.ID, &a.RequirementID, &a.DrawingID, &a.PageIndex, &a.Kind, &coords, &label, &colorHex, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "scan annotation")
	}
	a.Coords = json.RawMessage(coords)
	a.Label = fromNullable(label)
	a.ColorHex = fromNullable(colorHex)
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

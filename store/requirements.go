package store

import (
	"database/sql"

	"github.com/calibrant/gdtbench/errors"
	"github.com/calibrant/gdtbench/gdt"
)

const (
	requirementInsertQuery = `
		INSERT INTO requirements (
			project_id, title, feature_name, description, symbol_key,
			tolerance_value, tolerance_unit, diameter_modifier, material_condition,
			datum_refs, zone_shape, fcf_text, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	requirementSelectQuery = `
		SELECT id, project_id, title, feature_name, description, symbol_key,
			tolerance_value, tolerance_unit, diameter_modifier, material_condition,
			datum_refs, zone_shape, fcf_text, notes, created_at, updated_at
		FROM requirements`

	requirementUpdateQuery = `
		UPDATE requirements SET
			title = ?, feature_name = ?, description = ?, symbol_key = ?,
			tolerance_value = ?, tolerance_unit = ?, diameter_modifier = ?, material_condition = ?,
			datum_refs = ?, zone_shape = ?, fcf_text = ?, notes = ?, updated_at = ?
		WHERE id = ?`
)

// CreateRequirement inserts a requirement. FCFText is recomputed from the
// encoded attributes before writing; whatever the caller set is discarded.
func (s *SQLStore) CreateRequirement(r *gdt.Requirement) error {
	now := s.now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	r.FCFText = gdt.EncodeRequirement(*r)

	datums, err := marshalDatums(r.DatumRefs)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(requirementInsertQuery,
		r.ProjectID, r.Title, nullable(r.FeatureName), nullable(r.Description), string(r.Symbol),
		marshalTolerance(r.ToleranceValue), nullable(string(r.ToleranceUnit)), r.DiameterModifier, nullable(string(r.MaterialCondition)),
		datums, nullable(string(r.ZoneShape)), r.FCFText, nullable(r.Notes),
		formatTime(now), formatTime(now),
	)
	if err != nil {
		return errors.Wrap(err, "insert requirement")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "requirement insert id")
	}
	r.ID = id

	if s.logger != nil {
		s.logger.Infow("Requirement created",
			"requirement_id", r.ID,
			"project_id", r.ProjectID,
			"symbol", r.Symbol,
		)
	}
	return nil
}

// GetRequirement fetches one requirement by id.
func (s *SQLStore) GetRequirement(id int64) (*gdt.Requirement, error) {
	row := s.db.QueryRow(requirementSelectQuery+" WHERE id = ?", id)
	r, err := scanRequirement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "requirement %d", id)
	}
	return r, err
}

// ListRequirementsByProject returns a project's requirements, newest first.
func (s *SQLStore) ListRequirementsByProject(projectID int64) ([]gdt.Requirement, error) {
	rows, err := s.db.Query(requirementSelectQuery+" WHERE project_id = ? ORDER BY created_at DESC, id DESC", projectID)
	if err != nil {
		return nil, errors.Wrap(err, "list requirements")
	}
	return collectRequirements(rows)
}

// ListRequirementsForExport returns a project's requirements in id order,
// the stable order reports use.
func (s *SQLStore) ListRequirementsForExport(projectID int64) ([]gdt.Requirement, error) {
	rows, err := s.db.Query(requirementSelectQuery+" WHERE project_id = ? ORDER BY id ASC", projectID)
	if err != nil {
		return nil, errors.Wrap(err, "list requirements for export")
	}
	return collectRequirements(rows)
}

// UpdateRequirement persists r and recomputes its FCFText.
func (s *SQLStore) UpdateRequirement(r *gdt.Requirement) error {
	now := s.now().UTC()
	r.UpdatedAt = now
	r.FCFText = gdt.EncodeRequirement(*r)

	datums, err := marshalDatums(r.DatumRefs)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(requirementUpdateQuery,
		r.Title, nullable(r.FeatureName), nullable(r.Description), string(r.Symbol),
		marshalTolerance(r.ToleranceValue), nullable(string(r.ToleranceUnit)), r.DiameterModifier, nullable(string(r.MaterialCondition)),
		datums, nullable(string(r.ZoneShape)), r.FCFText, nullable(r.Notes),
		formatTime(now), r.ID,
	)
	if err != nil {
		return errors.Wrap(err, "update requirement")
	}
	return requireRow(res, "requirement", r.ID)
}

// DeleteRequirement removes a requirement; its annotations cascade.
func (s *SQLStore) DeleteRequirement(id int64) error {
	res, err := s.db.Exec("DELETE FROM requirements WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "delete requirement")
	}
	return requireRow(res, "requirement", id)
}

// SearchFilter narrows SearchRequirements. Zero values mean "no constraint".
type SearchFilter struct {
	Query         string
	Symbol        gdt.Symbol
	ProjectID     int64
	HasAnnotation bool
}

// SearchRequirements finds requirements matching the filter, newest first.
// The free-text query matches title, feature name, description, FCF text,
// and the datum list.
func (s *SQLStore) SearchRequirements(f SearchFilter) ([]gdt.Requirement, error) {
	query := requirementSelectQuery + " WHERE 1=1"
	var args []any

	if f.ProjectID != 0 {
		query += " AND project_id = ?"
		args = append(args, f.ProjectID)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		query += ` AND (title LIKE ? OR feature_name LIKE ? OR description LIKE ?
			OR fcf_text LIKE ? OR datum_refs LIKE ?)`
		args = append(args, like, like, like, like, like)
	}
	if f.Symbol != "" {
		query += " AND symbol_key = ?"
		args = append(args, string(f.Symbol))
	}
	if f.HasAnnotation {
		query += " AND EXISTS (SELECT 1 FROM annotations WHERE annotations.requirement_id = requirements.id)"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "search requirements")
	}
	return collectRequirements(rows)
}

func collectRequirements(rows *sql.Rows) ([]gdt.Requirement, error) {
	defer rows.Close()
	var out []gdt.Requirement
	for rows.Next() {
		r, err := scanRequirement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanRequirement(row rowScanner) (*gdt.Requirement, error) {
	var (
		r                                 gdt.Requirement
		featureName, description          sql.NullString
		symbol                            string
		tolValue, tolUnit                 sql.NullString
		material, datums, zone            sql.NullString
		fcfText, notes                    sql.NullString
		createdAt, updatedAt              string
	)
	err := row.Scan(&r.ID, &r.ProjectID, &r.Title, &featureName, &description, &symbol,
		&tolValue, &tolUnit, &r.DiameterModifier, &material,
		&datums, &zone, &fcfText, &notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "scan requirement")
	}

	r.FeatureName = fromNullable(featureName)
	r.Description = fromNullable(description)
	r.Symbol = gdt.Symbol(symbol)
	if r.ToleranceValue, err = unmarshalTolerance(tolValue); err != nil {
		return nil, err
	}
	r.ToleranceUnit = gdt.Unit(fromNullable(tolUnit))
	r.MaterialCondition = gdt.MaterialCondition(fromNullable(material))
	if r.DatumRefs, err = unmarshalDatums(datums); err != nil {
		return nil, err
	}
	r.ZoneShape = gdt.ZoneShape(fromNullable(zone))
	r.FCFText = fromNullable(fcfText)
	r.Notes = fromNullable(notes)
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return &r, nil
}

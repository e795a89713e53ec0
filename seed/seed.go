// Package seed loads a demo project so a fresh database has something
// to look at: two generated drawings, eight varied requirements, and a
// couple of annotations. Seeding is a no-op when projects exist.
package seed

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/calibrant/gdtbench/errors"
	"github.com/calibrant/gdtbench/gdt"
	"github.com/calibrant/gdtbench/internal/pdfpage"
	"github.com/calibrant/gdtbench/store"
)

// Run seeds the demo project. Existing data is left untouched.
func Run(st *store.SQLStore, uploadDir string, logger *zap.SugaredLogger) error {
	totals, err := st.ProjectTotals()
	if err != nil {
		return errors.Wrap(err, "check existing data")
	}
	if totals.Projects > 0 {
		logger.Infow("Seed skipped, projects already exist", "projects", totals.Projects)
		return nil
	}

	project := &gdt.Project{
		Title:    "Demo Gearbox Bracket",
		Customer: "Acme Robotics",
		Revision: "A",
		Units:    gdt.UnitMM,
		Notes:    "Seeded project with demo drawings and requirements.",
	}
	if err := st.CreateProject(project); err != nil {
		return err
	}

	drawings, err := seedDrawings(st, project.ID, uploadDir)
	if err != nil {
		return err
	}

	reqs, err := seedRequirements(st, project.ID)
	if err != nil {
		return err
	}

	if err := seedAnnotations(st, drawings[0].ID, reqs); err != nil {
		return err
	}

	logger.Infow("Seed complete",
		"project_id", project.ID,
		"drawings", len(drawings),
		"requirements", len(reqs),
	)
	return nil
}

func seedDrawings(st *store.SQLStore, projectID int64, uploadDir string) ([]*store.Drawing, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}

	var out []*store.Drawing
	for _, name := range []struct{ title, file string }{
		{"Bracket Drawing", "demo_bracket.pdf"},
		{"Shaft Drawing", "demo_shaft.pdf"},
	} {
		data := demoPDF(name.title, 3)
		if err := os.WriteFile(filepath.Join(uploadDir, name.file), data, 0o644); err != nil {
			return nil, errors.Wrapf(err, "write %s", name.file)
		}
		pageCount, err := pdfpage.Count(data)
		if err != nil {
			return nil, errors.Wrapf(err, "count pages in %s", name.file)
		}

		d := &store.Drawing{
			ProjectID:    projectID,
			Filename:     name.file,
			OriginalName: name.file,
			Title:        name.title,
			PageCount:    pageCount,
		}
		if err := st.CreateDrawing(d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func seedRequirements(st *store.SQLStore, projectID int64) ([]*gdt.Requirement, error) {
	dec := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	reqs := []*gdt.Requirement{
		{
			Title:             "Mounting hole pattern",
			FeatureName:       "Ø6 bolt holes (4x)",
			Description:       "Pattern relative to base datums.",
			Symbol:            gdt.SymbolPosition,
			ToleranceValue:    dec("0.2"),
			ToleranceUnit:     gdt.UnitMM,
			DiameterModifier:  true,
			MaterialCondition: gdt.MMC,
			DatumRefs:         []string{"A", "B", "C"},
			ZoneShape:         gdt.ZoneCylindrical,
		},
		{
			Title:          "Mating face flatness",
			FeatureName:    "Top pad",
			Description:    "Pad must be flat for seal.",
			Symbol:         gdt.SymbolFlatness,
			ToleranceValue: dec("0.1"),
			ToleranceUnit:  gdt.UnitMM,
			ZoneShape:      gdt.ZonePlanar,
		},
		{
			Title:          "Shaft profile",
			FeatureName:    "Freeform surface",
			Description:    "Surface profile relative to A|B.",
			Symbol:         gdt.SymbolProfileSurface,
			ToleranceValue: dec("0.5"),
			ToleranceUnit:  gdt.UnitMM,
			DatumRefs:      []string{"A", "B"},
			ZoneShape:      gdt.ZoneCylindrical,
		},
		{
			Title:          "Bearing seat runout",
			FeatureName:    "Ø20 seat",
			Description:    "Runout relative to axis A.",
			Symbol:         gdt.SymbolCircularRunout,
			ToleranceValue: dec("0.02"),
			ToleranceUnit:  gdt.UnitMM,
			DatumRefs:      []string{"A"},
			ZoneShape:      gdt.ZoneCylindrical,
		},
		{
			Title:          "Total runout main journal",
			FeatureName:    "Ø25 journal",
			Description:    "Total runout to datum A.",
			Symbol:         gdt.SymbolTotalRunout,
			ToleranceValue: dec("0.05"),
			ToleranceUnit:  gdt.UnitMM,
			DatumRefs:      []string{"A"},
			ZoneShape:      gdt.ZoneCylindrical,
		},
		{
			Title:          "Perpendicular face",
			FeatureName:    "Side wall",
			Description:    "Must be square to A.",
			Symbol:         gdt.SymbolPerpendicularity,
			ToleranceValue: dec("0.1"),
			ToleranceUnit:  gdt.UnitMM,
			DatumRefs:      []string{"A"},
			ZoneShape:      gdt.ZonePlanar,
		},
		{
			Title:          "Legacy symmetry (for demo)",
			FeatureName:    "Slot centerplane",
			Description:    "Legacy control to be flagged.",
			Symbol:         gdt.SymbolSymmetry,
			ToleranceValue: dec("0.2"),
			ToleranceUnit:  gdt.UnitMM,
			DatumRefs:      []string{"A"},
		},
		{
			Title:          "Legacy concentricity (for demo)",
			FeatureName:    "Ø10 shaft",
			Description:    "Legacy control to be flagged.",
			Symbol:         gdt.SymbolConcentricity,
			ToleranceValue: dec("0.1"),
			ToleranceUnit:  gdt.UnitMM,
			DatumRefs:      []string{"A"},
		},
	}

	for _, r := range reqs {
		r.ProjectID = projectID
		if err := st.CreateRequirement(r); err != nil {
			return nil, errors.Wrapf(err, "seed requirement %q", r.Title)
		}
	}
	return reqs, nil
}

func seedAnnotations(st *store.SQLStore, drawingID int64, reqs []*gdt.Requirement) error {
	annotations := []*store.Annotation{
		{
			RequirementID: reqs[0].ID,
			DrawingID:     drawingID,
			PageIndex:     0,
			Kind:          "box",
			Coords:        json.RawMessage(`{"x":0.15,"y":0.2,"w":0.2,"h":0.1}`),
			Label:         "Hole pattern",
			ColorHex:      "#ff0066",
		},
		{
			RequirementID: reqs[1].ID,
			DrawingID:     drawingID,
			PageIndex:     1,
			Kind:          "polygon",
			Coords:        json.RawMessage(`{"points":[{"x":0.6,"y":0.3},{"x":0.8,"y":0.35},{"x":0.75,"y":0.55}]}`),
			Label:         "Pad",
			ColorHex:      "#0d6efd",
		},
	}
	for _, a := range annotations {
		if err := st.CreateAnnotation(a); err != nil {
			return errors.Wrap(err, "seed annotation")
		}
	}
	return nil
}

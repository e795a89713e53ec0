package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// HandleProjectExportCSV streams a project's requirements as CSV. Each
// row carries the encoded control frame plus the 1-based drawing pages
// its annotations land on.
func (s *GdtServer) HandleProjectExportCSV(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet) {
		return
	}
	projectID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err)
		return
	}
	if _, err := s.store.GetProject(projectID); err != nil {
		s.fail(w, err)
		return
	}
	reqs, err := s.store.ListRequirementsForExport(projectID)
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=project_%d_requirements.csv", projectID))

	cw := csv.NewWriter(w)
	cw.Write([]string{
		"id", "title", "feature", "symbol", "fcf", "tol_value", "tol_unit",
		"diameter", "material", "datums", "zone", "notes", "linked_pages",
	})

	for _, req := range reqs {
		pages, err := s.linkedPages(req.ID)
		if err != nil {
			s.fail(w, err)
			return
		}

		tol := ""
		if req.ToleranceValue != nil {
			tol = req.ToleranceValue.String()
		}
		diameter := ""
		if req.DiameterModifier {
			diameter = "Y"
		}

		cw.Write([]string{
			strconv.FormatInt(req.ID, 10),
			req.Title,
			req.FeatureName,
			string(req.Symbol),
			req.FCFText,
			tol,
			string(req.ToleranceUnit),
			diameter,
			string(req.MaterialCondition),
			strings.Join(req.DatumRefs, "|"),
			string(req.ZoneShape),
			req.Notes,
			pages,
		})
	}
	cw.Flush()
}

// linkedPages collects the distinct 1-based page numbers a requirement
// is annotated on, sorted ascending.
func (s *GdtServer) linkedPages(requirementID int64) (string, error) {
	anns, err := s.store.ListAnnotationsByRequirement(requirementID)
	if err != nil {
		return "", err
	}
	seen := make(map[int]bool)
	var pages []int
	for _, a := range anns {
		page := a.PageIndex + 1
		if !seen[page] {
			seen[page] = true
			pages = append(pages, page)
		}
	}
	sort.Ints(pages)

	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ","), nil
}

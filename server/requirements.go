package server

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/calibrant/gdtbench/gdt"
	"github.com/calibrant/gdtbench/store"
)

// HandleProjectRequirements lists (GET) or creates (POST) requirements
// under a project.
func (s *GdtServer) HandleProjectRequirements(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet, http.MethodPost) {
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

	if r.Method == http.MethodGet {
		reqs, err := s.store.ListRequirementsByProject(projectID)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reqs)
		return
	}

	var req gdt.Requirement
	if readJSON(w, r, &req) != nil {
		return
	}
	req.ProjectID = projectID
	if err := validateRequirement(&req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.CreateRequirement(&req); err != nil {
		s.fail(w, err)
		return
	}
	s.publish(Event{Type: "change", Entity: "requirement", Action: "created", ID: req.ID, ProjectID: projectID})
	writeJSON(w, http.StatusCreated, req)
}

// HandleRequirement reads, updates, or deletes one requirement.
func (s *GdtServer) HandleRequirement(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		req, err := s.store.GetRequirement(id)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, req)

	case http.MethodPut:
		existing, err := s.store.GetRequirement(id)
		if err != nil {
			s.fail(w, err)
			return
		}
		var req gdt.Requirement
		if readJSON(w, r, &req) != nil {
			return
		}
		req.ID = id
		req.ProjectID = existing.ProjectID
		if err := validateRequirement(&req); err != nil {
			s.fail(w, err)
			return
		}
		if err := s.store.UpdateRequirement(&req); err != nil {
			s.fail(w, err)
			return
		}
		s.publish(Event{Type: "change", Entity: "requirement", Action: "updated", ID: id, ProjectID: req.ProjectID})
		writeJSON(w, http.StatusOK, req)

	case http.MethodDelete:
		existing, err := s.store.GetRequirement(id)
		if err != nil {
			s.fail(w, err)
			return
		}
		if err := s.store.DeleteRequirement(id); err != nil {
			s.fail(w, err)
			return
		}
		s.publish(Event{Type: "change", Entity: "requirement", Action: "deleted", ID: id, ProjectID: existing.ProjectID})
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleRequirementExplain renders the plain-language explanation for a
// stored requirement.
func (s *GdtServer) HandleRequirementExplain(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err)
		return
	}
	req, err := s.store.GetRequirement(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"requirement_id": id,
		"fcf_text":       req.FCFText,
		"explanation":    gdt.Explain(*req),
	})
}

// fcfPreviewRequest carries the unsaved editor state for a live
// preview.
type fcfPreviewRequest struct {
	Symbol            gdt.Symbol            `json:"symbol_key"`
	ToleranceValue    *decimal.Decimal      `json:"tolerance_value"`
	ToleranceUnit     gdt.Unit              `json:"tolerance_unit"`
	DiameterModifier  bool                  `json:"diameter_modifier"`
	MaterialCondition gdt.MaterialCondition `json:"material_condition"`
	DatumRefs         []string              `json:"datum_refs"`
	ZoneShape         gdt.ZoneShape         `json:"zone_shape"`
}

// HandleFCFPreview encodes and explains an unsaved requirement so the
// editor can show live feedback.
func (s *GdtServer) HandleFCFPreview(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodPost) {
		return
	}
	var in fcfPreviewRequest
	if readJSON(w, r, &in) != nil {
		return
	}

	req := gdt.Requirement{
		Symbol:            in.Symbol,
		ToleranceValue:    in.ToleranceValue,
		ToleranceUnit:     in.ToleranceUnit,
		DiameterModifier:  in.DiameterModifier,
		MaterialCondition: in.MaterialCondition,
		DatumRefs:         in.DatumRefs,
		ZoneShape:         in.ZoneShape,
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fcf_text":    gdt.EncodeRequirement(req),
		"explanation": gdt.Explain(req),
	})
}

// HandleSymbols returns the symbol catalog for pickers.
func (s *GdtServer) HandleSymbols(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet) {
		return
	}
	type symbolEntry struct {
		Key         gdt.Symbol   `json:"key"`
		Glyph       string       `json:"glyph"`
		Label       string       `json:"label"`
		Category    gdt.Category `json:"category"`
		Legacy      bool         `json:"legacy"`
		Alternative string       `json:"modern_alternative,omitempty"`
	}
	var out []symbolEntry
	for _, sym := range gdt.Palette() {
		out = append(out, symbolEntry{
			Key:         sym,
			Glyph:       gdt.Glyph(sym),
			Label:       gdt.Label(sym),
			Category:    gdt.CategoryOf(sym),
			Legacy:      gdt.Legacy(sym),
			Alternative: gdt.ModernAlternative(sym),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleSearch finds requirements across projects.
func (s *GdtServer) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()

	filter := store.SearchFilter{
		Query:         strings.TrimSpace(q.Get("q")),
		Symbol:        gdt.Symbol(q.Get("symbol")),
		HasAnnotation: q.Get("annotated") == "true",
	}
	if raw := q.Get("project"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			s.fail(w, NewInvalidRequestError("bad project id %q", raw))
			return
		}
		filter.ProjectID = id
	}
	if filter.Symbol != "" && !gdt.Known(filter.Symbol) {
		s.fail(w, NewInvalidRequestError("unknown symbol %q", filter.Symbol))
		return
	}

	reqs, err := s.store.SearchRequirements(filter)
	if err != nil {
		s.fail(w, err)
		return
	}
	if reqs == nil {
		reqs = []gdt.Requirement{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

// validateRequirement enforces the closed value sets and normalizes
// optional fields before a requirement hits the store.
func validateRequirement(r *gdt.Requirement) error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" || len(r.Title) > 200 {
		return NewInvalidRequestError("title is required (max 200 chars)")
	}
	if !gdt.Known(r.Symbol) {
		return NewInvalidRequestError("unknown symbol %q", r.Symbol)
	}
	if r.ToleranceUnit != "" && !gdt.ValidUnit(r.ToleranceUnit) {
		return NewInvalidRequestError("unknown tolerance unit %q", r.ToleranceUnit)
	}
	if r.MaterialCondition != "" && !gdt.ValidMaterialCondition(r.MaterialCondition) {
		return NewInvalidRequestError("unknown material condition %q", r.MaterialCondition)
	}
	if r.ZoneShape != "" && !gdt.ValidZoneShape(r.ZoneShape) {
		return NewInvalidRequestError("unknown zone shape %q", r.ZoneShape)
	}
	if r.ToleranceValue != nil && r.ToleranceValue.Sign() <= 0 {
		return NewInvalidRequestError("tolerance value must be positive")
	}
	for _, d := range r.DatumRefs {
		if strings.TrimSpace(d) == "" {
			return NewInvalidRequestError("datum references must not be blank")
		}
	}
	if r.Symbol == gdt.SymbolPosition && len(r.DatumRefs) == 0 {
		return NewInvalidRequestError("position requires at least one datum reference (e.g., A|B|C)")
	}
	return nil
}

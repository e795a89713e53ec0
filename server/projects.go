package server

import (
	"net/http"
	"strings"

	"github.com/calibrant/gdtbench/gdt"
	"github.com/calibrant/gdtbench/insight"
)

// HandleProjects lists projects (GET, optional ?q= search) and creates
// them (POST).
func (s *GdtServer) HandleProjects(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodGet {
		projects, err := s.store.ListProjects(strings.TrimSpace(r.URL.Query().Get("q")))
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, projects)
		return
	}

	var p gdt.Project
	if readJSON(w, r, &p) != nil {
		return
	}
	if err := validateProject(&p); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.CreateProject(&p); err != nil {
		s.fail(w, err)
		return
	}
	s.publish(Event{Type: "change", Entity: "project", Action: "created", ID: p.ID, ProjectID: p.ID})
	writeJSON(w, http.StatusCreated, p)
}

// HandleProject reads, updates, or deletes one project.
func (s *GdtServer) HandleProject(w http.ResponseWriter, r *http.Request) {
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
		p, err := s.store.GetProject(id)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case http.MethodPut:
		var p gdt.Project
		if readJSON(w, r, &p) != nil {
			return
		}
		p.ID = id
		if err := validateProject(&p); err != nil {
			s.fail(w, err)
			return
		}
		if err := s.store.UpdateProject(&p); err != nil {
			s.fail(w, err)
			return
		}
		s.publish(Event{Type: "change", Entity: "project", Action: "updated", ID: id, ProjectID: id})
		writeJSON(w, http.StatusOK, p)

	case http.MethodDelete:
		if err := s.store.DeleteProject(id); err != nil {
			s.fail(w, err)
			return
		}
		s.publish(Event{Type: "change", Entity: "project", Action: "deleted", ID: id, ProjectID: id})
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleProjectInsights runs the diagnostics rules over the project's
// requirements. Findings are computed on demand and never persisted.
func (s *GdtServer) HandleProjectInsights(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err)
		return
	}
	p, err := s.store.GetProject(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	reqs, err := s.store.ListRequirementsForExport(id)
	if err != nil {
		s.fail(w, err)
		return
	}

	findings := insight.Diagnose(*p, reqs)
	if findings == nil {
		findings = []insight.Finding{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"project_id": id,
		"findings":   findings,
	})
}

func validateProject(p *gdt.Project) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" || len(p.Title) > 200 {
		return NewInvalidRequestError("title is required (max 200 chars)")
	}
	if p.Units == "" {
		p.Units = gdt.UnitMM
	}
	if !gdt.ValidUnit(p.Units) {
		return NewInvalidRequestError("unknown units %q", p.Units)
	}
	return nil
}

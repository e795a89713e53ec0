package server

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/calibrant/gdtbench/errors"
	"github.com/calibrant/gdtbench/geom"
	"github.com/calibrant/gdtbench/store"
)

var colorHexRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// HandleDrawingAnnotations lists a drawing page's annotations (GET,
// optional ?page=) or creates one (POST).
func (s *GdtServer) HandleDrawingAnnotations(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	drawingID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err)
		return
	}
	d, err := s.store.GetDrawing(drawingID)
	if err != nil {
		s.fail(w, err)
		return
	}

	if r.Method == http.MethodGet {
		page := 0
		if raw := r.URL.Query().Get("page"); raw != "" {
			page, err = strconv.Atoi(raw)
			if err != nil || page < 0 {
				s.fail(w, NewInvalidRequestError("bad page %q", raw))
				return
			}
		}
		anns, err := s.store.ListAnnotationsByPage(drawingID, page)
		if err != nil {
			s.fail(w, err)
			return
		}
		if anns == nil {
			anns = []store.Annotation{}
		}
		writeJSON(w, http.StatusOK, anns)
		return
	}

	var a store.Annotation
	if readJSON(w, r, &a) != nil {
		return
	}
	a.DrawingID = drawingID
	if err := s.validateAnnotation(&a, d); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.CreateAnnotation(&a); err != nil {
		s.fail(w, err)
		return
	}
	s.publish(Event{Type: "change", Entity: "annotation", Action: "created", ID: a.ID, ProjectID: d.ProjectID})
	writeJSON(w, http.StatusCreated, a)
}

// HandleAnnotation reads or deletes one annotation.
func (s *GdtServer) HandleAnnotation(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err)
		return
	}
	a, err := s.store.GetAnnotation(id)
	if err != nil {
		s.fail(w, err)
		return
	}

	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, a)
		return
	}

	d, err := s.store.GetDrawing(a.DrawingID)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.DeleteAnnotation(id); err != nil {
		s.fail(w, err)
		return
	}
	s.publish(Event{Type: "change", Entity: "annotation", Action: "deleted", ID: id, ProjectID: d.ProjectID})
	w.WriteHeader(http.StatusNoContent)
}

// HandleAnnotationHit resolves a click on a drawing page to the first
// annotation containing it, in stored order.
func (s *GdtServer) HandleAnnotationHit(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()

	drawingID, err := parseID(q.Get("drawing_id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	page, err := strconv.Atoi(q.Get("page_index"))
	if err != nil || page < 0 {
		s.fail(w, NewInvalidRequestError("bad page_index %q", q.Get("page_index")))
		return
	}
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		s.fail(w, NewInvalidRequestError("bad point (%q, %q)", q.Get("x"), q.Get("y")))
		return
	}

	anns, err := s.store.ListAnnotationsByPage(drawingID, page)
	if err != nil {
		s.fail(w, err)
		return
	}

	refs := make([]geom.RegionRef, 0, len(anns))
	for _, a := range anns {
		region, err := a.Region()
		if err != nil {
			s.logger.Warnw("Skipping annotation with bad coords",
				"annotation_id", a.ID, "error", err.Error())
			continue
		}
		refs = append(refs, geom.RegionRef{
			AnnotationID:  a.ID,
			RequirementID: a.RequirementID,
			Region:        region,
		})
	}

	hit, ok := geom.ResolveHit(refs, geom.Point{X: x, Y: y})
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"hit": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hit":            true,
		"annotation_id":  hit.AnnotationID,
		"requirement_id": hit.RequirementID,
	})
}

// validateAnnotation checks the payload against the drawing it targets
// and verifies the coords parse into a usable region.
func (s *GdtServer) validateAnnotation(a *store.Annotation, d *store.Drawing) error {
	if a.RequirementID <= 0 {
		return NewInvalidRequestError("requirement_id is required")
	}
	req, err := s.store.GetRequirement(a.RequirementID)
	if err != nil {
		return err
	}
	if req.ProjectID != d.ProjectID {
		return NewInvalidRequestError("requirement %d belongs to another project", a.RequirementID)
	}
	if a.PageIndex < 0 || (d.PageCount > 0 && a.PageIndex >= d.PageCount) {
		return NewInvalidRequestError("page_index %d out of range for a %d-page drawing", a.PageIndex, d.PageCount)
	}
	if a.Kind != geom.KindBox && a.Kind != geom.KindPolygon {
		return NewInvalidRequestError("unknown annotation kind %q", a.Kind)
	}
	if len(a.Label) > 100 {
		return NewInvalidRequestError("label too long (max 100 chars)")
	}
	if a.ColorHex != "" && !colorHexRe.MatchString(a.ColorHex) {
		return NewInvalidRequestError("bad color %q", a.ColorHex)
	}
	if _, err := a.Region(); err != nil {
		return errors.Wrap(ErrInvalidRequest, err.Error())
	}
	return nil
}

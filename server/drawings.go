package server

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calibrant/gdtbench/errors"
	"github.com/calibrant/gdtbench/internal/pdfpage"
	"github.com/calibrant/gdtbench/store"
)

// rateWindow is a sliding-window counter for upload rate limiting.
type rateWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
}

func newRateWindow(limit int, window time.Duration) *rateWindow {
	return &rateWindow{limit: limit, window: window, now: time.Now}
}

// Allow records an attempt and reports whether it is within the limit.
func (rw *rateWindow) Allow() bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	cutoff := rw.now().Add(-rw.window)
	keep := rw.stamps[:0]
	for _, ts := range rw.stamps {
		if ts.After(cutoff) {
			keep = append(keep, ts)
		}
	}
	rw.stamps = keep

	if rw.limit > 0 && len(rw.stamps) >= rw.limit {
		return false
	}
	rw.stamps = append(rw.stamps, rw.now())
	return true
}

// HandleProjectDrawings lists a project's drawings (GET) or accepts a
// multipart PDF upload (POST, field name "file").
func (s *GdtServer) HandleProjectDrawings(w http.ResponseWriter, r *http.Request) {
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
		drawings, err := s.store.ListDrawingsByProject(projectID)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, drawings)
		return
	}

	if !s.uploadLimiter.Allow() {
		s.fail(w, errors.Wrap(ErrTooManyRequests, "upload rate limit reached"))
		return
	}

	maxBytes := s.cfg.Uploads.MaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, errors.Wrap(ErrInvalidRequest, "missing file field"))
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		s.fail(w, errors.Wrap(ErrUnsupportedFile, "only PDF files are allowed"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		s.fail(w, errors.Wrap(err, "read upload"))
		return
	}
	if int64(len(data)) > maxBytes {
		s.fail(w, NewInvalidRequestError("file exceeds size limit of %d bytes", maxBytes))
		return
	}

	pageCount, err := pdfpage.Count(data)
	if err != nil {
		s.fail(w, errors.Wrap(ErrUnsupportedFile, err.Error()))
		return
	}

	originalName := filepath.Base(header.Filename)
	storedName := uuid.NewString()[:8] + "_" + sanitizeFilename(originalName)
	if err := os.MkdirAll(s.cfg.Uploads.Dir, 0o755); err != nil {
		s.fail(w, errors.Wrap(err, "create upload dir"))
		return
	}
	if err := os.WriteFile(filepath.Join(s.cfg.Uploads.Dir, storedName), data, 0o644); err != nil {
		s.fail(w, errors.Wrap(err, "write upload"))
		return
	}

	d := &store.Drawing{
		ProjectID:    projectID,
		Filename:     storedName,
		OriginalName: originalName,
		Title:        strings.TrimSuffix(originalName, filepath.Ext(originalName)),
		PageCount:    pageCount,
	}
	if err := s.store.CreateDrawing(d); err != nil {
		s.fail(w, err)
		return
	}
	s.publish(Event{Type: "change", Entity: "drawing", Action: "created", ID: d.ID, ProjectID: projectID})
	writeJSON(w, http.StatusCreated, d)
}

// HandleDrawing reads or deletes one drawing. Deleting removes the
// stored file as well.
func (s *GdtServer) HandleDrawing(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err)
		return
	}
	d, err := s.store.GetDrawing(id)
	if err != nil {
		s.fail(w, err)
		return
	}

	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, d)
		return
	}

	if err := s.store.DeleteDrawing(id); err != nil {
		s.fail(w, err)
		return
	}
	if err := os.Remove(filepath.Join(s.cfg.Uploads.Dir, d.Filename)); err != nil && !os.IsNotExist(err) {
		s.logger.Warnw("Failed to delete stored drawing file", "filename", d.Filename, "error", err.Error())
	}
	s.publish(Event{Type: "change", Entity: "drawing", Action: "deleted", ID: id, ProjectID: d.ProjectID})
	w.WriteHeader(http.StatusNoContent)
}

// HandleUploadedFile serves a stored drawing by its stored name.
func (s *GdtServer) HandleUploadedFile(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet) {
		return
	}
	name := sanitizeFilename(r.PathValue("name"))
	if name == "" {
		s.fail(w, NewInvalidRequestError("bad file name"))
		return
	}
	http.ServeFile(w, r, filepath.Join(s.cfg.Uploads.Dir, name))
}

// sanitizeFilename strips path separators so stored names cannot
// escape the upload directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '.', c == '-', c == '_':
			b.WriteRune(c)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

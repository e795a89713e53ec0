package server

import (
	"net/http"
	"strings"
)

// routes builds the full HTTP handler tree.
func (s *GdtServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.corsMiddleware(s.HandleHealth))
	mux.HandleFunc("/ws", s.corsMiddleware(s.HandleWebSocket))

	mux.HandleFunc("/api/projects", s.corsMiddleware(s.HandleProjects))
	mux.HandleFunc("/api/projects/{id}", s.corsMiddleware(s.HandleProject))
	mux.HandleFunc("/api/projects/{id}/requirements", s.corsMiddleware(s.HandleProjectRequirements))
	mux.HandleFunc("/api/projects/{id}/insights", s.corsMiddleware(s.HandleProjectInsights))
	mux.HandleFunc("/api/projects/{id}/drawings", s.corsMiddleware(s.HandleProjectDrawings))
	mux.HandleFunc("/api/projects/{id}/export.csv", s.corsMiddleware(s.HandleProjectExportCSV))

	mux.HandleFunc("/api/requirements/{id}", s.corsMiddleware(s.HandleRequirement))
	mux.HandleFunc("/api/requirements/{id}/explain", s.corsMiddleware(s.HandleRequirementExplain))
	mux.HandleFunc("/api/fcf/preview", s.corsMiddleware(s.HandleFCFPreview))
	mux.HandleFunc("/api/symbols", s.corsMiddleware(s.HandleSymbols))
	mux.HandleFunc("/api/search", s.corsMiddleware(s.HandleSearch))

	mux.HandleFunc("/api/drawings/{id}", s.corsMiddleware(s.HandleDrawing))
	mux.HandleFunc("/api/drawings/{id}/annotations", s.corsMiddleware(s.HandleDrawingAnnotations))
	mux.HandleFunc("/api/annotations/{id}", s.corsMiddleware(s.HandleAnnotation))
	mux.HandleFunc("/api/annotations/hit", s.corsMiddleware(s.HandleAnnotationHit))

	mux.HandleFunc("/uploads/{name}", s.corsMiddleware(s.HandleUploadedFile))

	return mux
}

// corsMiddleware adds CORS headers using the configured allowed origins
// and answers preflight requests.
func (s *GdtServer) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// originAllowed checks an Origin header against the configured list.
// Prefix matching lets one entry cover any port on a host.
func (s *GdtServer) originAllowed(origin string) bool {
	allowed := s.cfg.Server.AllowedOrigins
	if len(allowed) == 0 {
		return strings.HasPrefix(origin, "http://localhost") ||
			strings.HasPrefix(origin, "https://localhost")
	}
	for _, a := range allowed {
		if strings.HasPrefix(origin, a) {
			return true
		}
	}
	return false
}

// HandleHealth reports liveness plus entity totals for the dashboard.
func (s *GdtServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet) {
		return
	}
	totals, err := s.store.ProjectTotals()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"totals": totals,
	})
}

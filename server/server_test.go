package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calibrant/gdtbench/config"
	"github.com/calibrant/gdtbench/store"
	"github.com/calibrant/gdtbench/store/testutil"
)

func newTestServer(t *testing.T) (*GdtServer, *httptest.Server) {
	t.Helper()

	st := store.New(testutil.SetupTestDB(t), nil)
	cfg := &config.Config{
		Database: config.DatabaseConfig{Path: ":memory:"},
		Server:   config.ServerConfig{Port: 0},
		Uploads: config.UploadConfig{
			Dir:           t.TempDir(),
			MaxBytes:      1 << 20,
			RatePerMinute: 100,
		},
	}
	s := NewServer(st, cfg, zap.NewNop().Sugar())
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createProject(t *testing.T, ts *httptest.Server) map[string]any {
	t.Helper()
	var p map[string]any
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/projects", map[string]any{
		"title": "Gearbox Bracket",
		"units": "mm",
	}, &p)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return p
}

func createRequirement(t *testing.T, ts *httptest.Server, projectID float64, body map[string]any) map[string]any {
	t.Helper()
	var r map[string]any
	url := fmt.Sprintf("%s/api/projects/%.0f/requirements", ts.URL, projectID)
	resp := doJSON(t, http.MethodPost, url, body, &r)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return r
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	var out map[string]any
	resp := doJSON(t, http.MethodGet, ts.URL+"/health", nil, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out["status"])
}

func TestProjectLifecycle(t *testing.T) {
	_, ts := newTestServer(t)

	p := createProject(t, ts)
	id := p["id"].(float64)

	var got map[string]any
	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/projects/%.0f", ts.URL, id), nil, &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Gearbox Bracket", got["title"])

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/projects/%.0f", ts.URL, id), nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/projects/%.0f", ts.URL, id), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateProjectValidation(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/projects", map[string]any{"title": "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/projects", map[string]any{"title": "X", "units": "furlong"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequirementCreateEncodesFCF(t *testing.T) {
	_, ts := newTestServer(t)
	p := createProject(t, ts)

	r := createRequirement(t, ts, p["id"].(float64), map[string]any{
		"title":              "Hole pattern",
		"symbol_key":         "position",
		"tolerance_value":    "0.2",
		"tolerance_unit":     "mm",
		"diameter_modifier":  true,
		"material_condition": "MMC",
		"datum_refs":         []string{"A", "B"},
	})
	assert.Equal(t, "⟂⦿ | ⌀0.2 mm | Ⓜ | A | B", r["fcf_text"])
}

func TestRequirementValidation(t *testing.T) {
	_, ts := newTestServer(t)
	p := createProject(t, ts)
	url := fmt.Sprintf("%s/api/projects/%.0f/requirements", ts.URL, p["id"].(float64))

	// Position without a datum is rejected at the door.
	resp := doJSON(t, http.MethodPost, url, map[string]any{
		"title":      "Floating position",
		"symbol_key": "position",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, url, map[string]any{
		"title":      "Bad symbol",
		"symbol_key": "wobble",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExplainEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	p := createProject(t, ts)
	r := createRequirement(t, ts, p["id"].(float64), map[string]any{
		"title":           "Pad flatness",
		"symbol_key":      "flatness",
		"tolerance_value": "0.05",
		"tolerance_unit":  "mm",
	})

	var out map[string]any
	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/requirements/%.0f/explain", ts.URL, r["id"].(float64)), nil, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, out["explanation"], "Tolerance: 0.05 mm.")
}

func TestFCFPreview(t *testing.T) {
	_, ts := newTestServer(t)

	var out map[string]any
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/fcf/preview", map[string]any{
		"symbol_key":        "position",
		"tolerance_value":   "0.2",
		"tolerance_unit":    "mm",
		"diameter_modifier": true,
		"datum_refs":        []string{"A"},
	}, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "⟂⦿ | ⌀0.2 mm | A", out["fcf_text"])
	assert.NotEmpty(t, out["explanation"])
}

func TestInsightsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	p := createProject(t, ts)
	createRequirement(t, ts, p["id"].(float64), map[string]any{
		"title":      "Old school",
		"symbol_key": "symmetry",
	})
	createRequirement(t, ts, p["id"].(float64), map[string]any{
		"title":      "Bore runout",
		"symbol_key": "circular_runout",
		"datum_refs": []string{"A"},
	})

	var out struct {
		ProjectID int64 `json:"project_id"`
		Findings  []struct {
			Code string `json:"code"`
		} `json:"findings"`
	}
	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/projects/%.0f/insights", ts.URL, p["id"].(float64)), nil, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	codes := make([]string, 0, len(out.Findings))
	for _, f := range out.Findings {
		codes = append(codes, f.Code)
	}
	assert.Contains(t, codes, "legacy_control")
	assert.Contains(t, codes, "missing_tolerance")
}

func TestSymbolsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	var out []map[string]any
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/symbols", nil, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, out, 14)
}

func TestSearchEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	p := createProject(t, ts)
	createRequirement(t, ts, p["id"].(float64), map[string]any{
		"title":           "Pad flatness",
		"symbol_key":      "flatness",
		"tolerance_value": "0.05",
	})

	var out []map[string]any
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/search?symbol=flatness", nil, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, out, 1)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/search?symbol=wobble", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func minimalPDF(pages int) []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n2 0 obj\n<< /Type /Pages /Kids [] >>\nendobj\n")
	for i := 0; i < pages; i++ {
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R >>\nendobj\n", i+3)
	}
	b.WriteString("%%EOF\n")
	return b.Bytes()
}

func uploadDrawing(t *testing.T, ts *httptest.Server, projectID float64, filename string, data []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	url := fmt.Sprintf("%s/api/projects/%.0f/drawings", ts.URL, projectID)
	req, err := http.NewRequest(http.MethodPost, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestDrawingUpload(t *testing.T) {
	_, ts := newTestServer(t)
	p := createProject(t, ts)
	id := p["id"].(float64)

	resp := uploadDrawing(t, ts, id, "bracket.pdf", minimalPDF(3))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var d map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	assert.Equal(t, float64(3), d["page_count"])
	assert.Equal(t, "bracket.pdf", d["original_name"])
	assert.Equal(t, "bracket", d["title"])
	stored := d["filename"].(string)
	assert.True(t, strings.HasSuffix(stored, "_bracket.pdf"), "stored name %q should keep the original suffix", stored)
	assert.NotEqual(t, "bracket.pdf", stored)
}

func TestDrawingUploadRejectsNonPDF(t *testing.T) {
	_, ts := newTestServer(t)
	p := createProject(t, ts)
	id := p["id"].(float64)

	resp := uploadDrawing(t, ts, id, "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Right extension, wrong magic bytes.
	resp = uploadDrawing(t, ts, id, "fake.pdf", []byte("GIF89a not a pdf"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnnotationHit(t *testing.T) {
	_, ts := newTestServer(t)
	p := createProject(t, ts)
	id := p["id"].(float64)

	r := createRequirement(t, ts, id, map[string]any{
		"title":             "Hole pattern",
		"symbol_key":        "position",
		"tolerance_value":   "0.2",
		"diameter_modifier": true,
		"datum_refs":        []string{"A"},
	})

	resp := uploadDrawing(t, ts, id, "sheet.pdf", minimalPDF(2))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var d map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	drawingID := d["id"].(float64)

	annURL := fmt.Sprintf("%s/api/drawings/%.0f/annotations", ts.URL, drawingID)
	var a map[string]any
	annResp := doJSON(t, http.MethodPost, annURL, map[string]any{
		"requirement_id": r["id"],
		"page_index":     0,
		"kind":           "box",
		"coords":         map[string]float64{"x": 0.4, "y": 0.4, "w": 0.2, "h": 0.2},
	}, &a)
	require.Equal(t, http.StatusCreated, annResp.StatusCode)

	var hit map[string]any
	hitURL := fmt.Sprintf("%s/api/annotations/hit?drawing_id=%.0f&page_index=0&x=0.5&y=0.5", ts.URL, drawingID)
	resp = doJSON(t, http.MethodGet, hitURL, nil, &hit)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, hit["hit"])
	assert.Equal(t, a["id"], hit["annotation_id"])
	assert.Equal(t, r["id"], hit["requirement_id"])

	missURL := fmt.Sprintf("%s/api/annotations/hit?drawing_id=%.0f&page_index=0&x=0.9&y=0.9", ts.URL, drawingID)
	resp = doJSON(t, http.MethodGet, missURL, nil, &hit)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, hit["hit"])
}

func TestAnnotationValidation(t *testing.T) {
	_, ts := newTestServer(t)
	p := createProject(t, ts)
	id := p["id"].(float64)

	r := createRequirement(t, ts, id, map[string]any{
		"title":           "Flat pad",
		"symbol_key":      "flatness",
		"tolerance_value": "0.05",
	})

	resp := uploadDrawing(t, ts, id, "sheet.pdf", minimalPDF(1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var d map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	annURL := fmt.Sprintf("%s/api/drawings/%.0f/annotations", ts.URL, d["id"].(float64))

	// Page beyond the drawing.
	annResp := doJSON(t, http.MethodPost, annURL, map[string]any{
		"requirement_id": r["id"],
		"page_index":     5,
		"kind":           "box",
		"coords":         map[string]float64{"x": 0, "y": 0, "w": 1, "h": 1},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, annResp.StatusCode)

	// Unknown kind.
	annResp = doJSON(t, http.MethodPost, annURL, map[string]any{
		"requirement_id": r["id"],
		"page_index":     0,
		"kind":           "circle",
		"coords":         map[string]float64{"x": 0, "y": 0},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, annResp.StatusCode)

	// Bad color.
	annResp = doJSON(t, http.MethodPost, annURL, map[string]any{
		"requirement_id": r["id"],
		"page_index":     0,
		"kind":           "box",
		"coords":         map[string]float64{"x": 0, "y": 0, "w": 1, "h": 1},
		"color_hex":      "red",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, annResp.StatusCode)
}

func TestExportCSV(t *testing.T) {
	_, ts := newTestServer(t)
	p := createProject(t, ts)
	id := p["id"].(float64)
	createRequirement(t, ts, id, map[string]any{
		"title":              "Hole pattern",
		"symbol_key":         "position",
		"tolerance_value":    "0.20",
		"tolerance_unit":     "mm",
		"diameter_modifier":  true,
		"material_condition": "MMC",
		"datum_refs":         []string{"A", "B"},
	})

	resp, err := http.Get(fmt.Sprintf("%s/api/projects/%.0f/export.csv", ts.URL, id))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	body := buf.String()

	assert.Contains(t, body, "id,title,feature,symbol,fcf,tol_value,tol_unit,diameter,material,datums,zone,notes,linked_pages")
	assert.Contains(t, body, "Hole pattern")
	assert.Contains(t, body, "0.20")
	assert.Contains(t, body, "A|B")
}

func TestWebSocketChangeFeed(t *testing.T) {
	s, ts := newTestServer(t)
	s.startHub()
	t.Cleanup(func() { s.cancel() })

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration goes through the hub goroutine.
	time.Sleep(50 * time.Millisecond)

	createProject(t, ts)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "change", ev.Type)
	assert.Equal(t, "project", ev.Entity)
	assert.Equal(t, "created", ev.Action)
}

func TestRateWindow(t *testing.T) {
	rw := newRateWindow(2, time.Minute)
	now := time.Unix(1000, 0)
	rw.now = func() time.Time { return now }

	assert.True(t, rw.Allow())
	assert.True(t, rw.Allow())
	assert.False(t, rw.Allow())

	now = now.Add(2 * time.Minute)
	assert.True(t, rw.Allow())
}

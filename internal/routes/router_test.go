package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster-crm/internal/handlers"
	"roster-crm/internal/ingest"
	"roster-crm/internal/service"
	"roster-crm/internal/workbook"
	"roster-crm/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := service.NewRegistry(ingest.New(ingest.WithLogger(logger)), service.WithLogger(logger))
	return SetupRoutes(handlers.NewRosterHandler(reg, 1<<20))
}

func do(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, r http.Handler, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return do(r, http.MethodPost, "/api/workbooks", &body, mw.FormDataContentType())
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func sampleWorkbook(t *testing.T) []byte {
	t.Helper()
	buf, err := workbook.Encode(workbook.Sheet{Name: "G3", Rows: workbook.Grid{
		{"Class/Level/Time", "Name "},
		{"3A\nStars", "Anna 이영희"},
		{"3R\nMoon", "Bo 박지민"},
		{"3R\nMoon"},
	}})
	require.NoError(t, err)
	return buf.Bytes()
}

func TestHealthz(t *testing.T) {
	w := do(newTestServer(t), http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunsDisabled(t *testing.T) {
	w := do(newTestServer(t), http.MethodGet, "/api/runs", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type fakeRuns struct{ limit int }

func (f *fakeRuns) RecentRuns(_ context.Context, limit int) ([]models.IngestionRunRecord, error) {
	f.limit = limit
	return []models.IngestionRunRecord{{RunID: "run-1", Accepted: 4}}, nil
}

func TestRunsListed(t *testing.T) {
	reg := service.NewRegistry(ingest.New())
	h := handlers.NewRosterHandler(reg, 0)
	runs := &fakeRuns{}
	h.Runs = runs

	w := do(SetupRoutes(h), http.MethodGet, "/api/runs?limit=500", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, handlers.DefaultPageSize, runs.limit)
	assert.Contains(t, w.Body.String(), "run-1")
}

func TestUploadWorkbook(t *testing.T) {
	r := newTestServer(t)

	w := upload(t, r, "roster.xlsx", sampleWorkbook(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Source       string   `json:"source"`
		RunID        string   `json:"runId"`
		Grades       []string `json:"gradesList"`
		AcceptedRows int      `json:"acceptedRows"`
		SkippedRows  int      `json:"skippedRows"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "workbook", resp.Source)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, []string{"3"}, resp.Grades)
	assert.Equal(t, 2, resp.AcceptedRows)
	assert.Equal(t, 1, resp.SkippedRows)

	w = do(r, http.MethodGet, "/api/report", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadRejectsNonExcel(t *testing.T) {
	w := upload(t, newTestServer(t), "roster.csv", []byte("a,b"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please upload an Excel file")

	w = do(newTestServer(t), http.MethodPost, "/api/workbooks", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadBrokenFileLoadsDemo(t *testing.T) {
	r := newTestServer(t)
	w := upload(t, r, "roster.xlsx", []byte("not really excel"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Source  string `json:"source"`
		Warning string `json:"warning"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "demo", resp.Source)
	assert.True(t, strings.HasPrefix(resp.Warning, service.DemoWarning))

	w = do(r, http.MethodGet, "/api/report", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBrowseEndpoints(t *testing.T) {
	r := newTestServer(t)
	require.Equal(t, http.StatusOK, upload(t, r, "roster.xlsx", sampleWorkbook(t)).Code)

	w := do(r, http.MethodGet, "/api/grades", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var grades []struct {
		Grade        string `json:"grade"`
		ClassCount   int    `json:"classCount"`
		StudentCount int    `json:"studentCount"`
	}
	decode(t, w, &grades)
	require.Len(t, grades, 1)
	assert.Equal(t, 2, grades[0].ClassCount)
	assert.Equal(t, 2, grades[0].StudentCount)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/grades/3", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/grades/9", nil, "").Code)

	w = do(r, http.MethodGet, "/api/classes?pageSize=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var page handlers.PaginatedResponse
	decode(t, w, &page)
	assert.EqualValues(t, 2, page.TotalRows)
	assert.Equal(t, 2, page.TotalPages)

	w = do(r, http.MethodGet, "/api/classes/"+url.PathEscape("3A Stars"), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var class struct {
		ID     string `json:"id"`
		Roster []struct {
			ID string `json:"id"`
		} `json:"roster"`
	}
	decode(t, w, &class)
	assert.Equal(t, "3A Stars", class.ID)
	require.Len(t, class.Roster, 1)
	assert.Equal(t, "Anna-이영희", class.Roster[0].ID)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/classes/nope", nil, "").Code)

	w = do(r, http.MethodGet, "/api/students?all=true&search=bo", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var students []struct {
		ID string `json:"id"`
	}
	decode(t, w, &students)
	require.Len(t, students, 1)
	assert.Equal(t, "Bo-박지민", students[0].ID)

	w = do(r, http.MethodGet, "/api/students/"+url.PathEscape("Bo-박지민"), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAddComment(t *testing.T) {
	r := newTestServer(t)
	require.Equal(t, http.StatusOK, upload(t, r, "roster.xlsx", sampleWorkbook(t)).Code)
	path := "/api/comments/students/" + url.PathEscape("Anna-이영희")

	w := do(r, http.MethodPost, path, strings.NewReader(`{"text":"met parents"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Kind    string `json:"kind"`
		Comment string `json:"comment"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "student", resp.Kind)
	assert.True(t, strings.HasSuffix(resp.Comment, ": met parents"))

	w = do(r, http.MethodPost, path, strings.NewReader(`{"text":"   "}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(r, http.MethodPost, path, strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(r, http.MethodPost, "/api/comments/teachers/x", strings.NewReader(`{"text":"hi"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportImport(t *testing.T) {
	src := newTestServer(t)
	require.Equal(t, http.StatusOK, do(src, http.MethodPost, "/api/demo", nil, "").Code)

	w := do(src, http.MethodGet, "/api/export", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "student-management-data.json")
	exported := w.Body.Bytes()

	dst := newTestServer(t)
	w = do(dst, http.MethodPost, "/api/import", bytes.NewReader(exported), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Source string `json:"source"`
		Stats  struct {
			TotalStudents int `json:"totalStudents"`
		} `json:"stats"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "snapshot", resp.Source)
	assert.Equal(t, 220, resp.Stats.TotalStudents)

	w = do(dst, http.MethodPost, "/api/import", strings.NewReader(`{"comments":{}}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid import file format")

	w = do(dst, http.MethodGet, "/api/export/xlsx", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	wb, err := workbook.ReadBytes(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"Summary", "Classes", "Students"}, wb.SheetNames())
}

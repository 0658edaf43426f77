// roster-crm/internal/handlers/roster_handler.go
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"roster-crm/internal/ingest"
	"roster-crm/internal/service"
	"roster-crm/models"
)

// RunLister lists stored ingestion runs.
type RunLister interface {
	RecentRuns(ctx context.Context, limit int) ([]models.IngestionRunRecord, error)
}

// RosterHandler serves the roster registry over HTTP. Runs is optional.
type RosterHandler struct {
	Registry  *service.Registry
	Runs      RunLister
	MaxUpload int64
}

// NewRosterHandler creates a new RosterHandler.
func NewRosterHandler(reg *service.Registry, maxUpload int64) *RosterHandler {
	return &RosterHandler{Registry: reg, MaxUpload: maxUpload}
}

type uploadResponse struct {
	Source        service.Source       `json:"source"`
	Warning       string               `json:"warning,omitempty"`
	RunID         string               `json:"runId,omitempty"`
	Stats         interface{}          `json:"stats"`
	Grades        []string             `json:"gradesList"`
	AcceptedRows  int                  `json:"acceptedRows"`
	SkippedRows   int                  `json:"skippedRows"`
	SkippedSheets int                  `json:"skippedSheets"`
	SchemaIssues  []ingest.SchemaIssue `json:"schemaIssues,omitempty"`
}

// UploadWorkbookHandler ingests an uploaded Excel file.
func (h *RosterHandler) UploadWorkbookHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload an Excel file (.xlsx or .xls)"})
		return
	}
	if h.MaxUpload > 0 && file.Size > h.MaxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer src.Close()

	st, err := h.Registry.Upload(c.Request.Context(), src)
	if err != nil {
		slog.Error("Workbook upload failed", "error", err, "file", file.Filename)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error uploading file: " + err.Error()})
		return
	}

	resp := uploadResponse{
		Source:  st.Source,
		Warning: st.Warning,
		Stats:   st.View.Stats,
		Grades:  st.View.Grades,
	}
	if st.Report != nil {
		resp.RunID = st.Report.RunID
		resp.AcceptedRows, resp.SkippedRows, resp.SkippedSheets = st.Report.Counts()
		resp.SchemaIssues = st.Report.SchemaIssues()
	}
	slog.Info("Workbook uploaded", "file", file.Filename, "source", st.Source,
		"students", st.View.Stats.TotalStudents, "classes", st.View.Stats.TotalClasses)
	c.JSON(http.StatusOK, resp)
}

// LoadDemoHandler switches the roster to the demonstration dataset.
func (h *RosterHandler) LoadDemoHandler(c *gin.Context) {
	st := h.Registry.LoadDemo(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"source": st.Source, "warning": st.Warning, "stats": st.View.Stats})
}

// DashboardHandler returns the summary counters.
func (h *RosterHandler) DashboardHandler(c *gin.Context) {
	st := h.Registry.Current()
	c.JSON(http.StatusOK, gin.H{
		"source":     st.Source,
		"warning":    st.Warning,
		"loadedAt":   st.LoadedAt.Format(time.RFC3339),
		"stats":      st.View.Stats,
		"gradesList": st.View.Grades,
	})
}

type gradeSummary struct {
	Grade        string `json:"grade"`
	ClassCount   int    `json:"classCount"`
	StudentCount int    `json:"studentCount"`
}

// ListGradesHandler lists the grade buckets in display order.
func (h *RosterHandler) ListGradesHandler(c *gin.Context) {
	v := h.Registry.Current().View
	grades := make([]gradeSummary, 0, len(v.Grades))
	for _, g := range v.Grades {
		grades = append(grades, gradeSummary{
			Grade:        g,
			ClassCount:   len(v.ClassesByGrade[g]),
			StudentCount: len(v.StudentsByGrade[g]),
		})
	}
	c.JSON(http.StatusOK, grades)
}

// GetGradeHandler returns the classes and students of one grade.
func (h *RosterHandler) GetGradeHandler(c *gin.Context) {
	grade := c.Param("grade")
	v := h.Registry.Current().View
	classes, hasClasses := v.ClassesByGrade[grade]
	students, hasStudents := v.StudentsByGrade[grade]
	if !hasClasses && !hasStudents {
		c.JSON(http.StatusNotFound, gin.H{"error": "Grade not found"})
		return
	}
	if classes == nil {
		classes = make([]models.Class, 0)
	}
	if students == nil {
		students = make([]models.Student, 0)
	}
	c.JSON(http.StatusOK, gin.H{"grade": grade, "classes": classes, "students": students})
}

// ListClassesHandler returns classes, paginated unless `?all=true`.
func (h *RosterHandler) ListClassesHandler(c *gin.Context) {
	classes := h.Registry.Classes()
	if c.Query("all") == "true" {
		c.JSON(http.StatusOK, classes)
		return
	}
	c.JSON(http.StatusOK, Paginate(c, classes))
}

// GetClassHandler returns one class with its roster and comment.
func (h *RosterHandler) GetClassHandler(c *gin.Context) {
	d, ok := h.Registry.Class(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}

// ListStudentsHandler searches students by name and class.
func (h *RosterHandler) ListStudentsHandler(c *gin.Context) {
	students := h.Registry.Search(c.Query("search"), c.Query("class"))
	if c.Query("all") == "true" {
		c.JSON(http.StatusOK, students)
		return
	}
	c.JSON(http.StatusOK, Paginate(c, students))
}

// GetStudentHandler returns one student with their classes and comment.
func (h *RosterHandler) GetStudentHandler(c *gin.Context) {
	d, ok := h.Registry.Student(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}

type commentInput struct {
	Text string `json:"text" binding:"required"`
}

// AddCommentHandler appends a comment line to a class or student.
func (h *RosterHandler) AddCommentHandler(c *gin.Context) {
	var input commentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data: " + err.Error()})
		return
	}
	kind := commentKind(c.Param("kind"))
	id := c.Param("id")

	text, err := h.Registry.ApplyComment(c.Request.Context(), kind, id, input.Text)
	switch {
	case errors.Is(err, service.ErrUnknownKind), errors.Is(err, service.ErrEmptyComment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save comment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "id": id, "comment": text})
}

// GetReportHandler returns the trace of the last workbook ingestion.
func (h *RosterHandler) GetReportHandler(c *gin.Context) {
	st := h.Registry.Current()
	if st.Report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No workbook has been ingested yet"})
		return
	}
	c.JSON(http.StatusOK, st.Report)
}

// ListRunsHandler returns the latest stored ingestion runs.
func (h *RosterHandler) ListRunsHandler(c *gin.Context) {
	if h.Runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run history is not enabled"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	runs, err := h.Runs.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Failed to load ingestion runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ingestion runs"})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// commentKind accepts both singular and plural path segments.
func commentKind(param string) models.CommentKind {
	switch param {
	case "class", "classes":
		return models.CommentClass
	case "student", "students":
		return models.CommentStudent
	}
	return models.CommentKind(param)
}

// roster-crm/internal/handlers/transfer_handler.go
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roster-crm/internal/service"
	"roster-crm/internal/workbook"
	"roster-crm/models"
)

// ExportJSONHandler downloads the whole database, comments included.
func (h *RosterHandler) ExportJSONHandler(c *gin.Context) {
	db := h.Registry.Export()
	c.Header("Content-Disposition", "attachment; filename=student-management-data.json")
	c.JSON(http.StatusOK, db)
}

// ImportJSONHandler replaces the database with an exported snapshot.
func (h *RosterHandler) ImportJSONHandler(c *gin.Context) {
	var db models.Database
	if err := c.ShouldBindJSON(&db); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to import data: " + err.Error()})
		return
	}
	st, err := h.Registry.Replace(c.Request.Context(), db)
	if errors.Is(err, service.ErrInvalidSnapshot) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid import file format"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": st.Source, "stats": st.View.Stats, "gradesList": st.View.Grades})
}

// ExportXLSXHandler downloads the roster as an Excel workbook.
func (h *RosterHandler) ExportXLSXHandler(c *gin.Context) {
	st := h.Registry.Current()
	buf, err := workbook.Export(st.Database, st.View)
	if err != nil {
		slog.Error("Failed to build roster workbook", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
		return
	}

	fileName := fmt.Sprintf("roster_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

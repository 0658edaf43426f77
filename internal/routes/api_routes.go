// roster-crm/internal/routes/api_routes.go
package routes

import (
	"roster-crm/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes registers the roster API under /api.
func RegisterAPIRoutes(r gin.IRouter, h *handlers.RosterHandler) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/dashboard", h.DashboardHandler)
		apiGroup.GET("/report", h.GetReportHandler)
		apiGroup.GET("/runs", h.ListRunsHandler)

		// --- WORKBOOKS ---
		apiGroup.POST("/workbooks", h.UploadWorkbookHandler)
		apiGroup.POST("/demo", h.LoadDemoHandler)

		// --- GRADES ---
		grades := apiGroup.Group("/grades")
		{
			grades.GET("", h.ListGradesHandler)
			grades.GET("/:grade", h.GetGradeHandler)
		}

		// --- CLASSES ---
		classes := apiGroup.Group("/classes")
		{
			classes.GET("", h.ListClassesHandler)
			classes.GET("/:id", h.GetClassHandler)
		}

		// --- STUDENTS ---
		students := apiGroup.Group("/students")
		{
			students.GET("", h.ListStudentsHandler)
			students.GET("/:id", h.GetStudentHandler)
		}

		apiGroup.POST("/comments/:kind/:id", h.AddCommentHandler)

		// --- IMPORT / EXPORT ---
		apiGroup.GET("/export", h.ExportJSONHandler)
		apiGroup.GET("/export/xlsx", h.ExportXLSXHandler)
		apiGroup.POST("/import", h.ImportJSONHandler)
	}
}

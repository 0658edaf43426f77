package routes

import (
	"net/http"

	"roster-crm/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the engine with every route of the application.
func SetupRoutes(h *handlers.RosterHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if h.MaxUpload > 0 {
		r.MaxMultipartMemory = h.MaxUpload
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	RegisterAPIRoutes(r, h)
	return r
}

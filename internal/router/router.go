package router

import (
	"github.com/gin-gonic/gin"

	"meibo/internal/handler"
	"meibo/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	batchH *handler.BatchHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Batch routes
	batches := v1.Group("/batches")
	batches.POST("", batchH.Create)
	batches.GET("", batchH.History)
	batches.GET("/:id/audit", batchH.Audit)
	batches.GET("/:id", batchH.Get)
	batches.POST("/:id/review", batchH.Review)
	batches.GET("/:id/export/csv", batchH.ExportCSV)
	batches.GET("/:id/export/xlsx", batchH.ExportXLSX)

	return r
}

package router

import (
	"github.com/gin-gonic/gin"

	"entrygate/internal/handler"
	"entrygate/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	verifier *middleware.TokenVerifier,
	allowedOrigins []string,
	entryH *handler.EntryHandler,
	submissionH *handler.SubmissionHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger("/healthz", "/readyz"))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(verifier))

	entries := v1.Group("/entries")
	entries.POST("/draft", entryH.Draft)
	entries.POST("/submit", entryH.Submit)
	entries.POST("/promote", entryH.Promote)
	entries.POST("/xml", entryH.XML)
	entries.POST("/lines.csv", entryH.LinesCSV)

	submissions := v1.Group("/submissions")
	submissions.GET("", submissionH.List)
	submissions.GET("/:id", submissionH.GetByID)

	return r
}

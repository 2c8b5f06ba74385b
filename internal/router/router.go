package router

import (
	"github.com/gin-gonic/gin"

	"ledgerd/internal/handler"
	"ledgerd/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	documentH *handler.DocumentHandler,
	importH *handler.ImportHandler,
	transactionH *handler.TransactionHandler,
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
	v1.Use(middleware.RequireUser())

	documents := v1.Group("/documents")
	documents.POST("", documentH.Upload)
	documents.GET("", documentH.List)
	documents.GET("/:id", documentH.GetByID)

	imports := v1.Group("/imports")
	imports.GET("/:id", importH.GetByID)
	imports.POST("/:id/commit", importH.Commit)

	transactions := v1.Group("/transactions")
	transactions.GET("", transactionH.List)
	transactions.GET("/export", transactionH.Export)

	return r
}

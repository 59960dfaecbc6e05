package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"deedcheck/internal/handler"
	"deedcheck/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware. A nil
// logger disables request logging.
func Setup(
	log *zap.Logger,
	allowedOrigins []string,
	deedH *handler.DeedHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks and metrics
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	deeds := v1.Group("/deeds")
	deeds.POST("/validate", deedH.Validate)
	deeds.POST("/extract", deedH.Extract)
	deeds.POST("/batch", deedH.Batch)

	runs := v1.Group("/runs")
	runs.GET("", deedH.ListRuns)
	runs.GET("/:id", deedH.GetRun)

	return r
}

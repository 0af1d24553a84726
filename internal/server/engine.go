package server

import (
	"log/slog"
	"net/http"

	"github.com/dhis2-sre/im-remote-cluster/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redocMiddleware "github.com/go-openapi/runtime/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "im-remote-cluster"

// GetEngine creates a Gin engine with the middlewares every route needs. The health and
// documentation routes are registered below basePath. Register other routes on a group of
// basePath.
func GetEngine(logger *slog.Logger, basePath string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("authorization", "X-Correlation-ID")
	corsConfig.AddExposeHeaders("X-Correlation-ID")
	r.Use(cors.New(corsConfig))

	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.ErrorHandler())

	router := r.Group(basePath)

	redoc(router, basePath)

	router.GET("/health", health)

	return r
}

func health(c *gin.Context) {
	// swagger:route GET /health health
	//
	// Service health
	//
	// Show service health
	//
	// Responses:
	//   200: Health
	c.JSON(http.StatusOK, gin.H{"status": "up"})
}

func redoc(router *gin.RouterGroup, basePath string) {
	router.StaticFile("/swagger.yaml", "./swagger/swagger.yaml")

	redocOpts := redocMiddleware.RedocOpts{
		BasePath: basePath,
		SpecURL:  "./swagger.yaml",
		Title:    "Remote Cluster Manager",
	}
	router.GET("/docs", func(c *gin.Context) {
		redocHandler := redocMiddleware.Redoc(redocOpts, nil)
		redocHandler.ServeHTTP(c.Writer, c.Request)
	})
}

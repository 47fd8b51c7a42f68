package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"taskboard/internal/transport/http/handler"
	"taskboard/internal/transport/http/middleware"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, taskHandler *handler.TaskHandler, verifier middleware.TokenVerifier, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Task Management API is running!",
			"version": "1.0.0",
			"endpoints": gin.H{
				"auth":  "/api/auth",
				"tasks": "/api/tasks",
			},
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	authMW := middleware.Auth(verifier)

	auth := r.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authMW, authHandler.Me)

	// The static stats route is registered before the parameterized one
	// so "stats" is never captured as a task ID.
	tasks := r.Group("/api/tasks", authMW)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/stats/overview", taskHandler.Stats)
	tasks.GET("/:id", taskHandler.GetByID)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	return r
}

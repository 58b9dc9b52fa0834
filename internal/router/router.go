package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/oncall-dev/oncall/internal/handlers"
	"github.com/oncall-dev/oncall/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", handlers.WebSocket)

		api.GET("/teams", handlers.GetTeams)
		api.GET("/mostincidents", handlers.GetMostIncidents)

		api.POST("/incidents/:team_id", handlers.QueryIncidents)

		incident := api.Group("/incident/:incident_id")
		{
			incident.POST("/annotation", handlers.UpsertAnnotation)
			incident.PUT("/annotation", handlers.UpsertAnnotation)
			incident.DELETE("/annotation", handlers.DeleteAnnotation)
			incident.POST("/actionable", handlers.SetActionable)
		}
	}

	return r
}

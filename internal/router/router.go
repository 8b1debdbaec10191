package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/backend/internal/api"
	"github.com/pulsefeed/backend/internal/database"
	"github.com/pulsefeed/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	db *gorm.DB,
	authHandler *api.AuthHandler,
	profileHandler *api.ProfileHandler,
	postHandler *api.PostHandler,
	imageHandler *api.ImageHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)
	profileHandler.RegisterRoutes(v1)
	postHandler.RegisterRoutes(v1)
	imageHandler.RegisterRoutes(v1)

	return router
}

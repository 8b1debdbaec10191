package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pulsefeed/backend/config"
	"github.com/pulsefeed/backend/internal/api"
	"github.com/pulsefeed/backend/internal/middleware"
	"github.com/pulsefeed/backend/internal/router"
	"github.com/pulsefeed/backend/internal/service"
)

// Server wires the services and handlers into a runnable HTTP server.
type Server struct {
	engine *gin.Engine
	http   *http.Server
}

// NewServer builds the full application. redisClient and s3Config may
// be nil; rate limiting and S3 storage degrade gracefully without them.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, s3Config *config.S3Config) *Server {
	emailService := service.NewEmailService()
	authService := service.NewAuthService(db, cfg.JWTSecret, emailService)
	verificationService := service.NewVerificationService(db, emailService)
	visibilityService := service.NewVisibilityService(db)
	postService := service.NewPostService(db, visibilityService)
	profileService := service.NewProfileService(db)
	imageService := service.NewImageService(s3Config, cfg.MediaRoot, cfg.MediaURL)

	var resendLimiter, postLimiter *middleware.RateLimiter
	if redisClient != nil {
		resendLimiter = middleware.NewResendCodeRateLimiter(redisClient)
		postLimiter = middleware.NewPostCreationRateLimiter(redisClient)
	}

	authHandler := api.NewAuthHandler(authService, verificationService, resendLimiter)
	profileHandler := api.NewProfileHandler(profileService, visibilityService, postService, authService)
	postHandler := api.NewPostHandler(postService, visibilityService, authService, db, postLimiter)
	imageHandler := api.NewImageHandler(imageService, authService)

	engine := router.SetupRouter(db, authHandler, profileHandler, postHandler, imageHandler)

	return &Server{engine: engine}
}

// Start runs the server until SIGINT or SIGTERM, then shuts down
// gracefully.
func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.engine,
	}

	go func() {
		log.Printf("[Server] listening on :%s", port)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Server] shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

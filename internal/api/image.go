package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsefeed/backend/internal/middleware"
	"github.com/pulsefeed/backend/internal/service"
)

// ImageHandler accepts post image uploads.
type ImageHandler struct {
	imageService service.IImageService
	authService  service.IAuthService
}

func NewImageHandler(imageService service.IImageService, authService service.IAuthService) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		authService:  authService,
	}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	images := router.Group("/images")
	images.Use(middleware.AuthMiddleware(h.authService))
	{
		images.POST("/upload", h.Upload)
	}
}

func (h *ImageHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image file"})
		return
	}

	if err := h.imageService.ValidateUpload(fileHeader.Filename, fileHeader.Size); err != nil {
		h.respondImageError(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("[ImageHandler] open upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageSize+1))
	if err != nil {
		log.Printf("[ImageHandler] read upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	if len(data) > service.MaxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrImageTooLarge.Error()})
		return
	}

	url, err := h.imageService.Upload(c.Request.Context(), data, fileHeader.Filename)
	if err != nil {
		h.respondImageError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func (h *ImageHandler) respondImageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImageTooLarge),
		errors.Is(err, service.ErrImageTypeNotAllowed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[ImageHandler] upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload image"})
	}
}

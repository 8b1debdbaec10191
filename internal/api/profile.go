package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsefeed/backend/internal/middleware"
	"github.com/pulsefeed/backend/internal/service"
	"github.com/pulsefeed/backend/internal/types"
)

// ProfileHandler serves the user's own profile and settings plus public
// profile pages addressed by slug.
type ProfileHandler struct {
	profileService    service.IProfileService
	visibilityService service.IVisibilityService
	postService       service.IPostService
	authService       service.IAuthService
}

func NewProfileHandler(profileService service.IProfileService, visibilityService service.IVisibilityService, postService service.IPostService, authService service.IAuthService) *ProfileHandler {
	return &ProfileHandler{
		profileService:    profileService,
		visibilityService: visibilityService,
		postService:       postService,
		authService:       authService,
	}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	profile.Use(middleware.AuthMiddleware(h.authService))
	{
		profile.GET("", h.GetOwnProfile)
		profile.PUT("", h.UpdateProfile)
	}

	settings := router.Group("/settings")
	settings.Use(middleware.AuthMiddleware(h.authService))
	{
		settings.GET("", h.GetSettings)
		settings.PUT("", h.UpdateSettings)
	}

	router.GET("/profiles/:slug", middleware.OptionalAuthMiddleware(h.authService), h.GetProfileBySlug)
}

func (h *ProfileHandler) GetOwnProfile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.profileService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[ProfileHandler] get profile failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[ProfileHandler] get user failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile, "user": user})
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrBioTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		log.Printf("[ProfileHandler] update profile failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "profile updated successfully",
		"profile": profile,
	})
}

// GetProfileBySlug returns a public profile page with its visible posts.
// Profiles the viewer may not see read as missing.
func (h *ProfileHandler) GetProfileBySlug(c *gin.Context) {
	slug := c.Param("slug")
	viewer := middleware.Viewer(c)

	profile, owner, err := h.profileService.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		log.Printf("[ProfileHandler] get profile by slug failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}

	visible, err := h.visibilityService.CanViewProfile(c.Request.Context(), profile.UserID, viewer)
	if err != nil {
		log.Printf("[ProfileHandler] visibility check failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}
	if !visible {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}

	posts, err := h.visibilityService.VisiblePosts(c.Request.Context(), profile.UserID, viewer)
	if err != nil {
		log.Printf("[ProfileHandler] list posts failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}
	annotated, err := h.postService.Annotate(c.Request.Context(), posts, viewer)
	if err != nil {
		log.Printf("[ProfileHandler] annotate posts failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"author":  owner.FullName(),
		"posts":   annotated,
	})
}

func (h *ProfileHandler) GetSettings(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	setting, err := h.profileService.GetSettings(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[ProfileHandler] get settings failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get settings"})
		return
	}

	c.JSON(http.StatusOK, setting)
}

func (h *ProfileHandler) UpdateSettings(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	setting, err := h.profileService.UpdateSettings(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPrivacy) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[ProfileHandler] update settings failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, setting)
}

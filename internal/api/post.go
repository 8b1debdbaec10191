package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulsefeed/backend/internal/middleware"
	"github.com/pulsefeed/backend/internal/models"
	"github.com/pulsefeed/backend/internal/service"
	"github.com/pulsefeed/backend/internal/types"
)

// PostHandler serves the posting surface: the feeds, CRUD on posts,
// likes and comments.
type PostHandler struct {
	postService       service.IPostService
	visibilityService service.IVisibilityService
	authService       service.IAuthService
	db                *gorm.DB
	postLimiter       *middleware.RateLimiter
}

func NewPostHandler(postService service.IPostService, visibilityService service.IVisibilityService, authService service.IAuthService, db *gorm.DB, postLimiter *middleware.RateLimiter) *PostHandler {
	return &PostHandler{
		postService:       postService,
		visibilityService: visibilityService,
		authService:       authService,
		db:                db,
		postLimiter:       postLimiter,
	}
}

func (h *PostHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/feed", middleware.AuthMiddleware(h.authService), h.Feed)

	posts := router.Group("/posts")
	{
		posts.GET("", middleware.OptionalAuthMiddleware(h.authService), h.List)
		posts.GET("/public", middleware.OptionalAuthMiddleware(h.authService), h.PublicFeed)
		posts.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.Get)
		posts.GET("/:id/comments", middleware.OptionalAuthMiddleware(h.authService), h.ListComments)

		authed := posts.Group("")
		authed.Use(middleware.AuthMiddleware(h.authService))
		{
			create := authed.Group("")
			create.Use(middleware.RequireEmailVerification(h.db))
			if h.postLimiter != nil {
				create.POST("", h.postLimiter.ByUser(), h.Create)
			} else {
				create.POST("", h.Create)
			}

			authed.PUT("/:id", h.Update)
			authed.DELETE("/:id", h.Delete)
			authed.POST("/:id/toggle_like", h.ToggleLike)
			authed.POST("/:id/comments", h.CreateComment)
		}
	}
}

func postID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return uuid.Nil, false
	}
	return id, true
}

// Feed returns the home feed for the signed-in user.
func (h *PostHandler) Feed(c *gin.Context) {
	viewer := middleware.Viewer(c)

	posts, err := h.visibilityService.HomeFeed(c.Request.Context(), viewer)
	if err != nil {
		log.Printf("[PostHandler] home feed failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}

	h.respondWithPosts(c, posts, viewer)
}

// List is the collection endpoint. Signed-in users get their home feed,
// anonymous users the public feed.
func (h *PostHandler) List(c *gin.Context) {
	viewer := middleware.Viewer(c)

	posts, err := h.visibilityService.HomeFeed(c.Request.Context(), viewer)
	if err != nil {
		log.Printf("[PostHandler] list posts failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
		return
	}

	h.respondWithPosts(c, posts, viewer)
}

// PublicFeed lists public posts, optionally filtered by ?q=.
func (h *PostHandler) PublicFeed(c *gin.Context) {
	viewer := middleware.Viewer(c)

	posts, err := h.postService.PublicFeed(c.Request.Context(), c.Query("q"))
	if err != nil {
		log.Printf("[PostHandler] public feed failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}

	h.respondWithPosts(c, posts, viewer)
}

func (h *PostHandler) Get(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	viewer := middleware.Viewer(c)

	post, err := h.postService.Get(c.Request.Context(), id, viewer)
	if err != nil {
		h.respondPostError(c, err, "failed to get post")
		return
	}

	resp, err := h.postService.AnnotateOne(c.Request.Context(), post, viewer)
	if err != nil {
		log.Printf("[PostHandler] annotate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get post"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.postService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondPostError(c, err, "failed to create post")
		return
	}

	resp, err := h.postService.AnnotateOne(c.Request.Context(), post, &userID)
	if err != nil {
		log.Printf("[PostHandler] annotate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create post"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PostHandler) Update(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.postService.Update(c.Request.Context(), id, userID, &req)
	if err != nil {
		h.respondPostError(c, err, "failed to update post")
		return
	}

	resp, err := h.postService.AnnotateOne(c.Request.Context(), post, &userID)
	if err != nil {
		log.Printf("[PostHandler] annotate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update post"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.postService.Delete(c.Request.Context(), id, userID); err != nil {
		h.respondPostError(c, err, "failed to delete post")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PostHandler) ToggleLike(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	resp, err := h.postService.ToggleReaction(c.Request.Context(), id, userID)
	if err != nil {
		h.respondPostError(c, err, "failed to toggle like")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PostHandler) ListComments(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	viewer := middleware.Viewer(c)

	comments, err := h.postService.ListComments(c.Request.Context(), id, viewer)
	if err != nil {
		h.respondPostError(c, err, "failed to list comments")
		return
	}

	responses := make([]types.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, commentResponse(&comments[i]))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *PostHandler) CreateComment(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.postService.CreateComment(c.Request.Context(), id, userID, req.Body)
	if err != nil {
		h.respondPostError(c, err, "failed to create comment")
		return
	}

	c.JSON(http.StatusCreated, commentResponse(comment))
}

func commentResponse(comment *models.Comment) types.CommentResponse {
	var author string
	if comment.User != nil {
		author = comment.User.FullName()
	}
	return types.CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		UserID:    comment.UserID,
		Author:    author,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}

func (h *PostHandler) respondWithPosts(c *gin.Context, posts []models.Post, viewer *uuid.UUID) {
	annotated, err := h.postService.Annotate(c.Request.Context(), posts, viewer)
	if err != nil {
		log.Printf("[PostHandler] annotate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": annotated})
}

func (h *PostHandler) respondPostError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
	case errors.Is(err, service.ErrEmptyBody),
		errors.Is(err, service.ErrBodyTooLong),
		errors.Is(err, service.ErrInvalidPrivacy):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[PostHandler] %s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

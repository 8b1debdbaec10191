package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pulsefeed/backend/internal/models"
	"github.com/pulsefeed/backend/internal/types"
)

// IEmailService defines the interface for outbound email
type IEmailService interface {
	SendEmail(to, subject, body string) error
	SendVerificationCode(user *models.User, code string) error
	SendWelcomeEmail(user *models.User) error
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(tokenString string) (*types.TokenClaims, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// IVerificationService defines the interface for email verification
type IVerificationService interface {
	IssueCode(ctx context.Context, userID uuid.UUID) (string, error)
	Verify(ctx context.Context, email, code string) error
	Resend(ctx context.Context, email string) error
}

// IPostService defines the interface for post operations
type IPostService interface {
	Create(ctx context.Context, userID uuid.UUID, req *types.CreatePostRequest) (*models.Post, error)
	Get(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Post, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, req *types.UpdatePostRequest) (*models.Post, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	ToggleReaction(ctx context.Context, postID, userID uuid.UUID) (*types.ToggleReactionResponse, error)
	ListComments(ctx context.Context, postID uuid.UUID, viewer *uuid.UUID) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID, userID uuid.UUID, body string) (*models.Comment, error)
	PublicFeed(ctx context.Context, q string) ([]models.Post, error)
	Annotate(ctx context.Context, posts []models.Post, viewer *uuid.UUID) ([]types.PostResponse, error)
	AnnotateOne(ctx context.Context, post *models.Post, viewer *uuid.UUID) (*types.PostResponse, error)
}

// IProfileService defines the interface for profile and settings operations
type IProfileService interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GetBySlug(ctx context.Context, slug string) (*models.Profile, *models.User, error)
	Update(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.Profile, error)
	GetSettings(ctx context.Context, userID uuid.UUID) (*models.Setting, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, req *types.UpdateSettingsRequest) (*models.Setting, error)
}

// IVisibilityService defines the interface for read access rules
type IVisibilityService interface {
	CanViewProfile(ctx context.Context, profileUserID uuid.UUID, viewer *uuid.UUID) (bool, error)
	CanViewPost(ctx context.Context, post *models.Post, viewer *uuid.UUID) (bool, error)
	VisiblePosts(ctx context.Context, targetUserID uuid.UUID, viewer *uuid.UUID) ([]models.Post, error)
	HomeFeed(ctx context.Context, viewer *uuid.UUID) ([]models.Post, error)
}

// IImageService defines the interface for image storage
type IImageService interface {
	ValidateUpload(filename string, size int64) error
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}

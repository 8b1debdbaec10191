package types

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest is the registration form body.
type RegisterRequest struct {
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type ResendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// UpdateProfileRequest updates a user's own profile. Pointer fields
// distinguish "absent" from "set to empty".
type UpdateProfileRequest struct {
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type UpdateSettingsRequest struct {
	PostPrivacy       *string `json:"post_privacy,omitempty" binding:"omitempty,oneof=public private"`
	ProfileVisibility *string `json:"profile_visibility,omitempty" binding:"omitempty,oneof=public private"`
}

type CreatePostRequest struct {
	Body     string `json:"body" binding:"required,max=2000"`
	Privacy  string `json:"privacy" binding:"omitempty,oneof=public private"`
	Status   string `json:"status" binding:"omitempty,max=255"`
	ImageURL string `json:"image_url"`
}

type UpdatePostRequest struct {
	Body     *string `json:"body,omitempty" binding:"omitempty,max=2000"`
	Privacy  *string `json:"privacy,omitempty" binding:"omitempty,oneof=public private"`
	Status   *string `json:"status,omitempty" binding:"omitempty,max=255"`
	ImageURL *string `json:"image_url,omitempty"`
}

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// PostResponse is a post annotated with viewer-dependent fields. The
// viewer is always passed explicitly; there is no ambient current user.
type PostResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	ImageURL  string    `json:"image_url,omitempty"`
	Privacy   string    `json:"privacy"`
	Status    string    `json:"status,omitempty"`
	LikeCount int64     `json:"like_count"`
	IsLiked   bool      `json:"is_liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type ToggleReactionResponse struct {
	Status    string `json:"status"` // "liked" or "unliked"
	LikeCount int64  `json:"like_count"`
}

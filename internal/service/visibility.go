package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulsefeed/backend/internal/models"
)

// VisibilityService centralizes the read rules for profiles and posts.
// Owners always see their own content; everyone else only sees public
// posts of users whose profile is public.
type VisibilityService struct {
	db *gorm.DB
}

func NewVisibilityService(db *gorm.DB) *VisibilityService {
	return &VisibilityService{db: db}
}

// CanViewProfile reports whether viewer may see the profile (and public
// posts) of the given user. A nil viewer is an anonymous request.
func (s *VisibilityService) CanViewProfile(ctx context.Context, profileUserID uuid.UUID, viewer *uuid.UUID) (bool, error) {
	if viewer != nil && *viewer == profileUserID {
		return true, nil
	}
	var setting models.Setting
	err := s.db.WithContext(ctx).Where("user_id = ?", profileUserID).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up settings: %w", err)
	}
	return setting.ProfileVisibility == models.PrivacyPublic, nil
}

// VisiblePosts returns the posts of targetUserID that viewer may see,
// newest first.
func (s *VisibilityService) VisiblePosts(ctx context.Context, targetUserID uuid.UUID, viewer *uuid.UUID) ([]models.Post, error) {
	if viewer != nil && *viewer == targetUserID {
		return s.listPosts(s.db.WithContext(ctx).Where("user_id = ?", targetUserID))
	}

	ok, err := s.CanViewProfile(ctx, targetUserID, viewer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Post{}, nil
	}
	return s.listPosts(s.db.WithContext(ctx).
		Where("user_id = ? AND privacy = ?", targetUserID, models.PrivacyPublic))
}

// CanViewPost reports whether viewer may read a single post.
func (s *VisibilityService) CanViewPost(ctx context.Context, post *models.Post, viewer *uuid.UUID) (bool, error) {
	if viewer != nil && *viewer == post.UserID {
		return true, nil
	}
	if post.Privacy != models.PrivacyPublic {
		return false, nil
	}
	return s.CanViewProfile(ctx, post.UserID, viewer)
}

// HomeFeed returns public posts of publicly visible profiles plus, for a
// signed-in viewer, all of their own posts.
func (s *VisibilityService) HomeFeed(ctx context.Context, viewer *uuid.UUID) ([]models.Post, error) {
	query := s.db.WithContext(ctx).
		Joins("JOIN settings ON settings.user_id = posts.user_id")
	if viewer != nil {
		query = query.Where("(posts.privacy = ? AND settings.profile_visibility = ?) OR posts.user_id = ?",
			models.PrivacyPublic, models.PrivacyPublic, *viewer)
	} else {
		query = query.Where("posts.privacy = ? AND settings.profile_visibility = ?",
			models.PrivacyPublic, models.PrivacyPublic)
	}
	return s.listPosts(query)
}

func (s *VisibilityService) listPosts(query *gorm.DB) ([]models.Post, error) {
	var posts []models.Post
	err := query.Preload("User").
		Order("posts.created_at DESC, posts.id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulsefeed/backend/internal/models"
	"github.com/pulsefeed/backend/internal/types"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrBioTooLong      = errors.New("bio exceeds the maximum length")
)

// MaxBioLength is the maximum bio length in runes.
const MaxBioLength = 100

type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// slugify lowercases the input and collapses anything outside a-z0-9
// into single hyphens.
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// generateUniqueSlug builds a profile slug from the user's name and
// appends a counter until it is free. Names that slugify to nothing,
// such as fully non-Latin ones, fall back to a generic base.
func generateUniqueSlug(db *gorm.DB, firstName, lastName string) (string, error) {
	base := slugify(firstName + " " + lastName)
	if base == "" {
		base = "user"
	}
	slug := base
	for i := 1; ; i++ {
		var count int64
		if err := db.Model(&models.Profile{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *ProfileService) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	return &profile, nil
}

// GetBySlug returns the profile and its owning user.
func (s *ProfileService) GetBySlug(ctx context.Context, slug string) (*models.Profile, *models.User, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProfileNotFound
		}
		return nil, nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", profile.UserID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to look up profile owner: %w", err)
	}
	return &profile, &user, nil
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Bio != nil {
		if utf8.RuneCountInString(*req.Bio) > MaxBioLength {
			return nil, ErrBioTooLong
		}
		profile.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

func (s *ProfileService) GetSettings(ctx context.Context, userID uuid.UUID) (*models.Setting, error) {
	var setting models.Setting
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to look up settings: %w", err)
	}
	return &setting, nil
}

func (s *ProfileService) UpdateSettings(ctx context.Context, userID uuid.UUID, req *types.UpdateSettingsRequest) (*models.Setting, error) {
	setting, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.PostPrivacy != nil {
		if err := validatePrivacy(*req.PostPrivacy); err != nil {
			return nil, err
		}
		setting.PostPrivacy = *req.PostPrivacy
	}
	if req.ProfileVisibility != nil {
		if err := validatePrivacy(*req.ProfileVisibility); err != nil {
			return nil, err
		}
		setting.ProfileVisibility = *req.ProfileVisibility
	}
	if err := s.db.WithContext(ctx).Save(setting).Error; err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return setting, nil
}

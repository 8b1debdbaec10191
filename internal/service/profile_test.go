package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/backend/internal/models"
	"github.com/pulsefeed/backend/internal/service"
	"github.com/pulsefeed/backend/internal/testhelpers"
	"github.com/pulsefeed/backend/internal/types"
)

func TestUpdateProfile(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewProfileService(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", true)

	bio := "gopher, photographer"
	avatar := "https://cdn.example.com/a.png"
	profile, err := svc.Update(ctx, user.ID, &types.UpdateProfileRequest{Bio: &bio, AvatarURL: &avatar})
	require.NoError(t, err)
	assert.Equal(t, bio, profile.Bio)
	assert.Equal(t, avatar, profile.AvatarURL)

	// partial update leaves the other field alone
	newBio := "just a gopher"
	profile, err = svc.Update(ctx, user.ID, &types.UpdateProfileRequest{Bio: &newBio})
	require.NoError(t, err)
	assert.Equal(t, newBio, profile.Bio)
	assert.Equal(t, avatar, profile.AvatarURL)

	tooLong := strings.Repeat("x", service.MaxBioLength+1)
	_, err = svc.Update(ctx, user.ID, &types.UpdateProfileRequest{Bio: &tooLong})
	assert.ErrorIs(t, err, service.ErrBioTooLong)
}

func TestGetBySlug(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewProfileService(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", true)
	stored, err := svc.GetByUserID(ctx, user.ID)
	require.NoError(t, err)

	profile, owner, err := svc.GetBySlug(ctx, stored.Slug)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)
	assert.Equal(t, "Alice Smith", owner.FullName())

	_, _, err = svc.GetBySlug(ctx, "missing-slug")
	assert.ErrorIs(t, err, service.ErrProfileNotFound)
}

func TestUpdateSettings(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewProfileService(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", true)

	setting, err := svc.GetSettings(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PrivacyPublic, setting.ProfileVisibility)

	private := models.PrivacyPrivate
	setting, err = svc.UpdateSettings(ctx, user.ID, &types.UpdateSettingsRequest{ProfileVisibility: &private})
	require.NoError(t, err)
	assert.Equal(t, models.PrivacyPrivate, setting.ProfileVisibility)
	assert.Equal(t, models.PrivacyPublic, setting.PostPrivacy)

	bad := "friends"
	_, err = svc.UpdateSettings(ctx, user.ID, &types.UpdateSettingsRequest{PostPrivacy: &bad})
	assert.ErrorIs(t, err, service.ErrInvalidPrivacy)
}

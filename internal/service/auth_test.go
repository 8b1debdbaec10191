package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/backend/internal/models"
	"github.com/pulsefeed/backend/internal/service"
	"github.com/pulsefeed/backend/internal/testhelpers"
	"github.com/pulsefeed/backend/internal/types"
)

func registerRequest() *types.RegisterRequest {
	return &types.RegisterRequest{
		FirstName:       "jane",
		LastName:        "doe",
		Email:           "  Jane.Doe@Example.COM ",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestRegister(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	emails := testhelpers.NewMockEmailService()
	svc := service.NewAuthService(db, "test-secret", emails)

	user, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, "Doe", user.LastName)
	assert.Equal(t, "jane.doe@example.com", user.Email)
	assert.False(t, user.IsVerified)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "jane-doe", profile.Slug)

	var setting models.Setting
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&setting).Error)
	assert.Equal(t, models.PrivacyPublic, setting.PostPrivacy)
	assert.Equal(t, models.PrivacyPublic, setting.ProfileVisibility)

	var verification models.EmailVerification
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&verification).Error)
	assert.Len(t, verification.Code, 6)
	assert.Equal(t, verification.Code, emails.LastCode(user.Email))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret", testhelpers.NewMockEmailService())

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerRequest())
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestRegisterEmailUniqueIndexRace(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret", testhelpers.NewMockEmailService())

	user, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	// A soft-deleted row is invisible to the pre-insert count but still
	// holds the unique index, like a registration committed between the
	// check and the insert.
	require.NoError(t, db.Delete(&models.User{}, "id = ?", user.ID).Error)

	_, err = svc.Register(context.Background(), registerRequest())
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestRegisterSlugCollision(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret", testhelpers.NewMockEmailService())

	first, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	req := registerRequest()
	req.Email = "jane.other@example.com"
	second, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	var p1, p2 models.Profile
	require.NoError(t, db.Where("user_id = ?", first.ID).First(&p1).Error)
	require.NoError(t, db.Where("user_id = ?", second.ID).First(&p2).Error)
	assert.Equal(t, "jane-doe", p1.Slug)
	assert.Equal(t, "jane-doe-1", p2.Slug)
}

func TestRegisterValidation(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret", testhelpers.NewMockEmailService())

	req := registerRequest()
	req.FirstName = "J"
	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, service.ErrInvalidName)

	req = registerRequest()
	req.LastName = "d0e"
	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, service.ErrInvalidName)

	req = registerRequest()
	req.ConfirmPassword = "different"
	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, service.ErrPasswordMismatch)
}

func TestRegisterArabicName(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret", testhelpers.NewMockEmailService())

	req := registerRequest()
	req.FirstName = "محمد"
	req.LastName = "علي"
	user, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "user", profile.Slug)
}

func TestLogin(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret", testhelpers.NewMockEmailService())

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "JANE.DOE@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "jane.doe@example.com", user.Email)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.False(t, claims.IsVerified)
}

func TestLoginWrongPassword(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret", testhelpers.NewMockEmailService())

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "jane.doe@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret", testhelpers.NewMockEmailService())

	user, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, _, err = svc.Login(context.Background(), "jane.doe@example.com", "secret123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret", testhelpers.NewMockEmailService())
	other := service.NewAuthService(db, "other-secret", testhelpers.NewMockEmailService())

	user, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret", testhelpers.NewMockEmailService())

	user, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "wrong", "newpass123")
	assert.ErrorIs(t, err, service.ErrWrongPassword)

	err = svc.ChangePassword(context.Background(), user.ID, "secret123", "newpass123")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "jane.doe@example.com", "secret123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "jane.doe@example.com", "newpass123")
	assert.NoError(t, err)
}

func TestNormalizeName(t *testing.T) {
	name, err := service.NormalizeName("  aLICE ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	_, err = service.NormalizeName("a")
	assert.ErrorIs(t, err, service.ErrInvalidName)

	_, err = service.NormalizeName("al ice")
	assert.ErrorIs(t, err, service.ErrInvalidName)

	_, err = service.NormalizeName("bob!")
	assert.ErrorIs(t, err, service.ErrInvalidName)
}

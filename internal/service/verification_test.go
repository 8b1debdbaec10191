package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/backend/internal/models"
	"github.com/pulsefeed/backend/internal/service"
	"github.com/pulsefeed/backend/internal/testhelpers"
)

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := service.GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestVerifySuccess(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	emails := testhelpers.NewMockEmailService()
	svc := service.NewVerificationService(db, emails)

	user := testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", false)
	code, err := svc.IssueCode(context.Background(), user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Verify(context.Background(), "ALICE@example.com ", code))

	var updated models.User
	require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
	assert.True(t, updated.IsVerified)

	var count int64
	require.NoError(t, db.Model(&models.EmailVerification{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count, "code should be consumed")

	require.NotEmpty(t, emails.Sent)
	assert.Equal(t, "Welcome to Pulsefeed!", emails.Sent[len(emails.Sent)-1].Subject)
}

func TestVerifyWrongCode(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewVerificationService(db, testhelpers.NewMockEmailService())

	user := testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", false)
	code, err := svc.IssueCode(context.Background(), user.ID)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	err = svc.Verify(context.Background(), "alice@example.com", wrong)
	assert.ErrorIs(t, err, service.ErrCodeMismatch)

	// the stored code survives a failed attempt
	require.NoError(t, svc.Verify(context.Background(), "alice@example.com", code))
}

func TestVerifyNoActiveCode(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewVerificationService(db, testhelpers.NewMockEmailService())

	testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", false)

	err := svc.Verify(context.Background(), "alice@example.com", "123456")
	assert.ErrorIs(t, err, service.ErrNoActiveCode)

	err = svc.Verify(context.Background(), "nobody@example.com", "123456")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestVerifyExpiredCodeReissues(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	emails := testhelpers.NewMockEmailService()
	svc := service.NewVerificationService(db, emails)

	user := testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", false)
	code, err := svc.IssueCode(context.Background(), user.ID)
	require.NoError(t, err)

	stale := time.Now().Add(-models.CodeTTL - time.Minute)
	require.NoError(t, db.Model(&models.EmailVerification{}).
		Where("user_id = ?", user.ID).Update("created_at", stale).Error)

	err = svc.Verify(context.Background(), "alice@example.com", code)
	assert.ErrorIs(t, err, service.ErrCodeExpired)

	// a fresh code was stored and emailed
	var rec models.EmailVerification
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&rec).Error)
	assert.False(t, rec.IsExpired(time.Now()))
	assert.Equal(t, rec.Code, emails.LastCode("alice@example.com"))

	// the replacement code verifies
	require.NoError(t, svc.Verify(context.Background(), "alice@example.com", rec.Code))
}

func TestVerifyExpiredCodeSendFailure(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	emails := testhelpers.NewMockEmailService()
	svc := service.NewVerificationService(db, emails)

	user := testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", false)
	code, err := svc.IssueCode(context.Background(), user.ID)
	require.NoError(t, err)

	stale := time.Now().Add(-models.CodeTTL - time.Minute)
	require.NoError(t, db.Model(&models.EmailVerification{}).
		Where("user_id = ?", user.ID).Update("created_at", stale).Error)

	emails.FailNext = true
	err = svc.Verify(context.Background(), "alice@example.com", code)
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrCodeExpired,
		"the user must not be told a mail was sent when the send failed")
}

func TestIssueCodeReplacesPrevious(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewVerificationService(db, testhelpers.NewMockEmailService())

	user := testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", false)
	_, err := svc.IssueCode(context.Background(), user.ID)
	require.NoError(t, err)
	second, err := svc.IssueCode(context.Background(), user.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.EmailVerification{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var rec models.EmailVerification
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&rec).Error)
	assert.Equal(t, second, rec.Code)
}

func TestResend(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	emails := testhelpers.NewMockEmailService()
	svc := service.NewVerificationService(db, emails)

	testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", false)

	require.NoError(t, svc.Resend(context.Background(), "alice@example.com"))
	code := emails.LastCode("alice@example.com")
	require.NotEmpty(t, code)
	require.NoError(t, svc.Verify(context.Background(), "alice@example.com", code))

	err := svc.Resend(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, service.ErrAlreadyVerified)

	err = svc.Resend(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestResendPropagatesSendFailure(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	emails := testhelpers.NewMockEmailService()
	svc := service.NewVerificationService(db, emails)

	testhelpers.CreateTestUser(t, db, "Alice", "Smith", "alice@example.com", false)

	emails.FailNext = true
	err := svc.Resend(context.Background(), "alice@example.com")
	assert.Error(t, err)
}

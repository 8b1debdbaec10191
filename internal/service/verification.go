package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulsefeed/backend/internal/models"
)

var (
	ErrNoActiveCode    = errors.New("no active verification code")
	ErrCodeExpired     = errors.New("verification code has expired, a new one was sent")
	ErrCodeMismatch    = errors.New("invalid verification code")
	ErrAlreadyVerified = errors.New("email is already verified")
)

type VerificationService struct {
	db    *gorm.DB
	email IEmailService
	now   func() time.Time
}

func NewVerificationService(db *gorm.DB, email IEmailService) *VerificationService {
	return &VerificationService{db: db, email: email, now: time.Now}
}

// GenerateCode returns a random 6-digit numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// issueCode stores a fresh code for the user, replacing any previous one.
// A user has at most one active code at a time.
func issueCode(db *gorm.DB, userID uuid.UUID, now time.Time) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	rec := models.EmailVerification{
		UserID:    userID,
		Code:      code,
		CreatedAt: now,
	}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"code":       code,
			"created_at": now,
		}),
	}).Create(&rec).Error
	if err != nil {
		return "", fmt.Errorf("failed to store verification code: %w", err)
	}
	return code, nil
}

// IssueCode creates or replaces the verification code for a user.
func (s *VerificationService) IssueCode(ctx context.Context, userID uuid.UUID) (string, error) {
	return issueCode(s.db.WithContext(ctx), userID, s.now())
}

// Verify checks the submitted code for the user behind the email address.
// An expired code is replaced and re-sent before the expiry is reported,
// so the caller can simply retry with the new code.
func (s *VerificationService) Verify(ctx context.Context, email, code string) error {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}

	var rec models.EmailVerification
	err = s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveCode
		}
		return fmt.Errorf("failed to look up verification code: %w", err)
	}

	if rec.IsExpired(s.now()) {
		newCode, err := issueCode(s.db.WithContext(ctx), user.ID, s.now())
		if err != nil {
			return err
		}
		// ErrCodeExpired tells the user a replacement was mailed, so a
		// failed send must not hide behind it.
		if err := s.email.SendVerificationCode(user, newCode); err != nil {
			return fmt.Errorf("failed to send replacement code: %w", err)
		}
		return ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return ErrCodeMismatch
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("is_verified", true).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", user.ID).Delete(&models.EmailVerification{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	if err := s.email.SendWelcomeEmail(user); err != nil {
		log.Printf("[VerificationService] Failed to send welcome email to %s: %v", user.Email, err)
	}
	return nil
}

// Resend issues a fresh code for an unverified user and emails it.
func (s *VerificationService) Resend(ctx context.Context, email string) error {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := issueCode(s.db.WithContext(ctx), user.ID, s.now())
	if err != nil {
		return err
	}
	if err := s.email.SendVerificationCode(user, code); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	return nil
}

func (s *VerificationService) findUser(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

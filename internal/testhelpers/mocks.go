package testhelpers

import (
	"fmt"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pulsefeed/backend/internal/models"
)

// MockEmailService records outbound mail instead of sending it.
type MockEmailService struct {
	mu       sync.Mutex
	Sent     []SentEmail
	Codes    map[string]string
	FailNext bool
}

type SentEmail struct {
	To      string
	Subject string
	Body    string
}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{Codes: make(map[string]string)}
}

func (m *MockEmailService) SendEmail(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return fmt.Errorf("simulated send failure")
	}
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *MockEmailService) SendVerificationCode(user *models.User, code string) error {
	m.mu.Lock()
	if !m.FailNext {
		m.Codes[user.Email] = code
	}
	m.mu.Unlock()
	return m.SendEmail(user.Email, "Verify Your Email - Pulsefeed", "code: "+code)
}

func (m *MockEmailService) SendWelcomeEmail(user *models.User) error {
	return m.SendEmail(user.Email, "Welcome to Pulsefeed!", "welcome")
}

// LastCode returns the most recent verification code sent to the address.
func (m *MockEmailService) LastCode(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Codes[email]
}

// CreateTestUser inserts a user with a profile and default settings.
func CreateTestUser(t *testing.T, db *gorm.DB, firstName, lastName, email string, verified bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hash),
		IsVerified:   verified,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	profile := models.Profile{
		UserID: user.ID,
		Slug:   fmt.Sprintf("%s-%s-%s", firstName, lastName, user.ID.String()[:8]),
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	setting := models.Setting{
		UserID:            user.ID,
		PostPrivacy:       models.PrivacyPublic,
		ProfileVisibility: models.PrivacyPublic,
	}
	if err := db.Create(&setting).Error; err != nil {
		t.Fatalf("failed to create settings: %v", err)
	}

	return &user
}

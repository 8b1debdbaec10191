package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailVerification holds the single active verification code for a user.
// Issuing a new code replaces the row in place (upsert on user_id).
type EmailVerification struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Code      string    `gorm:"size:64;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// CodeTTL is how long a verification code stays valid after issuance.
const CodeTTL = 15 * time.Minute

func (v *EmailVerification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether the code has outlived its validity window.
// Expiry is only ever checked at verification time; an expired row
// stays in place until the next verify attempt replaces it.
func (v *EmailVerification) IsExpired(now time.Time) bool {
	return now.After(v.CreatedAt.Add(CodeTTL))
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Privacy levels shared by posts and profiles.
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	FirstName    string         `gorm:"size:255;not null" json:"first_name"`
	LastName     string         `gorm:"size:255;not null" json:"last_name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	IsVerified   bool           `gorm:"not null;default:false" json:"is_verified"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	IsStaff      bool           `gorm:"not null;default:false" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Profile is the public face of a user, addressable by slug.
type Profile struct {
	ID        uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Bio       string         `gorm:"size:100" json:"bio"`
	AvatarURL string         `gorm:"size:255" json:"avatar_url"`
	Slug      string         `gorm:"size:255;uniqueIndex" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Setting holds a user's privacy preferences. Defaults are public.
type Setting struct {
	ID                uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	PostPrivacy       string    `gorm:"size:20;not null;default:'public'" json:"post_privacy"`
	ProfileVisibility string    `gorm:"size:20;not null;default:'public'" json:"profile_visibility"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (s *Setting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

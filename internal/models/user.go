package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name         string `gorm:"size:30;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	// Token is the session token issued by the latest login; empty when logged out.
	Token     string `gorm:"index"`
	AvatarURL string `gorm:"not null"`

	// VerificationCode is cleared once the email is verified.
	VerificationCode string `gorm:"index"`
	Verified         bool   `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Contacts []Contact `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

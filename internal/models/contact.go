package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Contact struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name       string `gorm:"size:30;not null"`
	Email      string `gorm:"not null"`
	Phone      string `gorm:"size:15;not null"`
	Favorite   bool   `gorm:"not null;default:false"`
	NumberType string `gorm:"not null"`
	BirthDate  string

	OwnerID uuid.UUID `gorm:"type:uuid;not null;index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

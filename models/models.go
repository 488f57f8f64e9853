package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered Eventrite account. The avatar uploaded during
// registration lives in blob storage; Image holds its storage reference.
type User struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Name     string `gorm:"size:255;not null"`
	Email    string `gorm:"size:255;not null;uniqueIndex"`
	Username string `gorm:"size:255;not null;uniqueIndex"`
	Image    string `gorm:"size:512"`

	// PasswordHash is the bcrypt hash of the account password. The
	// plaintext is never persisted.
	PasswordHash string `gorm:"size:255;not null"`
}

package users

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID          uint   `gorm:"primaryKey"`
	GoogleID    string `json:"googleId" gorm:"index"`
	Email       string `json:"email" gorm:"unique;not null"`
	Password    string `json:"-"`
	Provider    string `json:"provider" gorm:"not null;default:'google'"`
	DisplayName string `json:"displayName" gorm:"not null"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Image       string `json:"image"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GetUserByID looks a user up by primary key.
func GetUserByID(db *gorm.DB, userID uint) (*User, error) {
	var user User
	if result := db.First(&user, userID); result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// GetUserByGoogleID looks a user up by the identifier Google issued.
func GetUserByGoogleID(db *gorm.DB, googleID string) (*User, error) {
	var user User
	if result := db.Where("google_id = ?", googleID).First(&user); result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

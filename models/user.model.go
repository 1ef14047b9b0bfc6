package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles. A session carries exactly one role for its lifetime.
const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

type User struct {
	gorm.Model
	Name      string    `gorm:"default:''" json:"name"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Role      string    `gorm:"default:'STUDENT'" json:"role"`
	Password  string    `gorm:"not null" json:"-"`
	AvatarURL string    `gorm:"default:''" json:"avatar_url"`
	Headline  string    `gorm:"default:''" json:"headline"`
	Bio       string    `gorm:"type:text" json:"bio"`
	LastLogin time.Time `gorm:"default:NULL" json:"last_login"`
	IsDeleted bool      `gorm:"default:false" json:"-"`
}

// PasswordReset is a single-use reset token mailed to the user
type PasswordReset struct {
	gorm.Model
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Token     string    `gorm:"unique;not null" json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`
}

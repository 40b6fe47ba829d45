package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model           `json:"-"`
	ID                   uint   `json:"id" gorm:"primaryKey"`
	Name                 string `json:"name"`
	Username             string `json:"username" gorm:"uniqueIndex"`
	Email                string `json:"email" gorm:"uniqueIndex"`
	Biography            string `json:"biography,omitempty"`
	Location             string `json:"location,omitempty"`
	Link                 string `json:"link,omitempty"`
	Image                string `json:"image,omitempty"`  // avatar URL
	Banner               string `json:"banner,omitempty"` // profile banner URL
	Password             string `json:"-"`                // hashed, never serialized
	FirebaseUID          string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
	NotificationsEnabled bool   `json:"notifications_enabled" gorm:"default:true"`
}

// UserCompact is the public snapshot of a user attached to enriched payloads.
type UserCompact struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image,omitempty"`
}

// ToCompact returns the public display fields of the user.
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Image:    u.Image,
	}
}

// DisplayName returns the name shown in notification messages.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

type SignupRequest struct {
	Name     string `json:"name" validate:"omitempty,max=50"`
	Username string `json:"username" validate:"required,min=2,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name                 string `json:"name,omitempty" validate:"omitempty,max=50"`
	Biography            string `json:"biography,omitempty" validate:"omitempty,max=280"`
	Location             string `json:"location,omitempty" validate:"omitempty,max=100"`
	Link                 string `json:"link,omitempty" validate:"omitempty,url"`
	Image                string `json:"image,omitempty" validate:"omitempty,url"`
	Banner               string `json:"banner,omitempty" validate:"omitempty,url"`
	NotificationsEnabled *bool  `json:"notifications_enabled,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

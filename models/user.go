package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleClient     UserRole = "client"
	RoleRestaurant UserRole = "restaurant"
	RoleAdmin      UserRole = "admin"
)

// ValidRole reports whether a role may be chosen at registration
func ValidRole(r UserRole) bool {
	return r == RoleClient || r == RoleRestaurant || r == RoleAdmin
}

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	FullName       string    `json:"full_name" gorm:"not null"`
	HashedPassword *string   `json:"-"`
	Role           UserRole  `json:"role" gorm:"not null;default:'client'"`
	IsActive       bool      `json:"is_active" gorm:"not null;default:true"`
	IsVerified     bool      `json:"is_verified" gorm:"not null;default:false"`
	GoogleID       *string   `json:"-" gorm:"uniqueIndex"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

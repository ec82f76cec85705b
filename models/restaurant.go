package models

import "time"

// RestaurantStatus tracks the admin approval workflow
type RestaurantStatus string

const (
	RestaurantPending  RestaurantStatus = "pending"
	RestaurantApproved RestaurantStatus = "approved"
	RestaurantRejected RestaurantStatus = "rejected"
)

type Restaurant struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	OwnerID         uint             `json:"owner_id" gorm:"not null;uniqueIndex"`
	Owner           User             `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name            string           `json:"name" gorm:"not null;index"`
	Address         string           `json:"address" gorm:"not null"`
	Phone           string           `json:"phone" gorm:"not null"`
	Email           string           `json:"email" gorm:"not null"`
	Description     string           `json:"description"`
	Latitude        float64          `json:"latitude" gorm:"not null"`
	Longitude       float64          `json:"longitude" gorm:"not null"`
	Status          RestaurantStatus `json:"status" gorm:"not null;default:'pending'"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	Foods           []Food           `json:"foods,omitempty" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

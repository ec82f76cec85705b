package models

import "time"

// Food is a discounted surplus listing owned by an approved restaurant.
// Quantity is only ever mutated through conditional updates so it can
// never go negative under concurrent orders.
type Food struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	RestaurantID uint       `json:"restaurant_id" gorm:"not null;index"`
	Restaurant   Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Name         string     `json:"name" gorm:"not null;index"`
	Description  string     `json:"description"`
	Image        string     `json:"image"`
	Price        float64    `json:"price" gorm:"not null"`
	OldPrice     float64    `json:"old_price"`
	Discount     int        `json:"discount"`
	Quantity     int        `json:"quantity" gorm:"not null;default:0"`
	ExpiresAt    time.Time  `json:"expires_at" gorm:"not null"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

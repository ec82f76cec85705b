package models

import "time"

// OrderStatus represents all possible states of a pickup order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	CustomerID   uint        `json:"customer_id" gorm:"not null;index"`
	Customer     User        `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	RestaurantID uint        `json:"restaurant_id" gorm:"not null;index"`
	Restaurant   Restaurant  `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Status       OrderStatus `json:"status" gorm:"not null;default:'pending'"`
	TotalAmount  float64     `json:"total_amount" gorm:"not null"`
	PickupTime   time.Time   `json:"pickup_time" gorm:"not null"`
	Items        []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	OrderID  uint    `json:"order_id" gorm:"not null;index"`
	FoodID   uint    `json:"food_id" gorm:"not null"`
	Food     Food    `json:"food,omitempty" gorm:"foreignKey:FoodID"`
	Quantity int     `json:"quantity" gorm:"not null"`
	Price    float64 `json:"price" gorm:"not null"` // snapshot price at time of order
	Name     string  `json:"name"`                  // snapshot name
	CreatedAt time.Time `json:"created_at"`
}

package models

import "time"

type Post struct {
	ID                uint          `json:"id" gorm:"primaryKey"`
	AuthorID          uint          `json:"author_id" gorm:"not null;index"`
	Author            User          `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Text              string        `json:"text" gorm:"not null"`
	Image             string        `json:"image"`
	Location          string        `json:"location"`
	RestaurantID      *uint         `json:"restaurant_id,omitempty"`
	RestaurantName    string        `json:"restaurant_name,omitempty"`
	RestaurantAddress string        `json:"restaurant_address,omitempty"`
	Likes             []PostLike    `json:"likes,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Comments          []PostComment `json:"comments,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// PostLike is unique per (post, user); toggling removes or re-adds the row
type PostLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;uniqueIndex:idx_post_like"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_post_like"`
	CreatedAt time.Time `json:"created_at"`
}

type PostComment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`
	AuthorID  uint      `json:"author_id" gorm:"not null"`
	Author    User      `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Text      string    `json:"text" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

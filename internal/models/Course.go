package models

import "time"

type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserID      uint      `gorm:"index;not null" json:"ownerId"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Instructor  string    `json:"instructor"`
	Duration    string    `json:"duration"`
	ImageURL    string    `json:"imageUrl"`
}

func (c Course) OwnerKey() uint { return c.UserID }

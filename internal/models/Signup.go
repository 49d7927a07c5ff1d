package models

import "time"

// Signup registers an account for an event. An account signs up to a given
// event at most once.
type Signup struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserID      uint      `gorm:"uniqueIndex:idx_signup_event_user;not null" json:"ownerId"`
	EventID     uint      `gorm:"uniqueIndex:idx_signup_event_user;not null" json:"eventId"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `gorm:"not null" json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Notes       string    `json:"notes"`
}

func (s Signup) OwnerKey() uint { return s.UserID }

package models

import "time"

// Event is a user-submitted event. Listings are public; only the submitting
// account or an admin may change it.
type Event struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	UserID      uint       `gorm:"index;not null" json:"ownerId"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	ImageURL    string     `json:"imageUrl"`

	// Venue point as WKB; the API speaks GeoJSON.
	Geometry []byte `gorm:"type:bytea" json:"-"`

	Signups []Signup `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (e Event) OwnerKey() uint { return e.UserID }

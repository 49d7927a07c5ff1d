package models

import "time"

const (
	RoleVolunteer    = "volunteer"
	RoleOrganization = "organization"
	RoleAdmin        = "admin"
)

const (
	StatusActivated   = "activated"
	StatusDeactivated = "deactivated"
)

// User is an account. Accounts are never soft-deleted; an admin either
// deactivates them or removes the row outright.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Name        string     `gorm:"not null" json:"name"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	PhoneNumber string     `json:"phoneNumber"`
	Dob         *time.Time `gorm:"type:date" json:"dob,omitempty"`
	Role        string     `gorm:"not null;default:volunteer" json:"role"`   // "volunteer", "organization", "admin"
	Status      string     `gorm:"not null;default:activated" json:"status"` // "activated", "deactivated"
}

// OwnerKey makes an account owned by itself.
func (u User) OwnerKey() uint { return u.ID }

func (u User) Deactivated() bool { return u.Status == StatusDeactivated }

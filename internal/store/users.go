package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"ecoverse/internal/models"
)

// Users is the account table. Emails are compared lower-cased.
type Users struct {
	*Repo[models.User]
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{Repo: NewRepo[models.User](db, "id", "name", "email")}
}

func (u *Users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Store bundles the repositories the API works with.
type Store struct {
	Users   *Users
	Events  *Repo[models.Event]
	Courses *Repo[models.Course]
	Signups *Repo[models.Signup]
	Reports *Repo[models.Report]
}

func New(db *gorm.DB) *Store {
	return &Store{
		Users:   NewUsers(db),
		Events:  NewRepo[models.Event](db, "user_id", "title", "description", "location"),
		Courses: NewRepo[models.Course](db, "user_id", "title", "description", "instructor"),
		Signups: NewRepo[models.Signup](db, "user_id", "name", "email"),
		Reports: NewRepo[models.Report](db, "user_id", "title", "description", "location"),
	}
}

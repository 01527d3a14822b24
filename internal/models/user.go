package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is the single account record. Admins are seeded out of band; every
// registered user is a client.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string     `gorm:"not null;size:255;uniqueIndex:idx_users_email" json:"email"`
	Name         string     `gorm:"not null;size:255" json:"name"`
	Password     string     `gorm:"not null" json:"-"`
	BusinessType *string    `gorm:"size:255" json:"businessType"`
	IsAdmin      bool       `gorm:"not null;default:false;index" json:"isAdmin"`
	Status       string     `gorm:"size:20;not null;default:'active'" json:"status"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (u *User) IsInactive() bool {
	return u.Status == StatusInactive
}

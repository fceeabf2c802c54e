package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleJobPoster  Role = "job_poster"
	RoleContractor Role = "contractor"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleJobPoster, RoleContractor:
		return true
	default:
		return false
	}
}

type User struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Email       string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Role        Role      `gorm:"size:32;not null" json:"role"`
	Token       string    `gorm:"size:36;not null;uniqueIndex" json:"token"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Token == "" {
		u.Token = uuid.NewString()
	}
	return nil
}

// Name returns the display name, falling back to the email like the
// profile screens do.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

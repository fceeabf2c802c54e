package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotifyOfferSubmitted NotificationKind = "offer_submitted"
	NotifyOfferAccepted  NotificationKind = "offer_accepted"
	NotifyOfferRejected  NotificationKind = "offer_rejected"
)

// Notification is a per-user inbox row written by the event worker.
type Notification struct {
	ID        string           `gorm:"primaryKey;size:36" json:"id"`
	UserID    string           `gorm:"size:36;not null;index" json:"user_id"`
	Kind      NotificationKind `gorm:"size:32;not null" json:"kind"`
	JobID     string           `gorm:"size:36" json:"job_id"`
	OfferID   string           `gorm:"size:36" json:"offer_id"`
	Body      string           `gorm:"size:512" json:"body"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

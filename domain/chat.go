package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat is the two-party conversation between a job poster and a
// contractor about one job.
type Chat struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	JobID        string    `gorm:"size:36;not null;uniqueIndex:idx_chat_parties" json:"job_id"`
	PosterID     string    `gorm:"size:36;not null;uniqueIndex:idx_chat_parties;index" json:"poster_id"`
	ContractorID string    `gorm:"size:36;not null;uniqueIndex:idx_chat_parties;index" json:"contractor_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// HasParticipant reports whether the user is one of the two parties.
func (c *Chat) HasParticipant(userID string) bool {
	return userID == c.PosterID || userID == c.ContractorID
}

type Message struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ChatID     string    `gorm:"size:36;not null;index" json:"chat_id"`
	SenderID   string    `gorm:"size:36;not null" json:"sender_id"`
	SenderName string    `gorm:"size:255" json:"sender_name"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

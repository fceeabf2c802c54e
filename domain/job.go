package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobStatus string

const (
	JobOpen       JobStatus = "open"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
)

func ValidJobStatus(s JobStatus) bool {
	switch s {
	case JobOpen, JobInProgress, JobCompleted:
		return true
	default:
		return false
	}
}

// Job is a unit of work posted by a job poster. Status only ever moves
// open -> in_progress, and only through the accept operation.
type Job struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Location    string    `gorm:"size:255;not null" json:"location"`
	Category    string    `gorm:"size:100" json:"category"`
	Budget      float64   `json:"budget"`
	Status      JobStatus `gorm:"size:32;not null;default:open" json:"status"`
	OfferCount  int64     `gorm:"not null;default:0" json:"offer_count"`
	CreatedBy   string    `gorm:"size:36;not null;index" json:"created_by"`
	DatePosted  time.Time `json:"date_posted"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.DatePosted.IsZero() {
		j.DatePosted = time.Now()
	}
	return nil
}

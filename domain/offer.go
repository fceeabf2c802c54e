package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

// Offer is a contractor's bid against a job. The unique index on
// (job_id, contractor_id) backs the one-offer-per-contractor rule even
// under a concurrent double submit.
type Offer struct {
	ID             string      `gorm:"primaryKey;size:36" json:"id"`
	JobID          string      `gorm:"size:36;not null;uniqueIndex:idx_job_contractor;index" json:"job_id"`
	ContractorID   string      `gorm:"size:36;not null;uniqueIndex:idx_job_contractor;index" json:"contractor_id"`
	ContractorName string      `gorm:"size:255" json:"contractor_name"`
	Price          float64     `json:"price"`
	Message        string      `gorm:"type:text;not null" json:"message"`
	Status         OfferStatus `gorm:"size:32;not null;default:pending" json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

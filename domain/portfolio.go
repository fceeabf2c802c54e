package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImageList stores external image URLs as a comma separated column.
type ImageList []string

func (l ImageList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

func (l *ImageList) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ImageList", src)
	}
	if s == "" {
		*l = nil
		return nil
	}
	*l = strings.Split(s, ",")
	return nil
}

// CompletedJob is a portfolio entry a contractor shows off on their
// profile. Image hosting is external; only URLs are stored.
type CompletedJob struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ContractorID  string    `gorm:"size:36;not null;index" json:"contractor_id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	CompletedDate time.Time `json:"completed_date"`
	ImageURLs     ImageList `gorm:"type:text" json:"image_urls"`
	CreatedAt     time.Time `json:"created_at"`
}

func (c *CompletedJob) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

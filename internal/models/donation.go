package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Donation struct {
	ID            string  `json:"id" gorm:"primaryKey;size:255"`
	Name          string  `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Email         *string `json:"email" gorm:"size:255" validate:"omitempty,email"`
	PhoneNumber   string  `json:"phone_number" gorm:"size:20" validate:"required"`
	Amount        float64 `json:"amount" gorm:"not null" validate:"required,gt=0"`
	TransactionID string  `json:"transaction_id" gorm:"not null;size:100" validate:"required"`
	ScreenshotURL string  `json:"screenshot_url" gorm:"size:500" validate:"omitempty,url"`

	CreatedAt time.Time `json:"created_at"`
}

func (Donation) TableName() string {
	return "donations"
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

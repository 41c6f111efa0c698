package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Department struct {
	ID          string `json:"id" gorm:"primaryKey;size:255"`
	Name        string `json:"name" gorm:"not null;size:100;index" validate:"required,min=1,max=100"`
	Description string `json:"description" gorm:"type:text" validate:"max=1000"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

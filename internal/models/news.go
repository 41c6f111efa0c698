package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NewsArticle struct {
	ID          string    `json:"id" gorm:"primaryKey;size:255"`
	Title       string    `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Content     string    `json:"content" gorm:"type:text;not null" validate:"required"`
	Author      string    `json:"author" gorm:"not null;size:100" validate:"required"`
	ImageURL    string    `json:"image_url" gorm:"size:500" validate:"omitempty,url"`
	PublishedAt time.Time `json:"published_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (NewsArticle) TableName() string {
	return "news_articles"
}

func (n *NewsArticle) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.PublishedAt.IsZero() {
		n.PublishedAt = time.Now()
	}
	return nil
}

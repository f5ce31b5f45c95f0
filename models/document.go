package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID   uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`
	Name       string    `gorm:"not null" json:"name"`
	Type       string    `gorm:"not null" json:"type"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now()
	}
	return
}

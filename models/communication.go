package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Communication struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"clientId"`
	ApplicationID *uuid.UUID `gorm:"type:uuid;index" json:"applicationId,omitempty"`
	Type          string     `gorm:"type:varchar(20);not null" json:"type"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Status        string     `gorm:"type:varchar(20);not null;default:'sent'" json:"status"`
	SentAt        time.Time  `json:"sentAt"`

	// Twilio message SID for WhatsApp messages, used by status sync.
	ProviderMessageID string `gorm:"type:varchar(64);index" json:"providerMessageId,omitempty"`
}

func (c *Communication) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.SentAt.IsZero() {
		c.SentAt = time.Now()
	}
	return
}

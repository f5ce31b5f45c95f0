package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Application struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`
	Type     string    `gorm:"type:varchar(20);not null" json:"type"`
	Status   string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	Communications []Communication `gorm:"foreignKey:ApplicationID;constraint:OnDelete:SET NULL" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Qualification is owned by exactly one Client and never referenced elsewhere.
type Qualification struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Type           string    `gorm:"type:varchar(20);not null" json:"type"`
	Specialization string    `json:"specialization,omitempty"`
	YearCompleted  string    `gorm:"type:varchar(10)" json:"yearCompleted,omitempty"`
}

func (q *Qualification) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return
}

// Client is the aggregate root: deleting it removes its Qualification,
// Applications, Documents and Communications.
type Client struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name                   string    `gorm:"not null" json:"name"`
	Email                  string    `gorm:"not null;index" json:"email"`
	Phone                  string    `gorm:"not null" json:"phone"`
	PassportNumber         string    `gorm:"not null;index" json:"passportNumber"`
	DateOfBirth            time.Time `gorm:"not null" json:"dateOfBirth"`
	DataflowCaseNumber     string    `json:"dataflowCaseNumber,omitempty"`
	ApplicationDate        time.Time `gorm:"not null" json:"applicationDate"`
	ExpectedCompletionDate time.Time `gorm:"not null" json:"expectedCompletionDate"`

	QualificationID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex" json:"qualificationId"`
	Qualification   Qualification `gorm:"foreignKey:QualificationID" json:"qualification"`

	PackageType   string  `gorm:"type:varchar(20);not null" json:"packageType"`
	Status        string  `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	PaymentStatus string  `gorm:"type:varchar(20);not null;default:'pending'" json:"paymentStatus"`
	PaymentAmount float64 `gorm:"type:decimal(10,2);not null;default:0" json:"paymentAmount"`

	Applications   []Application   `gorm:"foreignKey:ClientID" json:"applications,omitempty"`
	Documents      []Document      `gorm:"foreignKey:ClientID" json:"documents,omitempty"`
	Communications []Communication `gorm:"foreignKey:ClientID" json:"communications,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

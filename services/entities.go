package services

import (
	"errors"

	"elabcrm-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows entity lists. A nil ClientID lists everything.
type ListFilter struct {
	ClientID *uuid.UUID
}

func (f ListFilter) apply(query *gorm.DB) *gorm.DB {
	if f.ClientID != nil {
		query = query.Where("client_id = ?", *f.ClientID)
	}
	return query
}

// requireClient loads the referenced client or reports clientId as a violation.
func requireClient(tx *gorm.DB, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := tx.First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("clientId", "exists")
		}
		return nil, &StoreError{Op: "find client", Err: err}
	}
	return &client, nil
}

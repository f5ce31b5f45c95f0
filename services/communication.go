package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"elabcrm-backend/models"
	"elabcrm-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateCommunicationInput struct {
	ClientID      uuid.UUID  `json:"clientId" validate:"required"`
	ApplicationID *uuid.UUID `json:"applicationId"`
	Type          string     `json:"type" validate:"required,channel"`
	Content       string     `json:"content" validate:"required"`
}

type UpdateCommunicationInput struct {
	Content *string `json:"content" validate:"omitempty,min=1"`
	Status  *string `json:"status" validate:"omitempty,communication_status"`
}

type CommunicationService struct {
	db        *gorm.DB
	messenger utils.Messenger
}

func NewCommunicationService(db *gorm.DB) *CommunicationService {
	return &CommunicationService{db: db}
}

// WithMessenger dispatches WhatsApp communications through m on create.
func (s *CommunicationService) WithMessenger(m utils.Messenger) *CommunicationService {
	s.messenger = m
	return s
}

// Create records a communication. WhatsApp messages are sent first when a
// messenger is configured; a failed send persists nothing.
func (s *CommunicationService) Create(ctx context.Context, in CreateCommunicationInput) (*models.Communication, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	client, err := requireClient(db, in.ClientID)
	if err != nil {
		return nil, err
	}

	if in.ApplicationID != nil {
		var application models.Application
		err := db.First(&application, "id = ? AND client_id = ?", *in.ApplicationID, in.ClientID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("applicationId", "exists")
		}
		if err != nil {
			return nil, &StoreError{Op: "find application", Err: err}
		}
	}

	communication := models.Communication{
		ClientID:      in.ClientID,
		ApplicationID: in.ApplicationID,
		Type:          in.Type,
		Content:       strings.TrimSpace(in.Content),
		Status:        models.CommunicationSent,
	}

	if in.Type == models.ChannelWhatsApp && s.messenger != nil {
		sid, err := s.messenger.SendWhatsApp(client.Phone, communication.Content)
		if err != nil {
			log.Printf("Failed to send WhatsApp message to client %s: %v", client.ID, err)
			return nil, fmt.Errorf("%w: %v", ErrDispatch, err)
		}
		communication.ProviderMessageID = sid
	}

	if err := db.Create(&communication).Error; err != nil {
		return nil, storeError("create communication", err)
	}
	return &communication, nil
}

func (s *CommunicationService) Get(ctx context.Context, id uuid.UUID) (*models.Communication, error) {
	var communication models.Communication
	if err := s.db.WithContext(ctx).First(&communication, "id = ?", id).Error; err != nil {
		return nil, notFound("communication", id.String(), err)
	}
	return &communication, nil
}

func (s *CommunicationService) List(ctx context.Context, filter ListFilter) ([]models.Communication, error) {
	communications := []models.Communication{}
	err := filter.apply(s.db.WithContext(ctx)).Order("sent_at DESC").Find(&communications).Error
	if err != nil {
		return nil, storeError("list communications", err)
	}
	return communications, nil
}

func (s *CommunicationService) Update(ctx context.Context, id uuid.UUID, in UpdateCommunicationInput) (*models.Communication, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	communication, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Content != nil {
		communication.Content = strings.TrimSpace(*in.Content)
	}
	if in.Status != nil {
		communication.Status = *in.Status
	}
	if err := s.db.WithContext(ctx).Save(communication).Error; err != nil {
		return nil, storeError("update communication", err)
	}
	return communication, nil
}

func (s *CommunicationService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Communication{})
	if res.Error != nil {
		return storeError("delete communication", res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "communication", ID: id.String()}
	}
	return nil
}

package services

import (
	"context"
	"strings"

	"elabcrm-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateDocumentInput struct {
	ClientID uuid.UUID `json:"clientId" validate:"required"`
	Name     string    `json:"name" validate:"required"`
	Type     string    `json:"type" validate:"required"`
	URL      string    `json:"url" validate:"omitempty,url"`
	Status   string    `json:"status" validate:"omitempty,document_status"`
}

type UpdateDocumentInput struct {
	Name   *string `json:"name" validate:"omitempty,min=1"`
	Type   *string `json:"type" validate:"omitempty,min=1"`
	URL    *string `json:"url" validate:"omitempty,url"`
	Status *string `json:"status" validate:"omitempty,document_status"`
}

type DocumentService struct {
	db *gorm.DB
}

func NewDocumentService(db *gorm.DB) *DocumentService {
	return &DocumentService{db: db}
}

func (s *DocumentService) Create(ctx context.Context, in CreateDocumentInput) (*models.Document, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := requireClient(db, in.ClientID); err != nil {
		return nil, err
	}

	document := models.Document{
		ClientID: in.ClientID,
		Name:     strings.TrimSpace(in.Name),
		Type:     strings.TrimSpace(in.Type),
		URL:      strings.TrimSpace(in.URL),
		Status:   valueOr(in.Status, models.DocumentPending),
	}
	if err := db.Create(&document).Error; err != nil {
		return nil, storeError("create document", err)
	}
	return &document, nil
}

func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var document models.Document
	if err := s.db.WithContext(ctx).First(&document, "id = ?", id).Error; err != nil {
		return nil, notFound("document", id.String(), err)
	}
	return &document, nil
}

func (s *DocumentService) List(ctx context.Context, filter ListFilter) ([]models.Document, error) {
	documents := []models.Document{}
	err := filter.apply(s.db.WithContext(ctx)).Order("uploaded_at DESC").Find(&documents).Error
	if err != nil {
		return nil, storeError("list documents", err)
	}
	return documents, nil
}

func (s *DocumentService) Update(ctx context.Context, id uuid.UUID, in UpdateDocumentInput) (*models.Document, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	document, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		document.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		document.Type = strings.TrimSpace(*in.Type)
	}
	if in.URL != nil {
		document.URL = strings.TrimSpace(*in.URL)
	}
	if in.Status != nil {
		document.Status = *in.Status
	}
	if err := s.db.WithContext(ctx).Save(document).Error; err != nil {
		return nil, storeError("update document", err)
	}
	return document, nil
}

func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Document{})
	if res.Error != nil {
		return storeError("delete document", res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "document", ID: id.String()}
	}
	return nil
}

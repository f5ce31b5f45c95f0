package services

import (
	"context"

	"elabcrm-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateApplicationInput struct {
	ClientID uuid.UUID `json:"clientId" validate:"required"`
	Type     string    `json:"type" validate:"required,application_type"`
	Status   string    `json:"status" validate:"omitempty,application_status"`
}

type UpdateApplicationInput struct {
	Type   *string `json:"type" validate:"omitempty,application_type"`
	Status *string `json:"status" validate:"omitempty,application_status"`
}

type ApplicationService struct {
	db *gorm.DB
}

func NewApplicationService(db *gorm.DB) *ApplicationService {
	return &ApplicationService{db: db}
}

func (s *ApplicationService) Create(ctx context.Context, in CreateApplicationInput) (*models.Application, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := requireClient(db, in.ClientID); err != nil {
		return nil, err
	}

	application := models.Application{
		ClientID: in.ClientID,
		Type:     in.Type,
		Status:   valueOr(in.Status, models.ApplicationPending),
	}
	if err := db.Create(&application).Error; err != nil {
		return nil, storeError("create application", err)
	}
	return &application, nil
}

func (s *ApplicationService) Get(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := s.db.WithContext(ctx).First(&application, "id = ?", id).Error; err != nil {
		return nil, notFound("application", id.String(), err)
	}
	return &application, nil
}

func (s *ApplicationService) List(ctx context.Context, filter ListFilter) ([]models.Application, error) {
	applications := []models.Application{}
	err := filter.apply(s.db.WithContext(ctx)).Order("created_at DESC").Find(&applications).Error
	if err != nil {
		return nil, storeError("list applications", err)
	}
	return applications, nil
}

func (s *ApplicationService) Update(ctx context.Context, id uuid.UUID, in UpdateApplicationInput) (*models.Application, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	application, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Type != nil {
		application.Type = *in.Type
	}
	if in.Status != nil {
		application.Status = *in.Status
	}
	if err := s.db.WithContext(ctx).Save(application).Error; err != nil {
		return nil, storeError("update application", err)
	}
	return application, nil
}

// Delete removes the application; communications that referenced it keep
// their client but lose the application link.
func (s *ApplicationService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Communication{}).
			Where("application_id = ?", id).
			Update("application_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Application{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Entity: "application", ID: id.String()}
		}
		return nil
	})
	return storeError("delete application", err)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"elabcrm-backend/models"
	"elabcrm-backend/monitoring"
	"elabcrm-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QualificationInput is the qualification embedded in a new client.
type QualificationInput struct {
	Type           string `json:"type" validate:"required,qualification_type"`
	Specialization string `json:"specialization"`
	YearCompleted  string `json:"yearCompleted" validate:"omitempty,max=10"`
}

// CreateClientInput defines the expected JSON structure for creating a client
type CreateClientInput struct {
	Name                   string             `json:"name" validate:"required,min=2"`
	Email                  string             `json:"email" validate:"required,email"`
	Phone                  string             `json:"phone" validate:"required,phone"`
	PassportNumber         string             `json:"passportNumber" validate:"required"`
	DateOfBirth            string             `json:"dateOfBirth" validate:"required,date"`
	DataflowCaseNumber     string             `json:"dataflowCaseNumber"`
	ApplicationDate        string             `json:"applicationDate" validate:"required,date"`
	ExpectedCompletionDate string             `json:"expectedCompletionDate" validate:"required,date"`
	Qualification          QualificationInput `json:"qualification"`
	PackageType            string             `json:"packageType" validate:"required,package_type"`
	Status                 string             `json:"status" validate:"omitempty,client_status"`
	PaymentStatus          string             `json:"paymentStatus" validate:"omitempty,payment_status"`
	PaymentAmount          float64            `json:"paymentAmount" validate:"gte=0"`
}

// QualificationUpdate changes fields of the client's own qualification. ID, when
// given, must match it: a client cannot be re-pointed at another qualification.
type QualificationUpdate struct {
	ID             *uuid.UUID `json:"id"`
	Type           *string    `json:"type" validate:"omitempty,qualification_type"`
	Specialization *string    `json:"specialization"`
	YearCompleted  *string    `json:"yearCompleted" validate:"omitempty,max=10"`
}

// UpdateClientInput defines the expected JSON structure for updating a client
type UpdateClientInput struct {
	Name                   *string              `json:"name" validate:"omitempty,min=2"`
	Email                  *string              `json:"email" validate:"omitempty,email"`
	Phone                  *string              `json:"phone" validate:"omitempty,phone"`
	PassportNumber         *string              `json:"passportNumber" validate:"omitempty,min=1"`
	DateOfBirth            *string              `json:"dateOfBirth" validate:"omitempty,date"`
	DataflowCaseNumber     *string              `json:"dataflowCaseNumber"`
	ApplicationDate        *string              `json:"applicationDate" validate:"omitempty,date"`
	ExpectedCompletionDate *string              `json:"expectedCompletionDate" validate:"omitempty,date"`
	Qualification          *QualificationUpdate `json:"qualification"`
	PackageType            *string              `json:"packageType" validate:"omitempty,package_type"`
	Status                 *string              `json:"status" validate:"omitempty,client_status"`
	PaymentStatus          *string              `json:"paymentStatus" validate:"omitempty,payment_status"`
	PaymentAmount          *float64             `json:"paymentAmount" validate:"omitempty,gte=0"`
}

// ListOptions paginates listClients. Zero values return every client.
type ListOptions struct {
	Limit  int
	Offset int
}

// ClientEvent is published after every committed client mutation.
type ClientEvent struct {
	Event      string    `json:"event"`
	ClientID   uuid.UUID `json:"clientId"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

const (
	EventClientCreated = "client_created"
	EventClientUpdated = "client_updated"
	EventClientDeleted = "client_deleted"
)

var searchFields = []string{"name^3", "email", "passportNumber", "dataflowCaseNumber", "phone"}

// ClientService owns the Client aggregate: the client row, its qualification
// and the cascade over applications, documents and communications.
type ClientService struct {
	db     *gorm.DB
	events utils.EventPublisher
	topic  string
	index  utils.SearchIndex
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// WithEvents publishes client events to topic after each commit.
func (s *ClientService) WithEvents(publisher utils.EventPublisher, topic string) *ClientService {
	s.events = publisher
	s.topic = topic
	return s
}

// WithSearchIndex keeps idx in sync and uses it for Search.
func (s *ClientService) WithSearchIndex(idx utils.SearchIndex) *ClientService {
	s.index = idx
	return s
}

// Create persists the qualification and then the client referencing it, in
// one transaction.
func (s *ClientService) Create(ctx context.Context, in CreateClientInput) (client *models.Client, err error) {
	defer func() { monitoring.ClientOperations.WithLabelValues("create", monitoring.Result(err)).Inc() }()

	if err := validateInput(in); err != nil {
		return nil, err
	}
	dates, err := parseClientDates(in.DateOfBirth, in.ApplicationDate, in.ExpectedCompletionDate)
	if err != nil {
		return nil, err
	}

	qualification := models.Qualification{
		Type:           in.Qualification.Type,
		Specialization: strings.TrimSpace(in.Qualification.Specialization),
		YearCompleted:  strings.TrimSpace(in.Qualification.YearCompleted),
	}
	newClient := models.Client{
		Name:                   strings.TrimSpace(in.Name),
		Email:                  strings.TrimSpace(in.Email),
		Phone:                  strings.TrimSpace(in.Phone),
		PassportNumber:         strings.TrimSpace(in.PassportNumber),
		DateOfBirth:            dates[0],
		DataflowCaseNumber:     strings.TrimSpace(in.DataflowCaseNumber),
		ApplicationDate:        dates[1],
		ExpectedCompletionDate: dates[2],
		PackageType:            in.PackageType,
		Status:                 valueOr(in.Status, models.ClientActive),
		PaymentStatus:          valueOr(in.PaymentStatus, models.PaymentPending),
		PaymentAmount:          in.PaymentAmount,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&qualification).Error; err != nil {
			return err
		}
		newClient.QualificationID = qualification.ID
		return tx.Omit(clause.Associations).Create(&newClient).Error
	})
	if err != nil {
		return nil, storeError("create client", err)
	}

	newClient.Qualification = qualification
	s.afterCommit(ctx, EventClientCreated, &newClient)
	return &newClient, nil
}

// Update applies the provided fields to the client and its qualification.
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, in UpdateClientInput) (client *models.Client, err error) {
	defer func() { monitoring.ClientOperations.WithLabelValues("update", monitoring.Result(err)).Inc() }()

	if err := validateInput(in); err != nil {
		return nil, err
	}

	var existing models.Client
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Qualification").First(&existing, "id = ?", id).Error; err != nil {
			return notFound("client", id.String(), err)
		}

		if q := in.Qualification; q != nil {
			if q.ID != nil && *q.ID != existing.QualificationID {
				return invalid("qualification.id", "immutable")
			}
			if q.Type != nil {
				existing.Qualification.Type = *q.Type
			}
			if q.Specialization != nil {
				existing.Qualification.Specialization = strings.TrimSpace(*q.Specialization)
			}
			if q.YearCompleted != nil {
				existing.Qualification.YearCompleted = strings.TrimSpace(*q.YearCompleted)
			}
			if err := tx.Save(&existing.Qualification).Error; err != nil {
				return err
			}
		}

		if err := applyClientUpdate(&existing, in); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&existing).Error
	})
	if err != nil {
		return nil, storeError("update client", err)
	}

	s.afterCommit(ctx, EventClientUpdated, &existing)
	return &existing, nil
}

// Delete removes the client and everything it owns in one transaction:
// communications, documents, applications, the client row, then its
// qualification. Any failure rolls the whole cascade back.
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { monitoring.ClientOperations.WithLabelValues("delete", monitoring.Result(err)).Inc() }()

	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return notFound("client", id.String(), err)
	}

	deleted := map[string]int64{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		children := []struct {
			table string
			model interface{}
		}{
			{"communications", &models.Communication{}},
			{"documents", &models.Document{}},
			{"applications", &models.Application{}},
		}
		for _, child := range children {
			res := tx.Where("client_id = ?", id).Delete(child.model)
			if res.Error != nil {
				return res.Error
			}
			deleted[child.table] = res.RowsAffected
		}

		res := tx.Where("id = ?", id).Delete(&models.Client{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// removed by a concurrent request after the lookup
			return &NotFoundError{Entity: "client", ID: id.String()}
		}
		deleted["clients"] = res.RowsAffected

		res = tx.Where("id = ?", client.QualificationID).Delete(&models.Qualification{})
		if res.Error != nil {
			return res.Error
		}
		deleted["qualifications"] = res.RowsAffected
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &DeletionError{Entity: "client", ID: id.String(), Err: err}
	}

	for table, n := range deleted {
		monitoring.CascadeDeletedRows.WithLabelValues(table).Add(float64(n))
	}
	s.afterCommit(ctx, EventClientDeleted, &client)
	return nil
}

// GetByID loads the client with its qualification, applications, documents
// and communications.
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).
		Preload("Qualification").
		Preload("Applications").
		Preload("Documents").
		Preload("Communications").
		First(&client, "id = ?", id).Error
	if err != nil {
		return nil, notFound("client", id.String(), err)
	}
	return &client, nil
}

// List returns clients with qualification and applications only.
func (s *ClientService) List(ctx context.Context, opts ListOptions) ([]models.Client, error) {
	query := s.db.WithContext(ctx).
		Preload("Qualification").
		Preload("Applications").
		Order("created_at DESC")
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	clients := []models.Client{}
	if err := query.Find(&clients).Error; err != nil {
		return nil, storeError("list clients", err)
	}
	return clients, nil
}

// Search matches name, email, passport, phone and case number. The search
// index is used when configured; the database answers otherwise or when the
// index fails.
func (s *ClientService) Search(ctx context.Context, q string, limit int) ([]models.Client, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("q", "required")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if s.index != nil {
		ids, err := s.index.SearchIDs(ctx, q, searchFields, limit)
		if err == nil {
			return s.loadRanked(ctx, ids)
		}
		log.Printf("Client search index failed, falling back to database: %v", err)
	}

	pattern := "%" + strings.ToLower(q) + "%"
	clients := []models.Client{}
	err := s.db.WithContext(ctx).
		Preload("Qualification").
		Preload("Applications").
		Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(passport_number) LIKE ? OR LOWER(dataflow_case_number) LIKE ? OR phone LIKE ?",
			pattern, pattern, pattern, pattern, pattern).
		Order("name").
		Limit(limit).
		Find(&clients).Error
	if err != nil {
		return nil, storeError("search clients", err)
	}
	return clients, nil
}

func (s *ClientService) loadRanked(ctx context.Context, ids []string) ([]models.Client, error) {
	clients := []models.Client{}
	if len(ids) == 0 {
		return clients, nil
	}
	var found []models.Client
	err := s.db.WithContext(ctx).
		Preload("Qualification").
		Preload("Applications").
		Where("id IN ?", ids).
		Find(&found).Error
	if err != nil {
		return nil, storeError("search clients", err)
	}
	byID := make(map[string]models.Client, len(found))
	for _, c := range found {
		byID[c.ID.String()] = c
	}
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			clients = append(clients, c)
		}
	}
	return clients, nil
}

// afterCommit runs best-effort side effects; failures are logged, never returned.
func (s *ClientService) afterCommit(ctx context.Context, event string, client *models.Client) {
	if s.index != nil {
		var err error
		if event == EventClientDeleted {
			err = s.index.DeleteDocument(ctx, client.ID.String())
		} else {
			err = s.index.IndexDocument(ctx, client.ID.String(), searchDocument(client))
		}
		if err != nil {
			log.Printf("Failed to sync client %s to search index: %v", client.ID, err)
		}
	}

	if s.events != nil {
		payload, err := json.Marshal(ClientEvent{
			Event:      event,
			ClientID:   client.ID,
			Name:       client.Name,
			Email:      client.Email,
			OccurredAt: time.Now().UTC(),
		})
		if err != nil {
			log.Printf("Failed to marshal %s event: %v", event, err)
			return
		}
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.events.Publish(pubCtx, s.topic, []byte(client.ID.String()), payload); err != nil {
			log.Printf("Failed to publish %s event for client %s: %v", event, client.ID, err)
		}
	}
}

func searchDocument(c *models.Client) map[string]interface{} {
	return map[string]interface{}{
		"name":               c.Name,
		"email":              c.Email,
		"phone":              c.Phone,
		"passportNumber":     c.PassportNumber,
		"dataflowCaseNumber": c.DataflowCaseNumber,
		"packageType":        c.PackageType,
		"status":             c.Status,
		"qualificationType":  c.Qualification.Type,
	}
}

func applyClientUpdate(c *models.Client, in UpdateClientInput) error {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		c.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.PassportNumber != nil {
		c.PassportNumber = strings.TrimSpace(*in.PassportNumber)
	}
	if in.DataflowCaseNumber != nil {
		c.DataflowCaseNumber = strings.TrimSpace(*in.DataflowCaseNumber)
	}

	ve := &ValidationError{}
	setDate := func(field string, raw *string, dst *time.Time) {
		if raw == nil {
			return
		}
		t, err := utils.ParseDate(*raw)
		if err != nil {
			ve.Add(field, "date")
			return
		}
		*dst = t
	}
	setDate("dateOfBirth", in.DateOfBirth, &c.DateOfBirth)
	setDate("applicationDate", in.ApplicationDate, &c.ApplicationDate)
	setDate("expectedCompletionDate", in.ExpectedCompletionDate, &c.ExpectedCompletionDate)
	if err := ve.Err(); err != nil {
		return err
	}

	if in.PackageType != nil {
		c.PackageType = *in.PackageType
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	if in.PaymentStatus != nil {
		c.PaymentStatus = *in.PaymentStatus
	}
	if in.PaymentAmount != nil {
		c.PaymentAmount = *in.PaymentAmount
	}
	return nil
}

func parseClientDates(dateOfBirth, applicationDate, expectedCompletionDate string) ([3]time.Time, error) {
	var out [3]time.Time
	ve := &ValidationError{}
	for i, f := range []struct {
		name string
		raw  string
	}{
		{"dateOfBirth", dateOfBirth},
		{"applicationDate", applicationDate},
		{"expectedCompletionDate", expectedCompletionDate},
	} {
		t, err := utils.ParseDate(f.raw)
		if err != nil {
			ve.Add(f.name, "date")
			continue
		}
		out[i] = t
	}
	return out, ve.Err()
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

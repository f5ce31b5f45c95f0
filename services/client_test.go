package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"elabcrm-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

// seedDependents gives the client n applications, documents and communications.
func seedDependents(t *testing.T, db *gorm.DB, clientID uuid.UUID, n int) {
	t.Helper()
	ctx := context.Background()
	apps := NewApplicationService(db)
	docs := NewDocumentService(db)
	comms := NewCommunicationService(db)
	for i := 0; i < n; i++ {
		app, err := apps.Create(ctx, CreateApplicationInput{ClientID: clientID, Type: models.ApplicationDataFlow})
		require.NoError(t, err)
		_, err = docs.Create(ctx, CreateDocumentInput{ClientID: clientID, Name: "passport.pdf", Type: "passport"})
		require.NoError(t, err)
		_, err = comms.Create(ctx, CreateCommunicationInput{ClientID: clientID, ApplicationID: &app.ID, Type: models.ChannelEmail, Content: "Documents received"})
		require.NoError(t, err)
	}
}

func TestCreateClient_JohnDoeLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	ctx := context.Background()

	client, err := svc.Create(ctx, johnDoeInput())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, client.ID)
	assert.Equal(t, models.ClientActive, client.Status)
	assert.Equal(t, models.PaymentPending, client.PaymentStatus)

	var qualification models.Qualification
	require.NoError(t, db.First(&qualification, "id = ?", client.QualificationID).Error)
	assert.Equal(t, "MBBS", qualification.Type)
	assert.Equal(t, "2015", qualification.YearCompleted)

	require.NoError(t, svc.Delete(ctx, client.ID))

	_, err = svc.GetByID(ctx, client.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, countRows(t, db, &models.Application{}, "client_id = ?", client.ID))
	assert.Zero(t, countRows(t, db, &models.Document{}, "client_id = ?", client.ID))
	assert.Zero(t, countRows(t, db, &models.Communication{}, "client_id = ?", client.ID))
	assert.Zero(t, countRows(t, db, &models.Qualification{}, "id = ?", client.QualificationID))
}

func TestCreateClient_OneQualificationPerClient(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	ctx := context.Background()

	seen := map[uuid.UUID]bool{}
	for i := 0; i < 3; i++ {
		client, err := svc.Create(ctx, johnDoeInput())
		require.NoError(t, err)

		assert.False(t, seen[client.QualificationID], "qualification shared between clients")
		seen[client.QualificationID] = true
		assert.Equal(t, int64(1), countRows(t, db, &models.Client{}, "qualification_id = ?", client.QualificationID))
	}
	assert.Equal(t, int64(3), countRows(t, db, &models.Qualification{}, "1 = 1"))
}

func TestCreateClient_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	ctx := context.Background()

	in := johnDoeInput()
	in.Email = "John.Doe@Example.com"
	in.DateOfBirth = "1988-04-12T22:30:00Z"
	in.Qualification.Specialization = "Cardiology"
	created, err := svc.Create(ctx, in)
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.Email, got.Email)
	assert.Equal(t, in.Phone, got.Phone)
	assert.Equal(t, in.PassportNumber, got.PassportNumber)
	assert.Equal(t, in.DataflowCaseNumber, got.DataflowCaseNumber)
	assert.Equal(t, "1988-04-12", got.DateOfBirth.UTC().Format("2006-01-02"))
	assert.Equal(t, "2024-01-15", got.ApplicationDate.UTC().Format("2006-01-02"))
	assert.Equal(t, "2024-03-15", got.ExpectedCompletionDate.UTC().Format("2006-01-02"))
	assert.Equal(t, in.PackageType, got.PackageType)
	assert.InDelta(t, in.PaymentAmount, got.PaymentAmount, 0.001)

	assert.Equal(t, created.QualificationID, got.Qualification.ID)
	assert.Equal(t, "MBBS", got.Qualification.Type)
	assert.Equal(t, "Cardiology", got.Qualification.Specialization)
	assert.Equal(t, "2015", got.Qualification.YearCompleted)

	assert.Empty(t, got.Applications)
	assert.Empty(t, got.Documents)
	assert.Empty(t, got.Communications)
}

func TestCreateClient_ReportsEveryViolation(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)

	_, err := svc.Create(context.Background(), CreateClientInput{
		Email:           "not-an-email",
		Phone:           "12",
		ApplicationDate: "15/01/2024",
		Qualification:   QualificationInput{Type: "PhD"},
		PackageType:     "Gold",
		PaymentAmount:   -1,
	})

	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)

	fields := map[string]string{}
	for _, v := range ve.Violations {
		fields[v.Field] = v.Rule
	}
	assert.Equal(t, map[string]string{
		"name":                   "required",
		"email":                  "email",
		"phone":                  "phone",
		"passportNumber":         "required",
		"dateOfBirth":            "required",
		"applicationDate":        "date",
		"expectedCompletionDate": "required",
		"qualification.type":     "qualification_type",
		"packageType":            "package_type",
		"paymentAmount":          "gte",
	}, fields)

	assert.Zero(t, countRows(t, db, &models.Qualification{}, "1 = 1"))
	assert.Zero(t, countRows(t, db, &models.Client{}, "1 = 1"))
}

func TestCreateClient_SharedPassportIsAllowed(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	ctx := context.Background()

	first, err := svc.Create(ctx, johnDoeInput())
	require.NoError(t, err)
	second, err := svc.Create(ctx, johnDoeInput())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.QualificationID, second.QualificationID)
	assert.Equal(t, int64(2), countRows(t, db, &models.Client{}, "passport_number = ?", "P1234567"))
}

func TestCreateClient_RollsBackQualificationWhenClientInsertFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)

	forced := errors.New("forced client insert failure")
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_client", func(tx *gorm.DB) {
		if tx.Statement.Table == "clients" {
			_ = tx.AddError(forced)
		}
	}))

	_, err := svc.Create(context.Background(), johnDoeInput())
	assert.ErrorIs(t, err, forced)

	assert.Zero(t, countRows(t, db, &models.Qualification{}, "1 = 1"))
	assert.Zero(t, countRows(t, db, &models.Client{}, "1 = 1"))
}

func TestDeleteClient_CascadesEverything(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	ctx := context.Background()

	client, err := svc.Create(ctx, johnDoeInput())
	require.NoError(t, err)
	seedDependents(t, db, client.ID, 3)

	other := johnDoeInput()
	other.PassportNumber = "OTHER-1"
	survivor, err := svc.Create(ctx, other)
	require.NoError(t, err)
	seedDependents(t, db, survivor.ID, 1)

	require.NoError(t, svc.Delete(ctx, client.ID))

	for _, model := range []interface{}{&models.Application{}, &models.Document{}, &models.Communication{}} {
		assert.Zero(t, countRows(t, db, model, "client_id = ?", client.ID))
		assert.Equal(t, int64(1), countRows(t, db, model, "client_id = ?", survivor.ID))
	}
	assert.Zero(t, countRows(t, db, &models.Qualification{}, "id = ?", client.QualificationID))
	assert.Equal(t, int64(1), countRows(t, db, &models.Qualification{}, "id = ?", survivor.QualificationID))

	_, err = svc.GetByID(ctx, client.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteClient_RollsBackWhenQualificationDeleteFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	ctx := context.Background()

	client, err := svc.Create(ctx, johnDoeInput())
	require.NoError(t, err)
	seedDependents(t, db, client.ID, 2)

	forced := errors.New("forced qualification delete failure")
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:fail_qualification", func(tx *gorm.DB) {
		if tx.Statement.Table == "qualifications" {
			_ = tx.AddError(forced)
		}
	}))

	err = svc.Delete(ctx, client.ID)
	var delErr *DeletionError
	require.True(t, errors.As(err, &delErr), "expected DeletionError, got %v", err)
	assert.ErrorIs(t, err, forced)
	assert.Equal(t, client.ID.String(), delErr.ID)

	got, err := svc.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Len(t, got.Applications, 2)
	assert.Len(t, got.Documents, 2)
	assert.Len(t, got.Communications, 2)
	assert.Equal(t, client.QualificationID, got.Qualification.ID)
}

func TestClient_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	ctx := context.Background()

	missing := uuid.New()
	_, err := svc.GetByID(ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, missing), ErrNotFound)
	_, err = svc.Update(ctx, missing, UpdateClientInput{Name: ptr("Jane Doe")})
	assert.ErrorIs(t, err, ErrNotFound)

	client, err := svc.Create(ctx, johnDoeInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, client.ID))
	assert.ErrorIs(t, svc.Delete(ctx, client.ID), ErrNotFound)
}

func TestUpdateClient(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	ctx := context.Background()

	client, err := svc.Create(ctx, johnDoeInput())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, client.ID, UpdateClientInput{
		Name:                   ptr("Johnathan Doe"),
		Email:                  ptr("JOHN.DOE@Example.com"),
		ExpectedCompletionDate: ptr("2024-06-30"),
		PaymentStatus:          ptr(models.PaymentCompleted),
		Qualification: &QualificationUpdate{
			ID:             &client.QualificationID,
			Specialization: ptr("Surgery"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Johnathan Doe", updated.Name)
	assert.Equal(t, "JOHN.DOE@Example.com", updated.Email)

	got, err := svc.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-30", got.ExpectedCompletionDate.UTC().Format("2006-01-02"))
	assert.Equal(t, models.PaymentCompleted, got.PaymentStatus)
	assert.Equal(t, "Surgery", got.Qualification.Specialization)
	assert.Equal(t, "MBBS", got.Qualification.Type)
	assert.Equal(t, client.QualificationID, got.QualificationID)
	assert.Equal(t, int64(1), countRows(t, db, &models.Qualification{}, "1 = 1"))
}

func TestUpdateClient_QualificationIDIsImmutable(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	ctx := context.Background()

	client, err := svc.Create(ctx, johnDoeInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, client.ID, UpdateClientInput{
		Name:          ptr("Changed"),
		Qualification: &QualificationUpdate{ID: ptr(uuid.New()), Type: ptr("MD")},
	})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []FieldViolation{{Field: "qualification.id", Rule: "immutable"}}, ve.Violations)

	got, err := svc.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", got.Name)
	assert.Equal(t, "MBBS", got.Qualification.Type)
}

func TestUpdateClient_RejectsInvalidFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	ctx := context.Background()

	client, err := svc.Create(ctx, johnDoeInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, client.ID, UpdateClientInput{
		Status:      ptr("archived"),
		DateOfBirth: ptr("yesterday"),
	})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Violations, 2)
}

func TestListClients(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	ctx := context.Background()

	clients, err := svc.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.NotNil(t, clients)
	assert.Empty(t, clients)

	for _, passport := range []string{"L1", "L2", "L3"} {
		in := johnDoeInput()
		in.PassportNumber = passport
		c, err := svc.Create(ctx, in)
		require.NoError(t, err)
		seedDependents(t, db, c.ID, 1)
	}

	clients, err = svc.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, clients, 3)
	for _, c := range clients {
		assert.NotEqual(t, uuid.Nil, c.Qualification.ID)
		assert.Len(t, c.Applications, 1)
		assert.Empty(t, c.Documents, "list does not load documents")
		assert.Empty(t, c.Communications, "list does not load communications")
	}

	page, err := svc.List(ctx, ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestSearchClients_DatabaseFallback(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, johnDoeInput())
	require.NoError(t, err)
	other := johnDoeInput()
	other.Name = "Amira Haddad"
	other.Email = "amira@example.com"
	other.PassportNumber = "X9988776"
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	found, err := svc.Search(ctx, "x99", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Amira Haddad", found[0].Name)

	found, err = svc.Search(ctx, "EXAMPLE.COM", 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = svc.Search(ctx, "  ", 0)
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestSearchClients_UsesIndexOrder(t *testing.T) {
	db := newTestDB(t)
	index := newFakeIndex()
	svc := NewClientService(db).WithSearchIndex(index)
	ctx := context.Background()

	first, err := svc.Create(ctx, johnDoeInput())
	require.NoError(t, err)
	in := johnDoeInput()
	in.PassportNumber = "SECOND"
	second, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Len(t, index.docs, 2)

	index.results = []string{second.ID.String(), uuid.NewString(), first.ID.String()}
	found, err := svc.Search(ctx, "doe", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, second.ID, found[0].ID)
	assert.Equal(t, first.ID, found[1].ID)

	// an unavailable index falls back to the database
	index.err = errors.New("connection refused")
	found, err = svc.Search(ctx, "SECOND", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, second.ID, found[0].ID)

	require.NoError(t, svc.Delete(ctx, first.ID))
	assert.NotContains(t, index.docs, first.ID.String())
}

func TestClientEvents(t *testing.T) {
	db := newTestDB(t)
	publisher := &fakePublisher{}
	svc := NewClientService(db).WithEvents(publisher, "client_events")
	ctx := context.Background()

	client, err := svc.Create(ctx, johnDoeInput())
	require.NoError(t, err)
	_, err = svc.Update(ctx, client.ID, UpdateClientInput{Phone: ptr("+971509999999")})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, client.ID))

	require.Len(t, publisher.events, 3)
	var kinds []string
	for _, e := range publisher.events {
		assert.Equal(t, "client_events", e.topic)
		assert.Equal(t, client.ID.String(), e.key)

		var event ClientEvent
		require.NoError(t, json.Unmarshal(e.value, &event))
		assert.Equal(t, client.ID, event.ClientID)
		kinds = append(kinds, event.Event)
	}
	assert.Equal(t, []string{EventClientCreated, EventClientUpdated, EventClientDeleted}, kinds)
}

func TestClientEvents_PublishFailureDoesNotFailMutation(t *testing.T) {
	db := newTestDB(t)
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := NewClientService(db).WithEvents(publisher, "client_events")

	client, err := svc.Create(context.Background(), johnDoeInput())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, client.ID)
}

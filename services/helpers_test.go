package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"elabcrm-backend/config"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory database for the calling test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.ConnectDB(config.Config{
		Env:         "test",
		DBDriver:    "sqlite",
		DatabaseURL: "file:" + name + "?mode=memory&cache=shared&_foreign_keys=on",
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() { _ = config.CloseDB(db) })
	return db
}

func johnDoeInput() CreateClientInput {
	return CreateClientInput{
		Name:                   "John Doe",
		Email:                  "john@example.com",
		Phone:                  "+971501234567",
		PassportNumber:         "P1234567",
		DateOfBirth:            "1988-04-12",
		DataflowCaseNumber:     "DF-2024-001",
		ApplicationDate:        "2024-01-15",
		ExpectedCompletionDate: "2024-03-15",
		Qualification: QualificationInput{
			Type:          "MBBS",
			YearCompleted: "2015",
		},
		PackageType:   "Premium",
		PaymentAmount: 1500,
	}
}

func ptr[T any](v T) *T { return &v }

type publishedEvent struct {
	topic string
	key   string
	value []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{topic: topic, key: string(key), value: value})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeIndex struct {
	docs    map[string]interface{}
	results []string
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[string]interface{}{}}
}

func (f *fakeIndex) IndexDocument(ctx context.Context, id string, doc interface{}) error {
	f.docs[id] = doc
	return nil
}

func (f *fakeIndex) SearchIDs(ctx context.Context, query string, fields []string, limit int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeIndex) DeleteDocument(ctx context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

type fakeMessenger struct {
	sent     []string
	sendErr  error
	statuses map[string]string
}

func (m *fakeMessenger) SendWhatsApp(to, body string) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sent = append(m.sent, to)
	return "SM" + strings.Repeat("0", 30) + string(rune('a'+len(m.sent))), nil
}

func (m *fakeMessenger) MessageStatus(id string) (string, error) {
	status, ok := m.statuses[id]
	if !ok {
		return "", errors.New("unknown message")
	}
	return status, nil
}

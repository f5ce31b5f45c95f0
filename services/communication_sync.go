// services/communication_sync.go
package services

import (
	"context"
	"log"
	"time"

	"elabcrm-backend/models"
	"elabcrm-backend/monitoring"
	"elabcrm-backend/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CommunicationSyncer advances WhatsApp communication statuses from the
// provider's delivery reports.
type CommunicationSyncer struct {
	db        *gorm.DB
	messenger utils.Messenger
	cron      *cron.Cron
}

func NewCommunicationSyncer(db *gorm.DB, messenger utils.Messenger) *CommunicationSyncer {
	return &CommunicationSyncer{db: db, messenger: messenger}
}

// StartScheduler runs SyncStatuses on the given cron schedule until Stop.
func (s *CommunicationSyncer) StartScheduler(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		updated, err := s.SyncStatuses(ctx)
		if err != nil {
			log.Printf("Communication status sync failed: %v", err)
			return
		}
		log.Printf("Communication status sync completed, %d updated", updated)
	})
	if err != nil {
		return err
	}

	s.cron = c
	c.Start()
	log.Printf("Communication status sync scheduled (%s)", schedule)
	return nil
}

func (s *CommunicationSyncer) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// SyncStatuses fetches the provider status of every WhatsApp communication
// not yet read and moves it forward. It returns how many rows changed.
func (s *CommunicationSyncer) SyncStatuses(ctx context.Context) (int, error) {
	var pending []models.Communication
	err := s.db.WithContext(ctx).
		Where("type = ? AND provider_message_id <> '' AND status IN ?",
			models.ChannelWhatsApp, []string{models.CommunicationSent, models.CommunicationDelivered}).
		Find(&pending).Error
	if err != nil {
		return 0, &StoreError{Op: "list pending communications", Err: err}
	}

	updated := 0
	for _, communication := range pending {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}

		providerStatus, err := s.messenger.MessageStatus(communication.ProviderMessageID)
		if err != nil {
			log.Printf("Failed to fetch status for message %s: %v", communication.ProviderMessageID, err)
			continue
		}

		next := communicationStatusFromProvider(providerStatus)
		if models.CommunicationRank(next) <= models.CommunicationRank(communication.Status) {
			continue
		}

		if err := s.db.WithContext(ctx).Model(&models.Communication{}).
			Where("id = ?", communication.ID).
			Update("status", next).Error; err != nil {
			log.Printf("Failed to update communication %s: %v", communication.ID, err)
			continue
		}
		monitoring.CommunicationStatusUpdates.WithLabelValues(next).Inc()
		updated++
	}

	return updated, nil
}

// Twilio reports queued/sending/sent/delivered/read/undelivered/failed; only
// delivered and read move a communication forward.
func communicationStatusFromProvider(status string) string {
	switch status {
	case "delivered":
		return models.CommunicationDelivered
	case "read":
		return models.CommunicationRead
	}
	return ""
}

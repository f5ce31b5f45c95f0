package services

import (
	"context"
	"time"

	"elabcrm-backend/models"
	"elabcrm-backend/utils"

	"gorm.io/gorm"
)

type DashboardOverview struct {
	TotalClients         int64            `json:"totalClients"`
	ActiveClients        int64            `json:"activeClients"`
	ApplicationsByStatus map[string]int64 `json:"applicationsByStatus"`
	PendingPayments      int64            `json:"pendingPayments"`
	PendingPaymentAmount float64          `json:"pendingPaymentAmount"`
	PendingDocuments     int64            `json:"pendingDocuments"`
	Communications       int64            `json:"communications"`
	UpcomingCompletions  int64            `json:"upcomingCompletions"`
}

// upcomingWindow bounds UpcomingCompletions: active clients whose expected
// completion date falls within it, starting today.
const upcomingWindow = 30 * 24 * time.Hour

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

func (s *DashboardService) Overview(ctx context.Context, now time.Time) (*DashboardOverview, error) {
	db := s.db.WithContext(ctx)
	out := &DashboardOverview{ApplicationsByStatus: map[string]int64{}}

	if err := db.Model(&models.Client{}).Count(&out.TotalClients).Error; err != nil {
		return nil, storeError("count clients", err)
	}
	if err := db.Model(&models.Client{}).Where("status = ?", models.ClientActive).Count(&out.ActiveClients).Error; err != nil {
		return nil, storeError("count active clients", err)
	}

	var byStatus []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Application{}).Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, storeError("count applications", err)
	}
	for _, s := range models.ApplicationStatuses {
		out.ApplicationsByStatus[s] = 0
	}
	for _, row := range byStatus {
		out.ApplicationsByStatus[row.Status] = row.Count
	}

	pending := db.Model(&models.Client{}).Where("payment_status = ?", models.PaymentPending)
	if err := pending.Count(&out.PendingPayments).Error; err != nil {
		return nil, storeError("count pending payments", err)
	}
	if err := db.Model(&models.Client{}).Where("payment_status = ?", models.PaymentPending).
		Select("COALESCE(SUM(payment_amount), 0)").Scan(&out.PendingPaymentAmount).Error; err != nil {
		return nil, storeError("sum pending payments", err)
	}

	if err := db.Model(&models.Document{}).Where("status = ?", models.DocumentPending).Count(&out.PendingDocuments).Error; err != nil {
		return nil, storeError("count pending documents", err)
	}
	if err := db.Model(&models.Communication{}).Count(&out.Communications).Error; err != nil {
		return nil, storeError("count communications", err)
	}

	from := utils.BeginningOfDay(now.UTC())
	if err := db.Model(&models.Client{}).
		Where("status = ? AND expected_completion_date >= ? AND expected_completion_date < ?",
			models.ClientActive, from, from.Add(upcomingWindow)).
		Count(&out.UpcomingCompletions).Error; err != nil {
		return nil, storeError("count upcoming completions", err)
	}

	return out, nil
}

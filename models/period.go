package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PeriodStatus is the roll-up derived status of a billing period.
type PeriodStatus string

const (
	PeriodStatusOpen       PeriodStatus = "open"
	PeriodStatusProcessing PeriodStatus = "processing"
	PeriodStatusClosed     PeriodStatus = "closed"
)

// Period is a calendar-month billing bucket for one client company.
// Exactly one period exists per (company, month, year); creation is
// idempotent against that key.
type Period struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_period_company_month" json:"company_id"`
	Company     *ClientCompany `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	PeriodMonth int            `gorm:"not null;uniqueIndex:idx_period_company_month;check:period_month >= 1 AND period_month <= 12" json:"period_month"`
	PeriodYear  int            `gorm:"not null;uniqueIndex:idx_period_company_month" json:"period_year"`
	Status      PeriodStatus   `gorm:"size:20;not null;default:'open';index" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Records []PaymentRecord `gorm:"foreignKey:PeriodID" json:"records,omitempty"`
}

func (Period) TableName() string {
	return "periods"
}

func (p *Period) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// RollupStatus derives the next period status from the statuses of its child
// payment records. The result is monotonic: a period never regresses from
// closed or processing back to open here.
//
//   - no records: status unchanged (nothing to infer)
//   - all records paid: closed
//   - any record past pending-calculation while the period is open: processing
//   - otherwise: unchanged
func RollupStatus(current PeriodStatus, records []PaymentRecord) PeriodStatus {
	if len(records) == 0 {
		return current
	}

	allPaid := true
	anyStarted := false
	for _, r := range records {
		if r.Status != PaymentStatusPaid {
			allPaid = false
		}
		if r.Status.Stage() > stagePending {
			anyStarted = true
		}
	}

	if allPaid {
		return PeriodStatusClosed
	}
	if anyStarted && current == PeriodStatusOpen {
		return PeriodStatusProcessing
	}
	return current
}

// Progress returns the period completion percentage: the mean of the child
// record progress values, 0 when the period has no records.
func (p *Period) Progress() float64 {
	if len(p.Records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range p.Records {
		sum += r.Progress()
	}
	return sum / float64(len(p.Records))
}

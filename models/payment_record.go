package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentStatus is the lifecycle state of a payment record.
type PaymentStatus string

const (
	PaymentStatusPendingCalculation PaymentStatus = "pending_calculation"
	PaymentStatusReadyForInvoice    PaymentStatus = "ready_for_invoice"
	PaymentStatusInvoiced           PaymentStatus = "invoiced"
	PaymentStatusOverdue            PaymentStatus = "overdue"
	PaymentStatusPaid               PaymentStatus = "paid"
	PaymentStatusCancelled          PaymentStatus = "cancelled"
)

// Stage ordering for progress computation. Overdue is a variant of invoiced,
// not a further stage; cancelled contributes nothing.
const (
	stageCancelled = 0
	stagePending   = 1
	stageReady     = 2
	stageInvoiced  = 3
	stagePaid      = 4
	stageMax       = 4
)

var paymentStages = map[PaymentStatus]int{
	PaymentStatusPendingCalculation: stagePending,
	PaymentStatusReadyForInvoice:    stageReady,
	PaymentStatusInvoiced:           stageInvoiced,
	PaymentStatusOverdue:            stageInvoiced,
	PaymentStatusPaid:               stagePaid,
	PaymentStatusCancelled:          stageCancelled,
}

// Stage returns the position of the status in the lifecycle stage order.
func (s PaymentStatus) Stage() int {
	return paymentStages[s]
}

// IsTerminal reports whether no further transition may leave this status.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusCancelled
}

// Valid reports whether s is one of the lifecycle states.
func (s PaymentStatus) Valid() bool {
	_, ok := paymentStages[s]
	return ok
}

// PaymentRecord is one contract's billing line within a period. It is created
// in pending_calculation when the contract becomes billable for the month and
// is mutated only through LifecycleEngine transitions. Cancellation is a
// terminal status, never a deletion.
type PaymentRecord struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PeriodID uuid.UUID `gorm:"type:uuid;not null;index" json:"period_id"`
	Period   *Period   `gorm:"foreignKey:PeriodID" json:"period,omitempty"`

	ContractID uuid.UUID `gorm:"type:uuid;not null;index" json:"contract_id"`
	Contract   *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`

	BillableHours *float64 `json:"billable_hours,omitempty"`

	// Monetary amounts in VND, each populated when the matching stage is
	// reached and never silently cleared afterwards.
	CalculatedAmount *int64 `json:"calculated_amount,omitempty"`
	InvoicedAmount   *int64 `json:"invoiced_amount,omitempty"`
	ReceivedAmount   *int64 `json:"received_amount,omitempty"`

	InvoiceNumber *string    `gorm:"size:50" json:"invoice_number,omitempty"`
	InvoiceDate   *time.Time `gorm:"index" json:"invoice_date,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`

	Status PaymentStatus `gorm:"size:30;not null;default:'pending_calculation';index" json:"status"`
	Notes  string        `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Documents   []EvidenceDocument  `gorm:"foreignKey:PaymentRecordID" json:"documents,omitempty"`
	Transitions []PaymentTransition `gorm:"foreignKey:PaymentRecordID" json:"transitions,omitempty"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}

func (p *PaymentRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// Progress returns the record's lifecycle completion percentage
// (stage/4 * 100, 0 for cancelled).
func (p *PaymentRecord) Progress() float64 {
	return float64(p.Status.Stage()) / float64(stageMax) * 100
}

// PastDue reports whether the record should be flagged overdue at the given
// instant: invoiced, unpaid, and strictly past invoice date + grace window.
func (p *PaymentRecord) PastDue(now time.Time, graceDays int) bool {
	if p.Status != PaymentStatusInvoiced {
		return false
	}
	if p.PaymentDate != nil || p.InvoiceDate == nil {
		return false
	}
	return now.After(p.InvoiceDate.AddDate(0, 0, graceDays))
}

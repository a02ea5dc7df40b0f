package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devlink.vn/backoffice/config"
	"devlink.vn/backoffice/models"
)

// DefaultGraceDays is the window after invoicing before an unpaid invoice is
// flagged overdue. Override with OVERDUE_GRACE_DAYS.
const DefaultGraceDays = 30

// OverdueSweep promotes invoiced records past the grace window to overdue and
// alerts the accountant and manager roles. It runs on a ticker but can also
// be triggered on demand.
type OverdueSweep struct {
	db        *gorm.DB
	engine    *LifecycleEngine
	rollup    *RollupAggregator
	notifier  *NotificationService
	graceDays int
}

// NewOverdueSweep creates a new sweep instance with the configured grace window.
func NewOverdueSweep() *OverdueSweep {
	return NewOverdueSweepWithDB(config.DB, config.EnvInt("OVERDUE_GRACE_DAYS", DefaultGraceDays))
}

// NewOverdueSweepWithDB wires the sweep against an explicit DB handle.
func NewOverdueSweepWithDB(db *gorm.DB, graceDays int) *OverdueSweep {
	return &OverdueSweep{
		db:        db,
		engine:    NewLifecycleEngineWithDB(db),
		rollup:    NewRollupAggregatorWithDB(db),
		notifier:  NewNotificationServiceWithDB(db),
		graceDays: graceDays,
	}
}

// Start runs the sweep on a schedule until the process exits.
func (os *OverdueSweep) Start(interval time.Duration) {
	log.Printf("📅 Starting overdue sweep (every %s, grace %d days)", interval, os.graceDays)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if _, err := os.RunOnce(time.Now()); err != nil {
			log.Printf("⚠️  Overdue sweep failed: %v", err)
		}
	}
}

// RunOnce scans all invoiced, unpaid records and flips those strictly past
// invoice date + grace window to overdue. A failing record is logged and
// skipped; the batch continues. Returns the count of records flipped.
//
// Records already overdue are excluded by the status filter, which makes
// repeated runs idempotent.
func (os *OverdueSweep) RunOnce(now time.Time) (int, error) {
	var candidates []models.PaymentRecord
	if err := os.db.
		Where("status = ? AND payment_date IS NULL AND invoice_date IS NOT NULL", models.PaymentStatusInvoiced).
		Find(&candidates).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch invoiced records: %w", err)
	}

	flipped := 0
	affectedPeriods := make(map[uuid.UUID]bool)

	for _, rec := range candidates {
		if !rec.PastDue(now, os.graceDays) {
			continue
		}

		updated, err := os.engine.MarkOverdue(rec.ID, SystemActor)
		if err != nil {
			log.Printf("⚠️  Sweep: failed to mark record %s overdue: %v", rec.ID, err)
			continue
		}
		flipped++
		affectedPeriods[updated.PeriodID] = true

		os.notifier.Notify(
			[]string{models.RoleAccountant, models.RoleManager},
			"Invoice overdue",
			fmt.Sprintf("Invoice %s (record %s) is unpaid %d days after its invoice date.",
				deref(rec.InvoiceNumber), rec.ID, os.graceDays),
			"payment_record", rec.ID,
			fmt.Sprintf("/periods/%s/payments/%s", rec.PeriodID, rec.ID),
			models.NotificationTypePaymentOverdue,
			models.NotificationPriorityHigh,
		)
	}

	// The engine already rolls up per transition, but re-run once per period
	// so a partially failed batch still converges.
	for periodID := range affectedPeriods {
		if err := os.rollup.Recompute(periodID); err != nil {
			log.Printf("⚠️  Sweep: failed to recompute period %s: %v", periodID, err)
		}
	}

	if flipped > 0 {
		log.Printf("✅ Overdue sweep flipped %d of %d invoiced records", flipped, len(candidates))
	}
	return flipped, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

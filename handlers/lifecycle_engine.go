package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devlink.vn/backoffice/config"
	"devlink.vn/backoffice/models"
)

// Actor identifies who requested a lifecycle transition. System actors are
// the overdue sweep and the contract watcher.
type Actor struct {
	ID     string
	Name   string
	Role   string
	System bool
}

// SystemActor is the actor recorded on sweep-driven transitions.
var SystemActor = Actor{ID: "system", Name: "System", Role: "system", System: true}

// LifecycleEngine validates and executes state transitions on payment
// records. All status mutations in the module go through it; the status
// change and its audit row commit in one transaction, and the owning
// period's status is recomputed after every successful transition.
type LifecycleEngine struct {
	db       *gorm.DB
	store    *DocumentStore
	rollup   *RollupAggregator
	notifier *NotificationService
}

// NewLifecycleEngine creates a new lifecycle engine instance
func NewLifecycleEngine() *LifecycleEngine {
	return NewLifecycleEngineWithDB(config.DB)
}

// NewLifecycleEngineWithDB wires the engine against an explicit DB handle.
func NewLifecycleEngineWithDB(db *gorm.DB) *LifecycleEngine {
	return &LifecycleEngine{
		db:       db,
		store:    NewDocumentStoreWithDB(db),
		rollup:   NewRollupAggregatorWithDB(db),
		notifier: NewNotificationServiceWithDB(db),
	}
}

// Calculate moves a record from pending_calculation to ready_for_invoice.
// Accountant action. Requires billable hours and an attached worksheet;
// derives the calculated amount from the contract's hourly rate. Notes are
// appended, never overwritten.
func (le *LifecycleEngine) Calculate(recordID uuid.UUID, actor Actor, billableHours float64, notes string) (*models.PaymentRecord, error) {
	if billableHours <= 0 {
		return nil, &ValidationError{Field: "billable_hours", Reason: "must be greater than zero"}
	}

	return le.executeTransition(recordID, models.ActionCalculate, actor, func(rec *models.PaymentRecord) error {
		var contract models.Contract
		if err := le.db.First(&contract, "id = ?", rec.ContractID).Error; err != nil {
			return &DependencyError{Dependency: "contract_registry", Err: err}
		}

		amount := int64(math.Round(billableHours * float64(contract.HourlyRate)))
		rec.BillableHours = &billableHours
		rec.CalculatedAmount = &amount
		appendNotes(rec, notes)
		return nil
	})
}

// IssueInvoice moves a record from ready_for_invoice to invoiced.
// Manager approval. Sets the invoiced amount, invoice number and date.
func (le *LifecycleEngine) IssueInvoice(recordID uuid.UUID, actor Actor, invoicedAmount int64, invoiceNumber string, invoiceDate time.Time) (*models.PaymentRecord, error) {
	if invoicedAmount <= 0 {
		return nil, &ValidationError{Field: "invoiced_amount", Reason: "must be greater than zero"}
	}
	if invoiceNumber == "" {
		return nil, &ValidationError{Field: "invoice_number", Reason: "is required"}
	}
	if invoiceDate.IsZero() {
		return nil, &ValidationError{Field: "invoice_date", Reason: "is required"}
	}

	return le.executeTransition(recordID, models.ActionIssueInvoice, actor, func(rec *models.PaymentRecord) error {
		rec.InvoicedAmount = &invoicedAmount
		rec.InvoiceNumber = &invoiceNumber
		rec.InvoiceDate = &invoiceDate
		return nil
	})
}

// RecordPayment moves a record from invoiced or overdue to paid.
// Accountant action. Requires a positive received amount, a payment date and
// an attached receipt.
func (le *LifecycleEngine) RecordPayment(recordID uuid.UUID, actor Actor, receivedAmount int64, paymentDate time.Time) (*models.PaymentRecord, error) {
	if receivedAmount <= 0 {
		return nil, &ValidationError{Field: "received_amount", Reason: "must be greater than zero"}
	}
	if paymentDate.IsZero() {
		return nil, &ValidationError{Field: "payment_date", Reason: "is required"}
	}

	return le.executeTransition(recordID, models.ActionRecordPayment, actor, func(rec *models.PaymentRecord) error {
		rec.ReceivedAmount = &receivedAmount
		rec.PaymentDate = &paymentDate
		return nil
	})
}

// Cancel marks a record cancelled. Manager action from ready_for_invoice;
// from pending_calculation only when the contract has been terminated, since
// a pending record of a live contract is still a billing obligation. Amounts
// already populated are frozen as they stand.
func (le *LifecycleEngine) Cancel(recordID uuid.UUID, actor Actor, comment string) (*models.PaymentRecord, error) {
	return le.executeTransitionWithComment(recordID, models.ActionCancel, actor, comment, func(rec *models.PaymentRecord) error {
		contractStatus := models.ContractStatusActive
		if rec.Status == models.PaymentStatusPendingCalculation {
			var contract models.Contract
			if err := le.db.First(&contract, "id = ?", rec.ContractID).Error; err != nil {
				return &DependencyError{Dependency: "contract_registry", Err: err}
			}
			contractStatus = contract.Status
		}
		if !models.AllowCancel(rec.Status, contractStatus) {
			return &InvalidTransitionError{RecordID: rec.ID, From: rec.Status, Action: models.ActionCancel}
		}
		return nil
	})
}

// MarkOverdue flips an invoiced, unpaid record to overdue. System only;
// driven by the sweep.
func (le *LifecycleEngine) MarkOverdue(recordID uuid.UUID, actor Actor) (*models.PaymentRecord, error) {
	return le.executeTransition(recordID, models.ActionMarkOverdue, actor, func(rec *models.PaymentRecord) error {
		return nil
	})
}

// CancelForTerminatedContract cancels every record of the contract that has
// not yet been invoiced or finished. Called when the contract registry
// reports the contract terminated. Returns the records cancelled.
func (le *LifecycleEngine) CancelForTerminatedContract(contractID uuid.UUID) ([]models.PaymentRecord, error) {
	var contract models.Contract
	if err := le.db.First(&contract, "id = ?", contractID).Error; err != nil {
		return nil, &DependencyError{Dependency: "contract_registry", Err: err}
	}
	if contract.Status != models.ContractStatusTerminated {
		return nil, &ValidationError{Field: "contract", Reason: "is not terminated"}
	}

	var candidates []models.PaymentRecord
	if err := le.db.
		Where("contract_id = ? AND status IN ?", contractID,
			[]models.PaymentStatus{models.PaymentStatusPendingCalculation, models.PaymentStatusReadyForInvoice}).
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch records for contract %s: %w", contractID, err)
	}

	cancelled := make([]models.PaymentRecord, 0, len(candidates))
	for _, rec := range candidates {
		updated, err := le.executeTransitionWithComment(rec.ID, models.ActionCancel, SystemActor,
			fmt.Sprintf("contract %s terminated", contract.ContractCode), func(r *models.PaymentRecord) error {
				return nil
			})
		if err != nil {
			log.Printf("⚠️  Failed to cancel record %s for terminated contract: %v", rec.ID, err)
			continue
		}
		cancelled = append(cancelled, *updated)
	}
	return cancelled, nil
}

// GetRecord retrieves a payment record with its documents and history.
func (le *LifecycleEngine) GetRecord(recordID uuid.UUID) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	if err := le.db.
		Preload("Contract").
		Preload("Documents").
		Preload("Transitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("transitioned_at DESC")
		}).
		First(&rec, "id = ?", recordID).Error; err != nil {
		return nil, fmt.Errorf("payment record not found: %w", err)
	}
	return &rec, nil
}

// GetHistory retrieves the transition audit trail for a record.
func (le *LifecycleEngine) GetHistory(recordID uuid.UUID) ([]models.PaymentTransition, error) {
	var transitions []models.PaymentTransition
	if err := le.db.
		Where("payment_record_id = ?", recordID).
		Order("transitioned_at ASC").
		Find(&transitions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch transition history: %w", err)
	}
	return transitions, nil
}

func (le *LifecycleEngine) executeTransition(recordID uuid.UUID, action models.TransitionAction, actor Actor, apply func(*models.PaymentRecord) error) (*models.PaymentRecord, error) {
	return le.executeTransitionWithComment(recordID, action, actor, "", apply)
}

// executeTransitionWithComment is the single path every status change takes:
// guard checks, evidence gate, field mutation, then status change plus audit
// row in one transaction, then period roll-up.
func (le *LifecycleEngine) executeTransitionWithComment(recordID uuid.UUID, action models.TransitionAction, actor Actor, comment string, apply func(*models.PaymentRecord) error) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	if err := le.db.First(&rec, "id = ?", recordID).Error; err != nil {
		return nil, fmt.Errorf("payment record not found: %w", err)
	}

	def, outcome := models.ResolveTransition(rec.Status, action)
	switch outcome {
	case models.TransitionRejected:
		return nil, &InvalidTransitionError{RecordID: rec.ID, From: rec.Status, Action: action}
	case models.TransitionNoop:
		// Idempotent re-entry: the record already sits in the action's
		// target status. Succeed without side effects.
		return &rec, nil
	}
	if def.SystemOnly && !actor.System {
		return nil, &InvalidTransitionError{RecordID: rec.ID, From: rec.Status, Action: action}
	}

	// Evidence gate: the required document type must be present at the
	// moment of the call, so every financial transition leaves a paper trail.
	if def.RequiredEvidence != "" {
		has, err := le.store.HasDocumentOfType(rec.ID, def.RequiredEvidence)
		if err != nil {
			return nil, fmt.Errorf("failed to check evidence for record %s: %w", rec.ID, err)
		}
		if !has {
			return nil, &MissingEvidenceError{RecordID: rec.ID, DocumentType: def.RequiredEvidence}
		}
	}

	if err := apply(&rec); err != nil {
		return nil, err
	}

	previousStatus := rec.Status
	rec.Status = def.To

	tx := le.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Status-guarded update: a concurrent writer that already moved the
	// record loses here and the caller gets InvalidTransitionError on retry.
	result := tx.Model(&models.PaymentRecord{}).
		Where("id = ? AND status = ?", rec.ID, previousStatus).
		Select("*").Omit("id", "created_at").
		Updates(&rec)
	if result.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update payment record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, &InvalidTransitionError{RecordID: rec.ID, From: previousStatus, Action: action}
	}

	snapshot, err := json.Marshal(&rec)
	if err != nil {
		snapshot = nil
	}
	transition := models.PaymentTransition{
		PaymentRecordID: rec.ID,
		FromStatus:      previousStatus,
		ToStatus:        def.To,
		Action:          action,
		ActorID:         actor.ID,
		ActorName:       actor.Name,
		ActorRole:       actor.Role,
		Comment:         comment,
		Snapshot:        snapshot,
		TransitionedAt:  time.Now(),
	}
	if err := tx.Create(&transition).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create transition record: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}

	log.Printf("✅ Transitioned payment record %s: %s -> %s (action: %s, actor: %s)",
		rec.ID, previousStatus, def.To, action, actor.Name)

	// Roll-up runs after commit; it derives purely from current child states,
	// so repeated or concurrent recomputes are safe.
	if err := le.rollup.Recompute(rec.PeriodID); err != nil {
		log.Printf("⚠️  Failed to recompute period %s after transition: %v", rec.PeriodID, err)
	}

	le.notifyTransition(&rec, previousStatus, action)

	return &rec, nil
}

// notifyTransition raises role alerts for transitions other surfaces act on.
// Failures are logged and swallowed; a committed transition is never rolled
// back for a notification.
func (le *LifecycleEngine) notifyTransition(rec *models.PaymentRecord, from models.PaymentStatus, action models.TransitionAction) {
	switch action {
	case models.ActionCalculate:
		le.notifier.Notify(
			[]string{models.RoleManager},
			"Payment ready for invoice",
			fmt.Sprintf("Payment record %s has been calculated and awaits invoice approval.", rec.ID),
			"payment_record", rec.ID,
			fmt.Sprintf("/periods/%s/payments/%s", rec.PeriodID, rec.ID),
			models.NotificationTypePaymentTransition,
			models.NotificationPriorityNormal,
		)
	case models.ActionRecordPayment:
		le.notifier.Notify(
			[]string{models.RoleManager, models.RoleSales},
			"Payment received",
			fmt.Sprintf("Payment record %s has been marked paid.", rec.ID),
			"payment_record", rec.ID,
			fmt.Sprintf("/periods/%s/payments/%s", rec.PeriodID, rec.ID),
			models.NotificationTypePaymentTransition,
			models.NotificationPriorityNormal,
		)
	}
}

func appendNotes(rec *models.PaymentRecord, notes string) {
	if notes == "" {
		return
	}
	if rec.Notes == "" {
		rec.Notes = notes
		return
	}
	rec.Notes = rec.Notes + "\n" + notes
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TransitionAction names a lifecycle operation a caller can request on a
// payment record.
type TransitionAction string

const (
	ActionCalculate     TransitionAction = "calculate"
	ActionIssueInvoice  TransitionAction = "issue_invoice"
	ActionRecordPayment TransitionAction = "record_payment"
	ActionCancel        TransitionAction = "cancel"
	ActionMarkOverdue   TransitionAction = "mark_overdue"
)

// TransitionDef is one row of the closed lifecycle transition table.
type TransitionDef struct {
	From   PaymentStatus
	To     PaymentStatus
	Action TransitionAction

	// RequiredEvidence, when non-empty, names the document type that must be
	// attached to the record before the transition may commit.
	RequiredEvidence DocumentType

	// SystemOnly transitions are driven by the background sweep or the
	// contract watcher, never by an interactive caller.
	SystemOnly bool
}

// transitionTable is the single source of truth for the payment lifecycle.
// Both cancel rows share one action: the engine resolves the applicable row
// from the record's current status.
var transitionTable = []TransitionDef{
	{From: PaymentStatusPendingCalculation, To: PaymentStatusReadyForInvoice, Action: ActionCalculate, RequiredEvidence: DocumentTypeWorksheet},
	{From: PaymentStatusReadyForInvoice, To: PaymentStatusInvoiced, Action: ActionIssueInvoice},
	{From: PaymentStatusInvoiced, To: PaymentStatusPaid, Action: ActionRecordPayment, RequiredEvidence: DocumentTypeReceipt},
	{From: PaymentStatusOverdue, To: PaymentStatusPaid, Action: ActionRecordPayment, RequiredEvidence: DocumentTypeReceipt},
	{From: PaymentStatusInvoiced, To: PaymentStatusOverdue, Action: ActionMarkOverdue, SystemOnly: true},
	{From: PaymentStatusPendingCalculation, To: PaymentStatusCancelled, Action: ActionCancel},
	{From: PaymentStatusReadyForInvoice, To: PaymentStatusCancelled, Action: ActionCancel},
}

// FindTransition resolves the transition table row for an action requested
// from the given status. ok is false when the table has no such row.
func FindTransition(from PaymentStatus, action TransitionAction) (TransitionDef, bool) {
	for _, t := range transitionTable {
		if t.From == from && t.Action == action {
			return t, true
		}
	}
	return TransitionDef{}, false
}

// AllowCancel decides whether a record may be cancelled given its status and
// the status of its contract. Ready-for-invoice records can always be
// cancelled by a manager; a record still pending calculation belongs to a
// live billing obligation and is only cancellable once the contract is
// terminated.
func AllowCancel(from PaymentStatus, contract ContractStatus) bool {
	switch from {
	case PaymentStatusReadyForInvoice:
		return true
	case PaymentStatusPendingCalculation:
		return contract == ContractStatusTerminated
	}
	return false
}

// TransitionOutcome classifies what the engine should do with a requested
// action before any mutation happens.
type TransitionOutcome int

const (
	TransitionRejected TransitionOutcome = iota
	TransitionNoop
	TransitionProceed
)

// ResolveTransition applies the guard order every status change takes:
// cancelled records reject everything including a repeated cancel, a record
// already sitting in the action's target status is a side-effect-free no-op,
// and otherwise the transition table must carry a row for (current, action).
func ResolveTransition(current PaymentStatus, action TransitionAction) (TransitionDef, TransitionOutcome) {
	if current == PaymentStatusCancelled {
		return TransitionDef{}, TransitionRejected
	}
	if current == action.TargetStatus() {
		return TransitionDef{}, TransitionNoop
	}
	def, ok := FindTransition(current, action)
	if !ok {
		return TransitionDef{}, TransitionRejected
	}
	return def, TransitionProceed
}

// TargetStatus returns the destination status an action leads to, independent
// of the source state. Used for idempotent re-entry detection.
func (a TransitionAction) TargetStatus() PaymentStatus {
	for _, t := range transitionTable {
		if t.Action == a {
			return t.To
		}
	}
	return ""
}

// PaymentTransition is the audit row recorded for every executed lifecycle
// transition, committed in the same transaction as the status change.
type PaymentTransition struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentRecordID uuid.UUID        `gorm:"type:uuid;not null;index" json:"payment_record_id"`
	FromStatus      PaymentStatus    `gorm:"size:30;not null" json:"from_status"`
	ToStatus        PaymentStatus    `gorm:"size:30;not null" json:"to_status"`
	Action          TransitionAction `gorm:"size:30;not null" json:"action"`
	ActorID         string           `gorm:"size:255;not null" json:"actor_id"`
	ActorName       string           `gorm:"size:100" json:"actor_name,omitempty"`
	ActorRole       string           `gorm:"size:50" json:"actor_role,omitempty"`
	Comment         string           `gorm:"type:text" json:"comment,omitempty"`

	// Snapshot is the record serialized as it was committed, so the audit
	// trail stays readable after later transitions mutate the row.
	Snapshot datatypes.JSON `gorm:"type:jsonb" json:"snapshot,omitempty"`

	TransitionedAt time.Time `gorm:"not null;index" json:"transitioned_at"`
}

func (PaymentTransition) TableName() string {
	return "payment_transitions"
}

func (t *PaymentTransition) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

package models

import "testing"

func TestFindTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     PaymentStatus
		action   TransitionAction
		wantTo   PaymentStatus
		wantOK   bool
		evidence DocumentType
	}{
		// Happy path
		{"calculate from pending", PaymentStatusPendingCalculation, ActionCalculate, PaymentStatusReadyForInvoice, true, DocumentTypeWorksheet},
		{"issue invoice from ready", PaymentStatusReadyForInvoice, ActionIssueInvoice, PaymentStatusInvoiced, true, ""},
		{"record payment from invoiced", PaymentStatusInvoiced, ActionRecordPayment, PaymentStatusPaid, true, DocumentTypeReceipt},
		{"record payment from overdue", PaymentStatusOverdue, ActionRecordPayment, PaymentStatusPaid, true, DocumentTypeReceipt},
		{"mark overdue from invoiced", PaymentStatusInvoiced, ActionMarkOverdue, PaymentStatusOverdue, true, ""},

		// Cancel branch
		{"cancel from pending", PaymentStatusPendingCalculation, ActionCancel, PaymentStatusCancelled, true, ""},
		{"cancel from ready", PaymentStatusReadyForInvoice, ActionCancel, PaymentStatusCancelled, true, ""},

		// Skipping stages is never allowed
		{"issue invoice from pending", PaymentStatusPendingCalculation, ActionIssueInvoice, "", false, ""},
		{"record payment from pending", PaymentStatusPendingCalculation, ActionRecordPayment, "", false, ""},
		{"record payment from ready", PaymentStatusReadyForInvoice, ActionRecordPayment, "", false, ""},

		// Moving backwards is never allowed
		{"calculate from invoiced", PaymentStatusInvoiced, ActionCalculate, "", false, ""},
		{"calculate from paid", PaymentStatusPaid, ActionCalculate, "", false, ""},

		// Cancel once invoiced or paid is not possible
		{"cancel from invoiced", PaymentStatusInvoiced, ActionCancel, "", false, ""},
		{"cancel from overdue", PaymentStatusOverdue, ActionCancel, "", false, ""},
		{"cancel from paid", PaymentStatusPaid, ActionCancel, "", false, ""},

		// Terminal states have no outgoing rows at all
		{"record payment from paid", PaymentStatusPaid, ActionRecordPayment, "", false, ""},
		{"calculate from cancelled", PaymentStatusCancelled, ActionCalculate, "", false, ""},
		{"issue invoice from cancelled", PaymentStatusCancelled, ActionIssueInvoice, "", false, ""},
		{"record payment from cancelled", PaymentStatusCancelled, ActionRecordPayment, "", false, ""},

		// Overdue is system-driven only and never starts elsewhere
		{"mark overdue from pending", PaymentStatusPendingCalculation, ActionMarkOverdue, "", false, ""},
		{"mark overdue from ready", PaymentStatusReadyForInvoice, ActionMarkOverdue, "", false, ""},
		{"mark overdue from paid", PaymentStatusPaid, ActionMarkOverdue, "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := FindTransition(tt.from, tt.action)
			if ok != tt.wantOK {
				t.Fatalf("FindTransition(%q, %q) ok = %v, expected %v", tt.from, tt.action, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if def.To != tt.wantTo {
				t.Errorf("FindTransition(%q, %q).To = %q, expected %q", tt.from, tt.action, def.To, tt.wantTo)
			}
			if def.RequiredEvidence != tt.evidence {
				t.Errorf("FindTransition(%q, %q).RequiredEvidence = %q, expected %q", tt.from, tt.action, def.RequiredEvidence, tt.evidence)
			}
		})
	}
}

func TestTransitionTableSystemOnly(t *testing.T) {
	def, ok := FindTransition(PaymentStatusInvoiced, ActionMarkOverdue)
	if !ok {
		t.Fatal("expected a mark_overdue row from invoiced")
	}
	if !def.SystemOnly {
		t.Error("mark_overdue must be system-only")
	}

	for _, action := range []TransitionAction{ActionCalculate, ActionIssueInvoice, ActionRecordPayment, ActionCancel} {
		for _, from := range []PaymentStatus{
			PaymentStatusPendingCalculation,
			PaymentStatusReadyForInvoice,
			PaymentStatusInvoiced,
			PaymentStatusOverdue,
		} {
			if d, ok := FindTransition(from, action); ok && d.SystemOnly {
				t.Errorf("%q from %q should be caller-driven, got system-only", action, from)
			}
		}
	}
}

func TestAllowCancel(t *testing.T) {
	tests := []struct {
		name     string
		from     PaymentStatus
		contract ContractStatus
		expected bool
	}{
		// Ready-for-invoice cancellation does not depend on the contract
		{"ready with active contract", PaymentStatusReadyForInvoice, ContractStatusActive, true},
		{"ready with terminated contract", PaymentStatusReadyForInvoice, ContractStatusTerminated, true},
		{"ready with suspended contract", PaymentStatusReadyForInvoice, ContractStatusSuspended, true},

		// A pending record of a live contract is still a billing obligation
		{"pending with active contract", PaymentStatusPendingCalculation, ContractStatusActive, false},
		{"pending with suspended contract", PaymentStatusPendingCalculation, ContractStatusSuspended, false},
		{"pending with draft contract", PaymentStatusPendingCalculation, ContractStatusDraft, false},
		{"pending with terminated contract", PaymentStatusPendingCalculation, ContractStatusTerminated, true},

		// Later stages never cancel regardless of the contract
		{"invoiced with terminated contract", PaymentStatusInvoiced, ContractStatusTerminated, false},
		{"overdue with terminated contract", PaymentStatusOverdue, ContractStatusTerminated, false},
		{"paid with terminated contract", PaymentStatusPaid, ContractStatusTerminated, false},
		{"cancelled with terminated contract", PaymentStatusCancelled, ContractStatusTerminated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllowCancel(tt.from, tt.contract); got != tt.expected {
				t.Errorf("AllowCancel(%q, %q) = %v, expected %v", tt.from, tt.contract, got, tt.expected)
			}
		})
	}
}

func TestResolveTransition(t *testing.T) {
	tests := []struct {
		name    string
		current PaymentStatus
		action  TransitionAction
		outcome TransitionOutcome
	}{
		// Valid table rows proceed
		{"calculate from pending proceeds", PaymentStatusPendingCalculation, ActionCalculate, TransitionProceed},
		{"issue invoice from ready proceeds", PaymentStatusReadyForInvoice, ActionIssueInvoice, TransitionProceed},
		{"record payment from invoiced proceeds", PaymentStatusInvoiced, ActionRecordPayment, TransitionProceed},
		{"record payment from overdue proceeds", PaymentStatusOverdue, ActionRecordPayment, TransitionProceed},
		{"mark overdue from invoiced proceeds", PaymentStatusInvoiced, ActionMarkOverdue, TransitionProceed},

		// Re-requesting a reached status is a side-effect-free success
		{"calculate on ready is a no-op", PaymentStatusReadyForInvoice, ActionCalculate, TransitionNoop},
		{"issue invoice on invoiced is a no-op", PaymentStatusInvoiced, ActionIssueInvoice, TransitionNoop},
		{"record payment on paid is a no-op", PaymentStatusPaid, ActionRecordPayment, TransitionNoop},
		{"mark overdue on overdue is a no-op", PaymentStatusOverdue, ActionMarkOverdue, TransitionNoop},

		// Cancelled is immutable: everything is rejected, cancel included
		{"cancel on cancelled rejected", PaymentStatusCancelled, ActionCancel, TransitionRejected},
		{"calculate on cancelled rejected", PaymentStatusCancelled, ActionCalculate, TransitionRejected},
		{"issue invoice on cancelled rejected", PaymentStatusCancelled, ActionIssueInvoice, TransitionRejected},
		{"record payment on cancelled rejected", PaymentStatusCancelled, ActionRecordPayment, TransitionRejected},
		{"mark overdue on cancelled rejected", PaymentStatusCancelled, ActionMarkOverdue, TransitionRejected},

		// Actions with no table row are rejected
		{"issue invoice from pending rejected", PaymentStatusPendingCalculation, ActionIssueInvoice, TransitionRejected},
		{"record payment from ready rejected", PaymentStatusReadyForInvoice, ActionRecordPayment, TransitionRejected},
		{"cancel from invoiced rejected", PaymentStatusInvoiced, ActionCancel, TransitionRejected},
		{"calculate from paid rejected", PaymentStatusPaid, ActionCalculate, TransitionRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, outcome := ResolveTransition(tt.current, tt.action)
			if outcome != tt.outcome {
				t.Fatalf("ResolveTransition(%q, %q) outcome = %v, expected %v", tt.current, tt.action, outcome, tt.outcome)
			}
			if outcome == TransitionProceed && def.To == "" {
				t.Errorf("ResolveTransition(%q, %q) proceeded without a transition row", tt.current, tt.action)
			}
		})
	}
}

func TestTargetStatus(t *testing.T) {
	tests := []struct {
		action TransitionAction
		want   PaymentStatus
	}{
		{ActionCalculate, PaymentStatusReadyForInvoice},
		{ActionIssueInvoice, PaymentStatusInvoiced},
		{ActionRecordPayment, PaymentStatusPaid},
		{ActionCancel, PaymentStatusCancelled},
		{ActionMarkOverdue, PaymentStatusOverdue},
		{TransitionAction("unknown"), ""},
	}

	for _, tt := range tests {
		if got := tt.action.TargetStatus(); got != tt.want {
			t.Errorf("TargetStatus(%q) = %q, expected %q", tt.action, got, tt.want)
		}
	}
}

// Every row of the table must connect valid states, and every non-terminal
// state must have at least one way forward.
func TestTransitionTableConsistency(t *testing.T) {
	outgoing := map[PaymentStatus]int{}
	for _, def := range transitionTable {
		if !def.From.Valid() {
			t.Errorf("transition %q has invalid From %q", def.Action, def.From)
		}
		if !def.To.Valid() {
			t.Errorf("transition %q has invalid To %q", def.Action, def.To)
		}
		if def.From.IsTerminal() {
			t.Errorf("transition %q leaves terminal state %q", def.Action, def.From)
		}
		outgoing[def.From]++
	}

	for _, s := range []PaymentStatus{
		PaymentStatusPendingCalculation,
		PaymentStatusReadyForInvoice,
		PaymentStatusInvoiced,
		PaymentStatusOverdue,
	} {
		if outgoing[s] == 0 {
			t.Errorf("non-terminal state %q has no outgoing transition", s)
		}
	}
}

func BenchmarkFindTransition(b *testing.B) {
	for i := 0; i < b.N; i++ {
		FindTransition(PaymentStatusInvoiced, ActionRecordPayment)
	}
}

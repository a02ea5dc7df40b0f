package models

import (
	"testing"
	"time"
)

func TestPaymentStatusStage(t *testing.T) {
	tests := []struct {
		status PaymentStatus
		stage  int
	}{
		{PaymentStatusPendingCalculation, 1},
		{PaymentStatusReadyForInvoice, 2},
		{PaymentStatusInvoiced, 3},
		{PaymentStatusOverdue, 3}, // overdue is invoiced with a flag, not a later stage
		{PaymentStatusPaid, 4},
		{PaymentStatusCancelled, 0},
	}

	for _, tt := range tests {
		if got := tt.status.Stage(); got != tt.stage {
			t.Errorf("Stage(%q) = %d, expected %d", tt.status, got, tt.stage)
		}
	}
}

func TestPaymentStatusIsTerminal(t *testing.T) {
	terminal := map[PaymentStatus]bool{
		PaymentStatusPendingCalculation: false,
		PaymentStatusReadyForInvoice:    false,
		PaymentStatusInvoiced:           false,
		PaymentStatusOverdue:            false,
		PaymentStatusPaid:               true,
		PaymentStatusCancelled:          true,
	}

	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("IsTerminal(%q) = %v, expected %v", status, got, want)
		}
	}
}

func TestPaymentRecordProgress(t *testing.T) {
	tests := []struct {
		status   PaymentStatus
		expected float64
	}{
		{PaymentStatusPendingCalculation, 25},
		{PaymentStatusReadyForInvoice, 50},
		{PaymentStatusInvoiced, 75},
		{PaymentStatusOverdue, 75},
		{PaymentStatusPaid, 100},
		{PaymentStatusCancelled, 0},
	}

	for _, tt := range tests {
		rec := PaymentRecord{Status: tt.status}
		if got := rec.Progress(); got != tt.expected {
			t.Errorf("Progress with status %q = %v, expected %v", tt.status, got, tt.expected)
		}
	}
}

func TestPastDue(t *testing.T) {
	invoiceDate := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	paymentDate := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	const graceDays = 30

	tests := []struct {
		name     string
		record   PaymentRecord
		now      time.Time
		expected bool
	}{
		{
			name:     "31 days after invoice flips",
			record:   PaymentRecord{Status: PaymentStatusInvoiced, InvoiceDate: &invoiceDate},
			now:      invoiceDate.AddDate(0, 0, 31),
			expected: true,
		},
		{
			name:     "29 days after invoice does not flip",
			record:   PaymentRecord{Status: PaymentStatusInvoiced, InvoiceDate: &invoiceDate},
			now:      invoiceDate.AddDate(0, 0, 29),
			expected: false,
		},
		{
			name:     "exactly 30 days does not flip",
			record:   PaymentRecord{Status: PaymentStatusInvoiced, InvoiceDate: &invoiceDate},
			now:      invoiceDate.AddDate(0, 0, graceDays),
			expected: false,
		},
		{
			name:     "one second past the window flips",
			record:   PaymentRecord{Status: PaymentStatusInvoiced, InvoiceDate: &invoiceDate},
			now:      invoiceDate.AddDate(0, 0, graceDays).Add(time.Second),
			expected: true,
		},
		{
			name:     "payment already recorded never flips",
			record:   PaymentRecord{Status: PaymentStatusInvoiced, InvoiceDate: &invoiceDate, PaymentDate: &paymentDate},
			now:      invoiceDate.AddDate(0, 0, 90),
			expected: false,
		},
		{
			name:     "missing invoice date never flips",
			record:   PaymentRecord{Status: PaymentStatusInvoiced},
			now:      invoiceDate.AddDate(0, 0, 90),
			expected: false,
		},
		{
			name:     "pending record is not past due",
			record:   PaymentRecord{Status: PaymentStatusPendingCalculation, InvoiceDate: &invoiceDate},
			now:      invoiceDate.AddDate(0, 0, 90),
			expected: false,
		},
		{
			name:     "already overdue is not re-flagged",
			record:   PaymentRecord{Status: PaymentStatusOverdue, InvoiceDate: &invoiceDate},
			now:      invoiceDate.AddDate(0, 0, 90),
			expected: false,
		},
		{
			name:     "paid record is not past due",
			record:   PaymentRecord{Status: PaymentStatusPaid, InvoiceDate: &invoiceDate, PaymentDate: &paymentDate},
			now:      invoiceDate.AddDate(0, 0, 90),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.PastDue(tt.now, graceDays); got != tt.expected {
				t.Errorf("PastDue(%v, %d) = %v, expected %v", tt.now, graceDays, got, tt.expected)
			}
		})
	}
}

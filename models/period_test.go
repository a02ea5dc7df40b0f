package models

import (
	"testing"
	"time"
)

func records(statuses ...PaymentStatus) []PaymentRecord {
	out := make([]PaymentRecord, len(statuses))
	for i, s := range statuses {
		out[i] = PaymentRecord{Status: s}
	}
	return out
}

func TestRollupStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  PeriodStatus
		statuses []PaymentStatus
		expected PeriodStatus
	}{
		{
			name:     "no records leaves status unchanged",
			current:  PeriodStatusOpen,
			statuses: nil,
			expected: PeriodStatusOpen,
		},
		{
			name:     "all pending stays open",
			current:  PeriodStatusOpen,
			statuses: []PaymentStatus{PaymentStatusPendingCalculation, PaymentStatusPendingCalculation},
			expected: PeriodStatusOpen,
		},
		{
			name:     "one record started moves to processing",
			current:  PeriodStatusOpen,
			statuses: []PaymentStatus{PaymentStatusReadyForInvoice, PaymentStatusPendingCalculation},
			expected: PeriodStatusProcessing,
		},
		{
			name:     "two paid one invoiced is still processing",
			current:  PeriodStatusProcessing,
			statuses: []PaymentStatus{PaymentStatusPaid, PaymentStatusPaid, PaymentStatusInvoiced},
			expected: PeriodStatusProcessing,
		},
		{
			name:     "all paid closes the period",
			current:  PeriodStatusProcessing,
			statuses: []PaymentStatus{PaymentStatusPaid, PaymentStatusPaid, PaymentStatusPaid},
			expected: PeriodStatusClosed,
		},
		{
			name:     "single paid record closes",
			current:  PeriodStatusOpen,
			statuses: []PaymentStatus{PaymentStatusPaid},
			expected: PeriodStatusClosed,
		},
		{
			name:     "overdue record keeps period processing",
			current:  PeriodStatusProcessing,
			statuses: []PaymentStatus{PaymentStatusPaid, PaymentStatusOverdue},
			expected: PeriodStatusProcessing,
		},
		{
			name:     "cancelled record blocks closing",
			current:  PeriodStatusProcessing,
			statuses: []PaymentStatus{PaymentStatusPaid, PaymentStatusCancelled},
			expected: PeriodStatusProcessing,
		},
		{
			name:     "processing never regresses to open",
			current:  PeriodStatusProcessing,
			statuses: []PaymentStatus{PaymentStatusPendingCalculation},
			expected: PeriodStatusProcessing,
		},
		{
			name:     "closed never regresses",
			current:  PeriodStatusClosed,
			statuses: []PaymentStatus{PaymentStatusPaid, PaymentStatusInvoiced},
			expected: PeriodStatusClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RollupStatus(tt.current, records(tt.statuses...))
			if got != tt.expected {
				t.Errorf("RollupStatus(%q, %v) = %q, expected %q", tt.current, tt.statuses, got, tt.expected)
			}
		})
	}
}

// Paying the last open record is what closes a period: two paid and one
// invoiced keeps it processing, flipping the third to paid closes it.
func TestRollupClosesOnLastPayment(t *testing.T) {
	children := records(PaymentStatusPaid, PaymentStatusPaid, PaymentStatusInvoiced)

	status := RollupStatus(PeriodStatusProcessing, children)
	if status != PeriodStatusProcessing {
		t.Fatalf("period with an invoiced record rolled up to %q, expected processing", status)
	}

	children[2].Status = PaymentStatusPaid
	status = RollupStatus(status, children)
	if status != PeriodStatusClosed {
		t.Fatalf("period with all records paid rolled up to %q, expected closed", status)
	}
}

func TestPeriodProgress(t *testing.T) {
	tests := []struct {
		name     string
		statuses []PaymentStatus
		expected float64
	}{
		{"empty period", nil, 0},
		{"all pending", []PaymentStatus{PaymentStatusPendingCalculation, PaymentStatusPendingCalculation}, 25},
		{"all paid", []PaymentStatus{PaymentStatusPaid, PaymentStatusPaid}, 100},
		{"half done", []PaymentStatus{PaymentStatusPaid, PaymentStatusCancelled}, 50},
		{"mixed", []PaymentStatus{PaymentStatusPaid, PaymentStatusInvoiced, PaymentStatusPendingCalculation, PaymentStatusReadyForInvoice}, 62.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Period{Records: records(tt.statuses...)}
			if got := p.Progress(); got != tt.expected {
				t.Errorf("Progress() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestContractActiveDuring(t *testing.T) {
	from := time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		contract Contract
		year     int
		month    time.Month
		expected bool
	}{
		{"month fully inside range", Contract{ActiveFrom: from, ActiveTo: &to}, 2026, time.March, true},
		{"starts mid-month counts", Contract{ActiveFrom: from, ActiveTo: &to}, 2026, time.February, true},
		{"ends mid-month counts", Contract{ActiveFrom: from, ActiveTo: &to}, 2026, time.May, true},
		{"month before range", Contract{ActiveFrom: from, ActiveTo: &to}, 2026, time.January, false},
		{"month after range", Contract{ActiveFrom: from, ActiveTo: &to}, 2026, time.June, false},
		{"open-ended contract far future", Contract{ActiveFrom: from}, 2030, time.December, true},
		{"open-ended contract before start", Contract{ActiveFrom: from}, 2026, time.January, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.contract.ActiveDuring(tt.year, tt.month); got != tt.expected {
				t.Errorf("ActiveDuring(%d, %v) = %v, expected %v", tt.year, tt.month, got, tt.expected)
			}
		})
	}
}

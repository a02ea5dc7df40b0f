package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"devlink.vn/backoffice/models"
)

func TestIsLifecycleError(t *testing.T) {
	recordID := uuid.New()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "invalid transition is a lifecycle error",
			err:      &InvalidTransitionError{RecordID: recordID, From: models.PaymentStatusPaid, Action: models.ActionCancel},
			expected: true,
		},
		{
			name:     "missing evidence is a lifecycle error",
			err:      &MissingEvidenceError{RecordID: recordID, DocumentType: models.DocumentTypeReceipt},
			expected: true,
		},
		{
			name:     "validation failure is a lifecycle error",
			err:      &ValidationError{Field: "billable_hours", Reason: "must be positive"},
			expected: true,
		},
		{
			name:     "upload failure is infrastructure",
			err:      &UploadError{Err: errors.New("bucket unreachable")},
			expected: false,
		},
		{
			name:     "dependency failure is infrastructure",
			err:      &DependencyError{Dependency: "contract registry", Err: errors.New("timeout")},
			expected: false,
		},
		{
			name:     "wrapped lifecycle error still detected",
			err:      fmt.Errorf("calculate: %w", &ValidationError{Field: "billable_hours", Reason: "missing"}),
			expected: true,
		},
		{
			name:     "plain error is not",
			err:      errors.New("disk full"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLifecycleError(tt.err); got != tt.expected {
				t.Errorf("IsLifecycleError(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestWriteTransitionErrorStatusCodes(t *testing.T) {
	recordID := uuid.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid transition maps to conflict", &InvalidTransitionError{RecordID: recordID, From: models.PaymentStatusCancelled, Action: models.ActionCalculate}, http.StatusConflict},
		{"missing evidence maps to unprocessable", &MissingEvidenceError{RecordID: recordID, DocumentType: models.DocumentTypeWorksheet}, http.StatusUnprocessableEntity},
		{"validation maps to bad request", &ValidationError{Field: "received_amount", Reason: "required"}, http.StatusBadRequest},
		{"upload maps to bad gateway", &UploadError{Err: errors.New("write failed")}, http.StatusBadGateway},
		{"dependency maps to bad gateway", &DependencyError{Dependency: "contract registry", Err: errors.New("down")}, http.StatusBadGateway},
		{"unknown maps to internal error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeTransitionError(rr, tt.err)
			if rr.Code != tt.wantStatus {
				t.Errorf("writeTransitionError(%T) wrote status %d, expected %d", tt.err, rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	var err error = &DependencyError{Dependency: "contract registry", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("DependencyError should unwrap to its cause")
	}

	err = &UploadError{Err: cause}
	if !errors.Is(err, cause) {
		t.Error("UploadError should unwrap to its cause")
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"devlink.vn/backoffice/models"
)

// dateLayout is the wire format for invoice and payment dates.
const dateLayout = "2006-01-02"

// GetPaymentRecordHandler returns one record with contract, evidence and
// transition history.
func GetPaymentRecordHandler(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}

	rec, err := NewLifecycleEngine().GetRecord(recordID)
	if err != nil {
		http.Error(w, "payment record not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"record":   rec,
		"progress": rec.Progress(),
	})
}

// GetPaymentHistoryHandler returns a record's transition audit trail.
func GetPaymentHistoryHandler(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}

	history, err := NewLifecycleEngine().GetHistory(recordID)
	if err != nil {
		http.Error(w, "failed to fetch history: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"history": history})
}

// CalculatePaymentHandler moves a record to ready_for_invoice. Accepts
// multipart form data: billable_hours, notes, and an optional worksheet file
// uploaded inline. The upload runs first; when it fails the transition is
// never attempted.
func CalculatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	billableHours, err := strconv.ParseFloat(r.FormValue("billable_hours"), 64)
	if err != nil {
		http.Error(w, "invalid billable_hours", http.StatusBadRequest)
		return
	}
	notes := r.FormValue("notes")
	actor := actorFromRequest(r)

	if err := uploadInlineEvidence(r, recordID, models.DocumentTypeWorksheet, actor); err != nil {
		writeTransitionError(w, err)
		return
	}

	rec, err := NewLifecycleEngine().Calculate(recordID, actor, billableHours, notes)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"record": rec})
}

type issueInvoiceReq struct {
	InvoicedAmount int64  `json:"invoiced_amount"`
	InvoiceNumber  string `json:"invoice_number"`
	InvoiceDate    string `json:"invoice_date"`
}

// IssueInvoiceHandler moves a record from ready_for_invoice to invoiced.
func IssueInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}

	var req issueInvoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	invoiceDate, err := time.Parse(dateLayout, req.InvoiceDate)
	if err != nil {
		http.Error(w, "invalid invoice_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	rec, err := NewLifecycleEngine().IssueInvoice(recordID, actorFromRequest(r), req.InvoicedAmount, req.InvoiceNumber, invoiceDate)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"record": rec})
}

// RecordPaymentHandler moves a record from invoiced or overdue to paid.
// Multipart form data: received_amount, payment_date, optional receipt file.
func RecordPaymentHandler(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	receivedAmount, err := strconv.ParseInt(r.FormValue("received_amount"), 10, 64)
	if err != nil {
		http.Error(w, "invalid received_amount", http.StatusBadRequest)
		return
	}
	paymentDate, err := time.Parse(dateLayout, r.FormValue("payment_date"))
	if err != nil {
		http.Error(w, "invalid payment_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	actor := actorFromRequest(r)

	if err := uploadInlineEvidence(r, recordID, models.DocumentTypeReceipt, actor); err != nil {
		writeTransitionError(w, err)
		return
	}

	rec, err := NewLifecycleEngine().RecordPayment(recordID, actor, receivedAmount, paymentDate)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"record": rec})
}

type cancelReq struct {
	Comment string `json:"comment"`
}

// CancelPaymentHandler cancels a record that has not been invoiced yet.
func CancelPaymentHandler(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}

	var req cancelReq
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	rec, err := NewLifecycleEngine().Cancel(recordID, actorFromRequest(r), req.Comment)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"record": rec})
}

// uploadInlineEvidence stores the "file" form part as evidence of the given
// type when present. Absent file is fine: the evidence gate in the engine
// decides whether prior uploads satisfy the transition.
func uploadInlineEvidence(r *http.Request, recordID uuid.UUID, docType models.DocumentType, actor Actor) error {
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil
		}
		return &UploadError{Err: err}
	}
	defer file.Close()

	uploaderID, err := uuid.Parse(actor.ID)
	if err != nil {
		return &ValidationError{Field: "actor", Reason: "missing authenticated user"}
	}

	_, err = NewDocumentStore().Upload(r.Context(), recordID, docType,
		header.Filename, header.Header.Get("Content-Type"), file, uploaderID, nil)
	return err
}

// writeTransitionError maps the lifecycle error taxonomy onto HTTP statuses.
func writeTransitionError(w http.ResponseWriter, err error) {
	var (
		invalidTransition *InvalidTransitionError
		missingEvidence   *MissingEvidenceError
		validation        *ValidationError
		upload            *UploadError
		dependency        *DependencyError
	)
	switch {
	case errors.As(err, &invalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &missingEvidence):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &validation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &upload):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.As(err, &dependency):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

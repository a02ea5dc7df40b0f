package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"devlink.vn/backoffice/middleware"
	"devlink.vn/backoffice/models"
)

// UploadEvidenceHandler attaches an evidence file to a payment record.
// Multipart form data: file (required), document_type (worksheet, receipt or
// invoice), optional metadata JSON.
func UploadEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	uploaderID, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "invalid user id in token", http.StatusUnauthorized)
		return
	}

	recordID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	docType := models.DocumentType(r.FormValue("document_type"))
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	var metadata models.DocumentMetadata
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			http.Error(w, "invalid metadata: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	doc, err := NewDocumentStore().Upload(r.Context(), recordID, docType,
		header.Filename, header.Header.Get("Content-Type"), file, uploaderID, metadata)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{"document": doc})
}

// ListEvidenceHandler lists the evidence attached to a payment record,
// optionally filtered by the type query parameter.
func ListEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}

	typeFilter := models.DocumentType(r.URL.Query().Get("type"))
	if typeFilter != "" && !typeFilter.Valid() {
		http.Error(w, "unknown document type", http.StatusBadRequest)
		return
	}

	docs, err := NewDocumentStore().ListByRecord(recordID, typeFilter)
	if err != nil {
		http.Error(w, "failed to fetch documents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"documents": docs})
}

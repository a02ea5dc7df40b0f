package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devlink.vn/backoffice/config"
	"devlink.vn/backoffice/models"
)

// DocumentStore persists evidence files and their classification rows. The
// binary goes to a GCS bucket in production (USE_GCS=true) or the local
// uploads directory in development; the metadata row always lands in
// evidence_documents. The lifecycle engine consults it as the evidence gate.
type DocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore creates a new document store instance
func NewDocumentStore() *DocumentStore {
	return NewDocumentStoreWithDB(config.DB)
}

// NewDocumentStoreWithDB wires the store against an explicit DB handle.
func NewDocumentStoreWithDB(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Upload stores one evidence file for a payment record. On any storage
// failure it returns UploadError and writes nothing to the database, so a
// caller sequencing upload-then-transition aborts before the transition.
// A file with the same hash already attached to the record under the same
// type is returned as-is instead of being stored twice.
func (ds *DocumentStore) Upload(
	ctx context.Context,
	recordID uuid.UUID,
	docType models.DocumentType,
	fileName, mimeType string,
	content io.Reader,
	uploadedBy uuid.UUID,
	metadata models.DocumentMetadata,
) (*models.EvidenceDocument, error) {
	if !docType.Valid() {
		return nil, &ValidationError{Field: "document_type", Reason: fmt.Sprintf("unknown type %q", docType)}
	}

	var rec models.PaymentRecord
	if err := ds.db.First(&rec, "id = ?", recordID).Error; err != nil {
		return nil, fmt.Errorf("payment record not found: %w", err)
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, &UploadError{Err: err}
	}
	if len(data) == 0 {
		return nil, &ValidationError{Field: "file", Reason: "is empty"}
	}

	hasher := sha256.New()
	hasher.Write(data)
	fileHash := hex.EncodeToString(hasher.Sum(nil))

	// Duplicate upload of the same file for the same purpose: reuse the row.
	var existing models.EvidenceDocument
	if err := ds.db.
		Where("payment_record_id = ? AND document_type = ? AND file_hash = ?", recordID, docType, fileHash).
		First(&existing).Error; err == nil {
		return &existing, nil
	}

	ext := filepath.Ext(fileName)
	objectName := fmt.Sprintf("evidence/%s/%s-%s%s",
		recordID, time.Now().Format("20060102-150405"), uuid.New().String()[:8], ext)

	var storedPath string
	if os.Getenv("USE_GCS") == "true" {
		storedPath, err = uploadToGCS(ctx, objectName, data, mimeType)
	} else {
		storedPath, err = uploadToLocal(objectName, data)
	}
	if err != nil {
		return nil, &UploadError{Err: err}
	}

	doc := models.EvidenceDocument{
		PaymentRecordID: recordID,
		DocumentType:    docType,
		FileName:        fileName,
		FileSize:        int64(len(data)),
		FileType:        mimeType,
		FileExtension:   strings.TrimPrefix(ext, "."),
		FilePath:        storedPath,
		FileHash:        fileHash,
		Metadata:        metadata,
		UploadedByID:    uploadedBy,
	}
	if err := ds.db.Create(&doc).Error; err != nil {
		return nil, &UploadError{Err: err}
	}

	return &doc, nil
}

// ListByRecord returns the evidence attached to a record, optionally
// filtered by type.
func (ds *DocumentStore) ListByRecord(recordID uuid.UUID, typeFilter models.DocumentType) ([]models.EvidenceDocument, error) {
	query := ds.db.Where("payment_record_id = ?", recordID)
	if typeFilter != "" {
		query = query.Where("document_type = ?", typeFilter)
	}

	var docs []models.EvidenceDocument
	if err := query.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch documents for record %s: %w", recordID, err)
	}
	return docs, nil
}

// HasDocumentOfType reports whether at least one document of the given type
// is attached to the record. Backs the lifecycle engine's evidence gate.
func (ds *DocumentStore) HasDocumentOfType(recordID uuid.UUID, docType models.DocumentType) (bool, error) {
	var count int64
	if err := ds.db.Model(&models.EvidenceDocument{}).
		Where("payment_record_id = ? AND document_type = ?", recordID, docType).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// uploadToLocal writes the file under ./uploads, mirroring its object path.
func uploadToLocal(objectName string, data []byte) (string, error) {
	path := filepath.Join("./uploads", filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentType classifies an evidence file attached to a payment record.
type DocumentType string

const (
	DocumentTypeWorksheet DocumentType = "worksheet"
	DocumentTypeReceipt   DocumentType = "receipt"
	DocumentTypeInvoice   DocumentType = "invoice"
)

// Valid reports whether t is a known evidence classification.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeWorksheet, DocumentTypeReceipt, DocumentTypeInvoice:
		return true
	}
	return false
}

// DocumentMetadata stores flexible metadata as JSON
type DocumentMetadata map[string]interface{}

// Scan implements sql.Scanner interface
func (m *DocumentMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(DocumentMetadata)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// Value implements driver.Valuer interface
func (m DocumentMetadata) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(make(DocumentMetadata))
	}
	return json.Marshal(m)
}

// EvidenceDocument is an uploaded file proving a lifecycle step taken on a
// payment record: a worksheet backs the calculation, a receipt backs the
// payment. Presence of the required type gates the matching transition.
type EvidenceDocument struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentRecordID uuid.UUID      `gorm:"type:uuid;not null;index" json:"payment_record_id"`
	PaymentRecord   *PaymentRecord `gorm:"foreignKey:PaymentRecordID" json:"payment_record,omitempty"`

	DocumentType DocumentType `gorm:"size:20;not null;index" json:"document_type"`

	FileName      string `gorm:"size:255;not null" json:"file_name"`
	FileSize      int64  `gorm:"not null" json:"file_size"` // Size in bytes
	FileType      string `gorm:"size:100" json:"file_type"` // MIME type
	FileExtension string `gorm:"size:20" json:"file_extension"`
	FilePath      string `gorm:"size:500;not null" json:"file_path"` // Storage path (local or GCS object)
	FileHash      string `gorm:"size:64;index" json:"file_hash"`     // SHA256 hash for deduplication

	Metadata DocumentMetadata `gorm:"type:jsonb;default:'{}'" json:"metadata"`

	UploadedByID uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by_id"`
	UploadedBy   *User     `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (EvidenceDocument) TableName() string {
	return "evidence_documents"
}

func (d *EvidenceDocument) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}

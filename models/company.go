package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContractStatus tracks the commercial state of a client contract.
type ContractStatus string

const (
	ContractStatusDraft      ContractStatus = "draft"
	ContractStatusActive     ContractStatus = "active"
	ContractStatusSuspended  ContractStatus = "suspended"
	ContractStatusTerminated ContractStatus = "terminated"
)

// ClientCompany is a client of the marketplace whose contracts are billed
// through monthly periods.
type ClientCompany struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	TaxCode     string         `gorm:"size:50;uniqueIndex" json:"tax_code"`
	Address     string         `gorm:"size:500" json:"address,omitempty"`
	ContactName string         `gorm:"size:100" json:"contact_name,omitempty"`
	Email       string         `gorm:"size:100" json:"email,omitempty"`
	Phone       string         `gorm:"size:20" json:"phone,omitempty"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Contracts []Contract `gorm:"foreignKey:CompanyID" json:"contracts,omitempty"`
}

func (c *ClientCompany) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// Contract is a billing contract between a client company and the marketplace.
// Payment records reference contracts read-only; the lifecycle never mutates them.
type Contract struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Company      *ClientCompany `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	ContractCode string         `gorm:"size:50;uniqueIndex;not null" json:"contract_code"`
	Description  string         `gorm:"type:text" json:"description,omitempty"`
	HourlyRate   int64          `gorm:"not null" json:"hourly_rate"` // VND per billable hour
	Status       ContractStatus `gorm:"size:20;not null;default:'active';index" json:"status"`
	ActiveFrom   time.Time      `gorm:"not null" json:"active_from"`
	ActiveTo     *time.Time     `json:"active_to,omitempty"` // null = open-ended
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// ActiveDuring reports whether the contract's active range overlaps the
// calendar month given by year/month.
func (c *Contract) ActiveDuring(year int, month time.Month) bool {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	if !c.ActiveFrom.Before(monthEnd) {
		return false
	}
	if c.ActiveTo != nil && c.ActiveTo.Before(monthStart) {
		return false
	}
	return true
}

package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devlink.vn/backoffice/config"
	"devlink.vn/backoffice/models"
)

// PeriodService creates and queries billing periods. Creation is idempotent
// against the (company, month, year) key; seeding pulls the company's active
// contracts and opens one pending payment record per contract not yet billed
// in the month.
type PeriodService struct {
	db *gorm.DB
}

// NewPeriodService creates a new period service instance
func NewPeriodService() *PeriodService {
	return NewPeriodServiceWithDB(config.DB)
}

// NewPeriodServiceWithDB wires the service against an explicit DB handle.
func NewPeriodServiceWithDB(db *gorm.DB) *PeriodService {
	return &PeriodService{db: db}
}

// EnsurePeriod returns the period for (companyID, month, year), creating it
// when absent. Concurrent callers converge on the same row: the insert does
// nothing on conflict and the follow-up read returns the winner.
func (ps *PeriodService) EnsurePeriod(companyID uuid.UUID, month, year int) (*models.Period, error) {
	if month < 1 || month > 12 {
		return nil, &ValidationError{Field: "period_month", Reason: "must be between 1 and 12"}
	}
	if year < 2000 {
		return nil, &ValidationError{Field: "period_year", Reason: "is out of range"}
	}

	period := models.Period{
		CompanyID:   companyID,
		PeriodMonth: month,
		PeriodYear:  year,
		Status:      models.PeriodStatusOpen,
	}
	if err := ps.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "period_month"}, {Name: "period_year"}},
			DoNothing: true,
		}).
		Create(&period).Error; err != nil {
		return nil, fmt.Errorf("failed to create period: %w", err)
	}

	var existing models.Period
	if err := ps.db.
		Where("company_id = ? AND period_month = ? AND period_year = ?", companyID, month, year).
		First(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to load period: %w", err)
	}
	return &existing, nil
}

// SeedPeriod ensures the period exists and opens one pending-calculation
// payment record for every active contract of the company whose date range
// overlaps the calendar month. Contracts already billed in the period are
// skipped, so repeated seeding is safe. A contract-registry failure surfaces
// as DependencyError since nothing can be created without it.
func (ps *PeriodService) SeedPeriod(companyID uuid.UUID, month, year int) (*models.Period, []models.PaymentRecord, error) {
	period, err := ps.EnsurePeriod(companyID, month, year)
	if err != nil {
		return nil, nil, err
	}

	var contracts []models.Contract
	if err := ps.db.
		Where("company_id = ? AND status = ?", companyID, models.ContractStatusActive).
		Find(&contracts).Error; err != nil {
		return nil, nil, &DependencyError{Dependency: "contract_registry", Err: err}
	}

	var created []models.PaymentRecord
	for _, contract := range contracts {
		if !contract.ActiveDuring(year, time.Month(month)) {
			continue
		}

		var count int64
		if err := ps.db.Model(&models.PaymentRecord{}).
			Where("period_id = ? AND contract_id = ?", period.ID, contract.ID).
			Count(&count).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to check existing records: %w", err)
		}
		if count > 0 {
			continue
		}

		rec := models.PaymentRecord{
			PeriodID:   period.ID,
			ContractID: contract.ID,
			Status:     models.PaymentStatusPendingCalculation,
		}
		if err := ps.db.Create(&rec).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to create payment record for contract %s: %w", contract.ContractCode, err)
		}
		created = append(created, rec)
	}

	if len(created) > 0 {
		log.Printf("✅ Seeded period %d-%02d for company %s with %d payment records",
			year, month, companyID, len(created))
	}
	return period, created, nil
}

// ListPeriods returns periods, optionally filtered by company and status,
// newest month first.
func (ps *PeriodService) ListPeriods(companyID *uuid.UUID, status models.PeriodStatus) ([]models.Period, error) {
	query := ps.db.Preload("Company")
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var periods []models.Period
	if err := query.Order("period_year DESC, period_month DESC").Find(&periods).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch periods: %w", err)
	}
	return periods, nil
}

// GetPeriod retrieves a period with its records, their contracts and evidence.
func (ps *PeriodService) GetPeriod(periodID uuid.UUID) (*models.Period, error) {
	var period models.Period
	if err := ps.db.
		Preload("Company").
		Preload("Records").
		Preload("Records.Contract").
		Preload("Records.Documents").
		First(&period, "id = ?", periodID).Error; err != nil {
		return nil, fmt.Errorf("period not found: %w", err)
	}
	return &period, nil
}

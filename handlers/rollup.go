package handlers

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devlink.vn/backoffice/config"
	"devlink.vn/backoffice/models"
)

// RollupAggregator recomputes a period's status from its child payment
// records. The rule itself is models.RollupStatus; this service only does the
// read-recompute-write around it. Last writer wins is acceptable because the
// rule derives solely from current child states.
type RollupAggregator struct {
	db *gorm.DB
}

// NewRollupAggregator creates a new roll-up aggregator instance
func NewRollupAggregator() *RollupAggregator {
	return NewRollupAggregatorWithDB(config.DB)
}

// NewRollupAggregatorWithDB wires the aggregator against an explicit DB handle.
func NewRollupAggregatorWithDB(db *gorm.DB) *RollupAggregator {
	return &RollupAggregator{db: db}
}

// Recompute re-derives the period's status and persists it when it changed.
func (ra *RollupAggregator) Recompute(periodID uuid.UUID) error {
	var period models.Period
	if err := ra.db.First(&period, "id = ?", periodID).Error; err != nil {
		return fmt.Errorf("period not found: %w", err)
	}

	var records []models.PaymentRecord
	if err := ra.db.Where("period_id = ?", periodID).Find(&records).Error; err != nil {
		return fmt.Errorf("failed to fetch records for period %s: %w", periodID, err)
	}

	next := models.RollupStatus(period.Status, records)
	if next == period.Status {
		return nil
	}

	if err := ra.db.Model(&period).Update("status", next).Error; err != nil {
		return fmt.Errorf("failed to update period status: %w", err)
	}

	log.Printf("✅ Period %s rolled up: %s -> %s (%d records)", periodID, period.Status, next, len(records))
	return nil
}

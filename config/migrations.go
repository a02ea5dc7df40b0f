package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"devlink.vn/backoffice/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "10032026_create_directory_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.ClientCompany{}, &models.Contract{})
			},
		},
		{
			ID: "10032026_create_billing_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Period{}, &models.PaymentRecord{},
					&models.PaymentTransition{}, &models.EvidenceDocument{})
			},
		},
		{
			ID: "10032026_create_notification_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Notification{})
			},
		},
	})

	return m.Migrate()
}

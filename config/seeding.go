package config

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"devlink.vn/backoffice/models"
)

// SeedUsers creates the initial admin account when no user exists yet.
// Password comes from ADMIN_PASSWORD; skipped entirely when unset.
func SeedUsers() {
	var count int64
	if err := DB.Model(&models.User{}).Count(&count).Error; err != nil {
		log.Printf("Warning: user seeding skipped, count failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Println("ADMIN_PASSWORD not set, skipping admin seeding")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Warning: failed to hash admin password: %v", err)
		return
	}

	admin := models.User{
		Name:         "Administrator",
		Email:        "admin@devlink.vn",
		Phone:        "0900000000",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("Warning: failed to seed admin user: %v", err)
		return
	}
	log.Println("✅ Seeded initial admin user")
}

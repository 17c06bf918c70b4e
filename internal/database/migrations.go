package database

import (
	"fmt"
	"immofds/server/internal/models"

	"gorm.io/gorm"
)

// MigrateSchema creates or updates every table the service owns.
func MigrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Listing{},
		&models.ListingImage{},
		&models.ContactRequest{},
		&models.ContactNote{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Map queries filter on both coordinates together.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_listings_coordinates
		ON listings(latitude, longitude);
	`).Error; err != nil {
		return fmt.Errorf("failed to create coordinates index: %w", err)
	}

	// Makes a second primary image for the same listing a constraint error.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_listing_images_single_primary
		ON listing_images(listing_id) WHERE is_primary = 1;
	`).Error; err != nil {
		return fmt.Errorf("failed to create primary image index: %w", err)
	}

	return nil
}

func (d *Database) RunMigrations() error {
	return MigrateSchema(d.db)
}

package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the indexes the admin listing relies on
func MigrateConstraints(db *gorm.DB) error {
	// Listing by code, newest first
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_submissions_code_occurred
		ON submissions (registration_code, occurred_at DESC);
	`).Error
	if err != nil {
		return err
	}

	// Outcome filter
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_submissions_outcome
		ON submissions (outcome);
	`).Error
	if err != nil {
		return err
	}

	return nil
}

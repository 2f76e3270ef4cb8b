package database

import (
	"gorm.io/gorm"

	"inviteform/internal/submissions"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&submissions.Submission{},
	)
}

package models

import "gorm.io/gorm"

// AllModels returns all models for migration
// Note: User and Party must be migrated before Membership and File
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Party{},
		&Membership{},
		&File{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

package database

import (
	"log"

	"github.com/pulsefeed/backend/internal/models"
	"gorm.io/gorm"
)

// RunMigrations brings the schema up to date for the current dialect.
// PostgreSQL additionally needs the pgvector extension for post search.
func RunMigrations(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector;").Error; err != nil {
			return err
		}
	} else {
		log.Printf("Using GORM auto-migration for %s", db.Dialector.Name())
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Setting{},
		&models.Post{},
		&models.Comment{},
		&models.PostReaction{},
		&models.EmailVerification{},
	)
}

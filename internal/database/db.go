package database

import (
	"log"

	"github.com/reviewhub/reviewhub/internal/config"
	"github.com/reviewhub/reviewhub/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	var err error

	// TranslateError maps driver duplicate-key errors to gorm.ErrDuplicatedKey,
	// which the review-uniqueness check relies on.
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})

	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}

	log.Println("Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Genre{},
		&models.Title{},
		&models.Review{},
		&models.Comment{},
	)

	if err != nil {
		log.Fatal("Migration failed:", err)
	}

	log.Println("Database migration completed")
}

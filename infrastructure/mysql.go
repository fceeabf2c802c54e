package infrastructure

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"workmarket/domain"
)

func NewMySQLConnection() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set in environment")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	fmt.Println("✅ Connected to MySQL and migrated schema")
	return db
}

// Migrate creates the schema. Shared with the sqlite-backed tests.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Job{},
		&domain.Offer{},
		&domain.Chat{},
		&domain.Message{},
		&domain.CompletedJob{},
		&domain.Notification{},
	)
}

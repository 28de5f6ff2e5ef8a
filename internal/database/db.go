package database

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("❌ Error: DB_DSN not found in .env file. Please configure your database.")
	}

	var err error

	// Hosted DBs can take a moment after a cold start
	for i := 0; i < 5; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatal("Failed to connect to database after 5 attempts:", err)
	}

	log.Println("✅ Successfully connected to PostgreSQL!")

	err = DB.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Debt{},
		&models.Payment{},
		&models.PaymentHistory{},
		&models.Settings{},
		&models.Category{},
		&models.Product{},
		&models.StockMovement{},
		&models.IdempotencyKey{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database schema:", err)
	}

	seedSettings(DB)

	log.Println("✅ Database Schema Synced!")
}

// seedSettings guarantees the configuracion singleton exists so the surcharge
// policy always has parameters to read.
func seedSettings(db *gorm.DB) {
	var settings models.Settings
	if err := db.First(&settings).Error; err == nil {
		return
	}

	settings = models.Settings{
		PorcentajeRecargo: 10,
		DiasParaRecargo:   30,
		MonedaDefault:     "ARS",
	}
	if err := db.Create(&settings).Error; err != nil {
		log.Println("Warning: could not seed default settings:", err)
		return
	}
	log.Println("✅ Default settings created (10% surcharge, 30 days, ARS)")
}

// GetSettings returns the singleton, creating it if somebody deleted the row.
func GetSettings(db *gorm.DB) (models.Settings, error) {
	var settings models.Settings
	err := db.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seedSettings(db)
		err = db.First(&settings).Error
	}
	return settings, err
}

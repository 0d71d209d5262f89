package db

import (
	"log"
	"time"

	"github.com/Zdenek156/bereifung24-scheduling/internal/config"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
	"github.com/Zdenek156/bereifung24-scheduling/internal/timezone"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Workshop{},
		&models.Employee{},
		&models.TireRequest{},
		&models.Offer{},
		&models.WorkingHours{},
		&models.CalendarCredential{},
		&models.Booking{},
		&models.SyncGap{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// partial unique index: cancelled and rescheduled bookings free their
	// slot, everything else keeps (owner_key, appointment_start) exclusive
	db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_owner_slot
        ON bookings (owner_key, appointment_start)
        WHERE status IN ('pending', 'confirmed')
    `)

	db.Exec(`
        UPDATE workshops
        SET timezone = ?
        WHERE timezone IS NULL OR timezone = ''
    `, timezone.DefaultTimezone)

	return db
}

package database

import (
	"fmt"

	"garaj-backend/internal/apperr"
	"garaj-backend/internal/config"
	"garaj-backend/internal/logger"
	"garaj-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// ErrVersionConflict is returned when a versioned row changed under the caller.
var ErrVersionConflict = apperr.Conflict("kayıt başka bir işlem tarafından değiştirildi, lütfen yeniden deneyin")

// Open connects to Postgres with the configured DSN.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}
	return db, nil
}

// Init opens the connection, runs migrations and sets the package-level DB.
func Init(cfg *config.Config) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}
	DB = db
	return nil
}

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	log := logger.WithComponent("database")

	err := db.AutoMigrate(
		&models.Firm{},
		&models.Customer{},
		&models.Stock{},
		&models.Job{},
		&models.JobPart{},
		&models.LedgerEntry{},
		&models.Expense{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}

	log.Info().Msg("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
	return nil
}

// UpdateVersioned writes fields to the row identified by id only if its version
// still equals version, and bumps the version. model selects the table.
func UpdateVersioned(tx *gorm.DB, model any, id, version uint, fields map[string]any) error {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["version"] = gorm.Expr("version + 1")

	res := tx.Model(model).Where("id = ? AND version = ?", id, version).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

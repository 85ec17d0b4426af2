package database

import (
	"errors"
	"testing"

	"garaj-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestUpdateVersionedBumpsVersion(t *testing.T) {
	db := setupTestDB(t)
	stock := models.Stock{Name: "Fren balatası", Code: "FB-01", Category: "Fren", Unit: "takım", Quantity: 5}
	if err := db.Create(&stock).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := UpdateVersioned(db, &models.Stock{}, stock.ID, 1, map[string]any{"quantity": 2}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var got models.Stock
	db.First(&got, stock.ID)
	if got.Quantity != 2 || got.Version != 2 {
		t.Fatalf("expected quantity 2 version 2, got %d/%d", got.Quantity, got.Version)
	}
}

func TestUpdateVersionedRejectsStaleVersion(t *testing.T) {
	db := setupTestDB(t)
	stock := models.Stock{Name: "Yağ filtresi", Code: "YF-01", Category: "Filtre", Unit: "adet", Quantity: 3}
	db.Create(&stock)

	if err := UpdateVersioned(db, &models.Stock{}, stock.ID, 1, map[string]any{"quantity": 1}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	err := UpdateVersioned(db, &models.Stock{}, stock.ID, 1, map[string]any{"quantity": 0})
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	var got models.Stock
	db.First(&got, stock.ID)
	if got.Quantity != 1 {
		t.Fatalf("stale write must not apply, quantity=%d", got.Quantity)
	}
}

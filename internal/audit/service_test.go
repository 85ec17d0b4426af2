package audit

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
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestWriteLogStoresSnapshots(t *testing.T) {
	db := setupTestDB(t)

	err := WriteLog(db, LogOptions{
		UserName:    "admin",
		EntityType:  EntityJob,
		EntityID:    3,
		Action:      models.AuditActionCancel,
		Description: "İş iptal edildi",
		Before:      map[string]string{"status": "Beklemede"},
		After:       map[string]string{"status": "İptal"},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	var got models.AuditLog
	if err := db.First(&got).Error; err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.BeforeData != `{"status":"Beklemede"}` || got.AfterData != `{"status":"İptal"}` {
		t.Fatalf("unexpected snapshots: %s / %s", got.BeforeData, got.AfterData)
	}
}

func TestWriteLogRollsBackWithTransaction(t *testing.T) {
	db := setupTestDB(t)
	boom := errors.New("boom")

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := WriteLog(tx, LogOptions{EntityType: EntityFirm, EntityID: 1, Action: models.AuditActionCreate}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	db.Model(&models.AuditLog{}).Count(&count)
	if count != 0 {
		t.Fatalf("audit log must roll back with the change, found %d", count)
	}
}

func TestSnapshotNil(t *testing.T) {
	if snapshot(nil) != "null" {
		t.Fatal("nil should encode as null")
	}
}

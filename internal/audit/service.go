package audit

import (
	"encoding/json"
	"fmt"

	"garaj-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// Entity type names written to audit_logs.entity_type.
const (
	EntityJob      = "job"
	EntityFirm     = "firm"
	EntityCustomer = "customer"
	EntityStock    = "stock"
	EntityExpense  = "expense"
)

// WriteLog stores one audit record. tx must be the transaction of the change
// itself so the record commits or rolls back with it.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	log := models.AuditLog{
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}

	if err := tx.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}

// snapshot encodes v as JSON; nil and unencodable values become "null".
func snapshot(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

package models

import "time"

type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionDelete  AuditAction = "delete"
	AuditActionCancel  AuditAction = "cancel"
	AuditActionPayment AuditAction = "payment"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	// Hangi kullanıcı? (tek yönetici hesabı, denormalize)
	UserName string `gorm:"size:100" json:"userName"`

	// Hangi entity? (ör: "job", "firm", "customer", "stock", "expense")
	EntityType string `gorm:"size:50;index" json:"entityType"`
	EntityID   uint   `gorm:"index" json:"entityId"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	// Önceki ve sonraki hal (JSON)
	BeforeData string `gorm:"type:text" json:"beforeData"`
	AfterData  string `gorm:"type:text" json:"afterData"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountFirm     AccountType = "firm"
	AccountCustomer AccountType = "customer"
)

type EntryKind string

const (
	EntryCharge   EntryKind = "charge"   // iş bedeli borç kaydı
	EntryReversal EntryKind = "reversal" // iptal/silme/fiyat değişikliğinde borcun geri alınması
	EntryPayment  EntryKind = "payment"  // tahsilat
)

// LedgerEntry - Firma/müşteri hesap hareketi. Değiştirilmez, sadece eklenir.
type LedgerEntry struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	AccountType AccountType     `gorm:"size:20;not null;index:idx_ledger_account" json:"accountType"`
	AccountID   uint            `gorm:"not null;index:idx_ledger_account" json:"accountId"`
	Kind        EntryKind       `gorm:"size:20;not null" json:"kind"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	JobID       *uint           `gorm:"index" json:"jobId,omitempty"`
	Description string          `gorm:"size:255" json:"description"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Firm - Kurumsal müşteri (B2B), bakiyesi defter kayıtlarından hesaplanır
type Firm struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:150;not null" json:"name"`
	Phone     string `gorm:"size:50" json:"phone"`
	Email     string `gorm:"size:150" json:"email"`
	Address   string `gorm:"size:255" json:"address"`
	TaxNumber string `gorm:"size:50" json:"taxNumber"`

	// Defterden türetilen önbellek; sadece ledger paketi günceller
	TotalBalance   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"totalBalance"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"currentBalance"`

	Version   uint      `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

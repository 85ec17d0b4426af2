package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer - Bireysel müşteri, Firm ile aynı defteri kullanır
type Customer struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:150;not null" json:"name"`
	Phone   string `gorm:"size:50;not null" json:"phone"`
	Email   string `gorm:"size:150" json:"email"`
	Vehicle string `gorm:"size:100" json:"vehicle"`
	Plate   string `gorm:"size:20;index" json:"plate"`
	Notes   string `gorm:"size:1000" json:"notes"`

	TotalBalance   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"totalBalance"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"currentBalance"`

	Version   uint      `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

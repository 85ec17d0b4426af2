package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock - Depodaki parça / malzeme
type Stock struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:150;not null" json:"name"`
	Code          string          `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Category      string          `gorm:"size:100;not null" json:"category"`
	Quantity      int             `gorm:"not null;default:0" json:"quantity"`
	Unit          string          `gorm:"size:20;not null" json:"unit"` // adet, litre, takım vs.
	PurchasePrice decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"purchasePrice"`
	SalePrice     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"salePrice"`
	MinQuantity   int             `gorm:"not null;default:0" json:"minQuantity"`
	Supplier      string          `gorm:"size:150" json:"supplier"`
	Location      string          `gorm:"size:100" json:"location"`
	Notes         string          `gorm:"size:1000" json:"notes"`
	Version       uint            `gorm:"not null;default:1" json:"version"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// IsLow reports whether the item is at or below its reorder threshold.
func (s *Stock) IsLow() bool {
	return s.Quantity <= s.MinQuantity
}

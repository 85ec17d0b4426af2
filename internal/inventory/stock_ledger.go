package inventory

import (
	"errors"
	"fmt"

	"garaj-backend/internal/apperr"
	"garaj-backend/internal/database"
	"garaj-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrPartNotFound = apperr.NotFound("Parça bulunamadı")

// InsufficientStockError carries the stock name for the user-facing message.
type InsufficientStockError struct {
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s için yeterli stok yok", e.Name)
}

func (e *InsufficientStockError) ErrorKind() apperr.Kind { return apperr.KindInvalid }

// PartRequest is one requested part of a job.
type PartRequest struct {
	StockID  uint             `json:"part" validate:"required"`
	Quantity int              `json:"quantity" validate:"min=1"`
	Price    *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
}

// Consume decrements stock for every requested part, in order, and returns the
// part snapshots to store on the job. tx must be the job's transaction so an
// error halfway rolls back the parts already taken.
func Consume(tx *gorm.DB, parts []PartRequest) ([]models.JobPart, error) {
	out := make([]models.JobPart, 0, len(parts))
	for _, p := range parts {
		if p.Quantity < 1 {
			return nil, apperr.Invalid("Parça miktarı en az 1 olmalı")
		}

		var stock models.Stock
		if err := tx.First(&stock, "id = ?", p.StockID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("stok #%d: %w", p.StockID, ErrPartNotFound)
			}
			return nil, err
		}

		if stock.Quantity < p.Quantity {
			return nil, &InsufficientStockError{Name: stock.Name, Available: stock.Quantity, Requested: p.Quantity}
		}

		err := database.UpdateVersioned(tx, &models.Stock{}, stock.ID, stock.Version, map[string]any{
			"quantity": stock.Quantity - p.Quantity,
		})
		if err != nil {
			return nil, err
		}

		price := stock.SalePrice
		if p.Price != nil {
			price = *p.Price
		}
		out = append(out, models.JobPart{
			StockID:  stock.ID,
			Quantity: p.Quantity,
			Price:    price,
		})
	}
	return out, nil
}

// Restore puts the quantities of previously consumed parts back. Stock rows
// deleted in the meantime are skipped.
func Restore(tx *gorm.DB, parts []models.JobPart) error {
	for _, p := range parts {
		var stock models.Stock
		if err := tx.First(&stock, "id = ?", p.StockID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}

		err := database.UpdateVersioned(tx, &models.Stock{}, stock.ID, stock.Version, map[string]any{
			"quantity": stock.Quantity + p.Quantity,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

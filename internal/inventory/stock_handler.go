package inventory

import (
	"errors"
	"fmt"
	"strings"

	"garaj-backend/internal/audit"
	"garaj-backend/internal/auth"
	"garaj-backend/internal/database"
	"garaj-backend/internal/models"
	"garaj-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateStockRequest struct {
	Name          string          `json:"name" validate:"required"`
	Code          string          `json:"code" validate:"required"`
	Category      string          `json:"category" validate:"required"`
	Quantity      int             `json:"quantity" validate:"gte=0"`
	Unit          string          `json:"unit" validate:"required"`
	PurchasePrice decimal.Decimal `json:"purchasePrice" validate:"gte=0"`
	SalePrice     decimal.Decimal `json:"salePrice" validate:"gte=0"`
	MinQuantity   int             `json:"minQuantity" validate:"gte=0"`
	Supplier      string          `json:"supplier"`
	Location      string          `json:"location"`
	Notes         string          `json:"notes"`
}

type UpdateStockRequest struct {
	ID            uint             `json:"id"`
	Version       *uint            `json:"version"`
	Name          *string          `json:"name"`
	Code          *string          `json:"code"`
	Category      *string          `json:"category"`
	Quantity      *int             `json:"quantity" validate:"omitempty,gte=0"`
	Unit          *string          `json:"unit"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice" validate:"omitempty,gte=0"`
	SalePrice     *decimal.Decimal `json:"salePrice" validate:"omitempty,gte=0"`
	MinQuantity   *int             `json:"minQuantity" validate:"omitempty,gte=0"`
	Supplier      *string          `json:"supplier"`
	Location      *string          `json:"location"`
	Notes         *string          `json:"notes"`
}

var errDuplicateCode = fiber.NewError(fiber.StatusBadRequest, "Bu stok kodu zaten kullanılıyor")

// GET /api/stock
func ListStocksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Stock{})
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			dbq = dbq.Where("category = ?", category)
		}
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			dbq = dbq.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like)
		}

		var stocks []models.Stock
		if err := dbq.Order("name asc").Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok listesi alınırken bir hata oluştu")
		}
		return c.JSON(fiber.Map{"success": true, "stocks": stocks})
	}
}

// GET /api/stock/low - miktarı minimumun altına inmiş ürünler
func ListLowStocksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var stocks []models.Stock
		if err := database.DB.Where("quantity <= min_quantity").
			Order("quantity asc, name asc").
			Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok listesi alınırken bir hata oluştu")
		}
		return c.JSON(fiber.Map{"success": true, "stocks": stocks})
	}
}

// GET /api/stock/:id
func GetStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz stok ID")
		}

		var stock models.Stock
		if err := database.DB.First(&stock, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok bulunamadı")
		}
		return c.JSON(fiber.Map{"success": true, "stock": stock})
	}
}

// POST /api/stock
func CreateStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		body.Name = strings.TrimSpace(body.Name)
		body.Code = strings.TrimSpace(body.Code)
		body.Category = strings.TrimSpace(body.Category)
		body.Unit = strings.TrimSpace(body.Unit)
		if err := validation.Struct(body); err != nil {
			return err
		}

		stock := models.Stock{
			Name:          body.Name,
			Code:          body.Code,
			Category:      body.Category,
			Quantity:      body.Quantity,
			Unit:          body.Unit,
			PurchasePrice: body.PurchasePrice,
			SalePrice:     body.SalePrice,
			MinQuantity:   body.MinQuantity,
			Supplier:      strings.TrimSpace(body.Supplier),
			Location:      strings.TrimSpace(body.Location),
			Notes:         strings.TrimSpace(body.Notes),
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if taken, err := codeTaken(tx, stock.Code, 0); err != nil {
				return err
			} else if taken {
				return errDuplicateCode
			}
			if err := tx.Create(&stock).Error; err != nil {
				return fmt.Errorf("stok eklenemedi: %w", err)
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserName:    auth.CurrentUser(c),
				EntityType:  audit.EntityStock,
				EntityID:    stock.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Stok eklendi: %s (%s)", stock.Name, stock.Code),
				After:       stock,
			})
		})
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "Stok başarıyla eklendi",
			"stock":   stock,
		})
	}
}

// PUT /api/stock/:id veya PUT /api/stock (id gövdede)
func UpdateStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if pid, err := c.ParamsInt("id"); err == nil && pid > 0 {
			body.ID = uint(pid)
		}
		if body.ID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stok ID zorunlu")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		var stock models.Stock
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&stock, "id = ?", body.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "Stok bulunamadı")
				}
				return err
			}
			if body.Version != nil && *body.Version != stock.Version {
				return database.ErrVersionConflict
			}
			before := stock

			fields, err := applyStockUpdate(&stock, body)
			if err != nil {
				return err
			}
			if body.Code != nil {
				if taken, err := codeTaken(tx, stock.Code, stock.ID); err != nil {
					return err
				} else if taken {
					return errDuplicateCode
				}
			}
			if len(fields) == 0 {
				return nil
			}

			if err := database.UpdateVersioned(tx, &models.Stock{}, stock.ID, stock.Version, fields); err != nil {
				return err
			}
			if err := tx.First(&stock, "id = ?", stock.ID).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserName:    auth.CurrentUser(c),
				EntityType:  audit.EntityStock,
				EntityID:    stock.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Stok güncellendi: %s", stock.Name),
				Before:      before,
				After:       stock,
			})
		})
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Stok başarıyla güncellendi",
			"stock":   stock,
		})
	}
}

// DELETE /api/stock/:id veya DELETE /api/stock?id=
func DeleteStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			id = c.QueryInt("id")
		}
		if id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stok ID zorunlu")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var stock models.Stock
			if err := tx.First(&stock, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "Stok bulunamadı")
				}
				return err
			}
			if err := tx.Delete(&models.Stock{}, "id = ?", stock.ID).Error; err != nil {
				return fmt.Errorf("stok silinemedi: %w", err)
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserName:    auth.CurrentUser(c),
				EntityType:  audit.EntityStock,
				EntityID:    stock.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Stok silindi: %s (%s)", stock.Name, stock.Code),
				Before:      stock,
			})
		})
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "message": "Stok başarıyla silindi"})
	}
}

func codeTaken(tx *gorm.DB, code string, exceptID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Stock{}).Where("code = ? AND id <> ?", code, exceptID).Count(&count).Error
	return count > 0, err
}

// applyStockUpdate copies the present fields onto stock and returns the column map.
func applyStockUpdate(stock *models.Stock, body UpdateStockRequest) (map[string]any, error) {
	fields := map[string]any{}
	verrs := validation.Errors{}

	setText := func(field, column string, val *string, dst *string, required bool) {
		if val == nil {
			return
		}
		v := strings.TrimSpace(*val)
		if required && v == "" {
			verrs.Add(field, "zorunlu alan")
			return
		}
		*dst = v
		fields[column] = v
	}
	setText("name", "name", body.Name, &stock.Name, true)
	setText("code", "code", body.Code, &stock.Code, true)
	setText("category", "category", body.Category, &stock.Category, true)
	setText("unit", "unit", body.Unit, &stock.Unit, true)
	setText("supplier", "supplier", body.Supplier, &stock.Supplier, false)
	setText("location", "location", body.Location, &stock.Location, false)
	setText("notes", "notes", body.Notes, &stock.Notes, false)

	if body.Quantity != nil {
		stock.Quantity = *body.Quantity
		fields["quantity"] = stock.Quantity
	}
	if body.MinQuantity != nil {
		stock.MinQuantity = *body.MinQuantity
		fields["min_quantity"] = stock.MinQuantity
	}
	if body.PurchasePrice != nil {
		stock.PurchasePrice = *body.PurchasePrice
		fields["purchase_price"] = stock.PurchasePrice
	}
	if body.SalePrice != nil {
		stock.SalePrice = *body.SalePrice
		fields["sale_price"] = stock.SalePrice
	}

	return fields, verrs.Err()
}

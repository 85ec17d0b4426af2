package account

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"garaj-backend/internal/audit"
	"garaj-backend/internal/auth"
	"garaj-backend/internal/database"
	"garaj-backend/internal/logger"
	"garaj-backend/internal/models"
	"garaj-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Bakiye alanları istemciden alınmaz; sadece defter üzerinden değişir.
type FirmRequest struct {
	ID        uint    `json:"id"`
	Version   *uint   `json:"version"`
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Address   *string `json:"address"`
	TaxNumber *string `json:"taxNumber"`
}

type createFirm struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// GET /api/firms
func ListFirmsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var firms []models.Firm
		if err := database.DB.Order("name asc").Find(&firms).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Firmalar alınırken bir hata oluştu")
		}
		return c.JSON(fiber.Map{"success": true, "firms": firms})
	}
}

// GET /api/firms/:id
func GetFirmHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := accountID(c, firmKind)
		if err != nil {
			return err
		}

		var firm models.Firm
		if err := database.DB.First(&firm, "id = ?", id).Error; err != nil {
			return firmKind.notFound()
		}
		d, err := firmKind.detail(database.DB, id)
		if err != nil {
			return err
		}
		firm.TotalBalance = d.Summary.TotalBalance
		firm.CurrentBalance = d.Summary.CurrentBalance

		return c.JSON(fiber.Map{
			"firm":      firm,
			"totalPaid": d.Summary.TotalPaid,
			"payments":  d.Payments,
			"jobs":      d.Jobs,
		})
	}
}

// POST /api/firms
func CreateFirmHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body FirmRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		firm := models.Firm{
			Name:      deref(body.Name),
			Phone:     deref(body.Phone),
			Email:     strings.ToLower(deref(body.Email)),
			Address:   deref(body.Address),
			TaxNumber: deref(body.TaxNumber),
		}
		if err := validation.Struct(createFirm{Name: firm.Name, Email: firm.Email}); err != nil {
			return err
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&firm).Error; err != nil {
				return fmt.Errorf("firma eklenemedi: %w", err)
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserName:    auth.CurrentUser(c),
				EntityType:  audit.EntityFirm,
				EntityID:    firm.ID,
				Action:      models.AuditActionCreate,
				Description: "Firma eklendi: " + firm.Name,
				After:       firm,
			})
		})
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "Firma başarıyla eklendi",
			"firm":    firm,
		})
	}
}

// PUT /api/firms/:id veya PUT /api/firms (id gövdede)
func UpdateFirmHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body FirmRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if pid, err := c.ParamsInt("id"); err == nil && pid > 0 {
			body.ID = uint(pid)
		}
		if body.ID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Firma ID zorunlu")
		}

		var firm models.Firm
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&firm, "id = ?", body.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return firmKind.notFound()
				}
				return err
			}
			if body.Version != nil && *body.Version != firm.Version {
				return database.ErrVersionConflict
			}
			before := firm

			fields := map[string]any{}
			if body.Name != nil {
				firm.Name = deref(body.Name)
				fields["name"] = firm.Name
			}
			if body.Phone != nil {
				firm.Phone = deref(body.Phone)
				fields["phone"] = firm.Phone
			}
			if body.Email != nil {
				firm.Email = strings.ToLower(deref(body.Email))
				fields["email"] = firm.Email
			}
			if body.Address != nil {
				firm.Address = deref(body.Address)
				fields["address"] = firm.Address
			}
			if body.TaxNumber != nil {
				firm.TaxNumber = deref(body.TaxNumber)
				fields["tax_number"] = firm.TaxNumber
			}
			if err := validation.Struct(createFirm{Name: firm.Name, Email: firm.Email}); err != nil {
				return err
			}
			if len(fields) == 0 {
				return nil
			}

			if err := database.UpdateVersioned(tx, &models.Firm{}, firm.ID, firm.Version, fields); err != nil {
				return err
			}
			if err := tx.First(&firm, "id = ?", firm.ID).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserName:    auth.CurrentUser(c),
				EntityType:  audit.EntityFirm,
				EntityID:    firm.ID,
				Action:      models.AuditActionUpdate,
				Description: "Firma güncellendi: " + firm.Name,
				Before:      before,
				After:       firm,
			})
		})
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Firma başarıyla güncellendi",
			"firm":    firm,
		})
	}
}

// DELETE /api/firms/:id
func DeleteFirmHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := accountID(c, firmKind)
		if err != nil {
			return err
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var firm models.Firm
			if err := tx.First(&firm, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return firmKind.notFound()
				}
				return err
			}
			if err := firmKind.deleteAccount(tx, &models.Firm{}, id); err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserName:    auth.CurrentUser(c),
				EntityType:  audit.EntityFirm,
				EntityID:    id,
				Action:      models.AuditActionDelete,
				Description: "Firma silindi: " + firm.Name,
				Before:      firm,
			})
		})
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "message": "Firma başarıyla silindi"})
	}
}

// POST /api/firms/:id/payments
func CreateFirmPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := accountID(c, firmKind)
		if err != nil {
			return err
		}
		var body PaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçerli bir ödeme tutarı giriniz")
		}

		var (
			firm  models.Firm
			entry *models.LedgerEntry
		)
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			entry, err = firmKind.pay(tx, id, body, auth.CurrentUser(c), time.Now())
			if err != nil {
				return err
			}
			return tx.First(&firm, "id = ?", id).Error
		})
		if err != nil {
			return err
		}

		l := logger.FromCtx(c)
		l.Info().Uint("firm_id", id).Str("amount", entry.Amount.StringFixed(2)).Msg("firma ödemesi kaydedildi")

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Ödeme başarıyla kaydedildi",
			"firm":    firm,
			"payment": entry,
		})
	}
}

// GET /api/firms/:id/payments
func ListFirmPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := accountID(c, firmKind)
		if err != nil {
			return err
		}
		if err := firmKind.exists(database.DB, id); err != nil {
			return err
		}
		d, err := firmKind.detail(database.DB, id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"payments":       d.Payments,
			"totalPaid":      d.Summary.TotalPaid,
			"currentBalance": d.Summary.CurrentBalance,
		})
	}
}

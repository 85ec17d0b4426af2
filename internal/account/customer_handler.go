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

type CustomerRequest struct {
	ID      uint    `json:"id"`
	Version *uint   `json:"version"`
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Vehicle *string `json:"vehicle"`
	Plate   *string `json:"plate"`
	Notes   *string `json:"notes"`
}

type createCustomer struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (c *CustomerRequest) apply(cust *models.Customer) map[string]any {
	fields := map[string]any{}
	if c.Name != nil {
		cust.Name = deref(c.Name)
		fields["name"] = cust.Name
	}
	if c.Phone != nil {
		cust.Phone = deref(c.Phone)
		fields["phone"] = cust.Phone
	}
	if c.Email != nil {
		cust.Email = strings.ToLower(deref(c.Email))
		fields["email"] = cust.Email
	}
	if c.Vehicle != nil {
		cust.Vehicle = deref(c.Vehicle)
		fields["vehicle"] = cust.Vehicle
	}
	if c.Plate != nil {
		cust.Plate = strings.ToUpper(deref(c.Plate))
		fields["plate"] = cust.Plate
	}
	if c.Notes != nil {
		cust.Notes = deref(c.Notes)
		fields["notes"] = cust.Notes
	}
	return fields
}

func validateCustomer(cust *models.Customer) error {
	return validation.Struct(createCustomer{Name: cust.Name, Phone: cust.Phone, Email: cust.Email})
}

// GET /api/customers
func ListCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Customer{})
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			dbq = dbq.Where("LOWER(name) LIKE ? OR LOWER(plate) LIKE ? OR phone LIKE ?", like, like, like)
		}

		var customers []models.Customer
		if err := dbq.Order("name asc").Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteriler alınırken bir hata oluştu")
		}
		return c.JSON(fiber.Map{"success": true, "customers": customers})
	}
}

// GET /api/customers/:id
func GetCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := accountID(c, customerKind)
		if err != nil {
			return err
		}

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return customerKind.notFound()
		}
		d, err := customerKind.detail(database.DB, id)
		if err != nil {
			return err
		}
		customer.TotalBalance = d.Summary.TotalBalance
		customer.CurrentBalance = d.Summary.CurrentBalance

		return c.JSON(fiber.Map{
			"customer":  customer,
			"totalPaid": d.Summary.TotalPaid,
			"payments":  d.Payments,
			"jobs":      d.Jobs,
		})
	}
}

// POST /api/customers
func CreateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		var customer models.Customer
		body.apply(&customer)
		if err := validateCustomer(&customer); err != nil {
			return err
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&customer).Error; err != nil {
				return fmt.Errorf("müşteri eklenemedi: %w", err)
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserName:    auth.CurrentUser(c),
				EntityType:  audit.EntityCustomer,
				EntityID:    customer.ID,
				Action:      models.AuditActionCreate,
				Description: "Müşteri eklendi: " + customer.Name,
				After:       customer,
			})
		})
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":  true,
			"message":  "Müşteri başarıyla eklendi",
			"customer": customer,
		})
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := accountID(c, customerKind)
		if err != nil {
			return err
		}
		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		var customer models.Customer
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&customer, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return customerKind.notFound()
				}
				return err
			}
			if body.Version != nil && *body.Version != customer.Version {
				return database.ErrVersionConflict
			}
			before := customer

			fields := body.apply(&customer)
			if err := validateCustomer(&customer); err != nil {
				return err
			}
			if len(fields) == 0 {
				return nil
			}

			if err := database.UpdateVersioned(tx, &models.Customer{}, customer.ID, customer.Version, fields); err != nil {
				return err
			}
			if err := tx.First(&customer, "id = ?", customer.ID).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserName:    auth.CurrentUser(c),
				EntityType:  audit.EntityCustomer,
				EntityID:    customer.ID,
				Action:      models.AuditActionUpdate,
				Description: "Müşteri güncellendi: " + customer.Name,
				Before:      before,
				After:       customer,
			})
		})
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"message":  "Müşteri başarıyla güncellendi",
			"customer": customer,
		})
	}
}

// DELETE /api/customers/:id
func DeleteCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := accountID(c, customerKind)
		if err != nil {
			return err
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var customer models.Customer
			if err := tx.First(&customer, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return customerKind.notFound()
				}
				return err
			}
			if err := customerKind.deleteAccount(tx, &models.Customer{}, id); err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserName:    auth.CurrentUser(c),
				EntityType:  audit.EntityCustomer,
				EntityID:    id,
				Action:      models.AuditActionDelete,
				Description: "Müşteri silindi: " + customer.Name,
				Before:      customer,
			})
		})
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "message": "Müşteri başarıyla silindi"})
	}
}

// POST /api/customers/:id/payments
func CreateCustomerPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := accountID(c, customerKind)
		if err != nil {
			return err
		}
		var body PaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçerli bir ödeme tutarı giriniz")
		}

		var (
			customer models.Customer
			entry    *models.LedgerEntry
		)
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			entry, err = customerKind.pay(tx, id, body, auth.CurrentUser(c), time.Now())
			if err != nil {
				return err
			}
			return tx.First(&customer, "id = ?", id).Error
		})
		if err != nil {
			return err
		}

		l := logger.FromCtx(c)
		l.Info().Uint("customer_id", id).Str("amount", entry.Amount.StringFixed(2)).Msg("müşteri ödemesi kaydedildi")

		return c.JSON(fiber.Map{
			"success":  true,
			"message":  "Ödeme başarıyla kaydedildi",
			"customer": customer,
			"payment":  entry,
		})
	}
}

// GET /api/customers/:id/payments
func ListCustomerPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := accountID(c, customerKind)
		if err != nil {
			return err
		}
		if err := customerKind.exists(database.DB, id); err != nil {
			return err
		}
		d, err := customerKind.detail(database.DB, id)
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

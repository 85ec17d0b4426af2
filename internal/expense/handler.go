package expense

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"garaj-backend/internal/audit"
	"garaj-backend/internal/auth"
	"garaj-backend/internal/database"
	"garaj-backend/internal/models"
	"garaj-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateExpenseRequest struct {
	Title       string                 `json:"title" validate:"required"`
	Amount      decimal.Decimal        `json:"amount" validate:"gte=0"`
	Category    models.ExpenseCategory `json:"category" validate:"required"`
	Date        string                 `json:"date"` // "2025-12-09" veya RFC3339, boşsa bugün
	Description string                 `json:"description"`
}

type UpdateExpenseRequest struct {
	Title       *string                 `json:"title"`
	Amount      *decimal.Decimal        `json:"amount" validate:"omitempty,gte=0"`
	Category    *models.ExpenseCategory `json:"category"`
	Date        *string                 `json:"date"`
	Description *string                 `json:"description"`
}

type MonthlyExpenseSummaryItem struct {
	Category models.ExpenseCategory `json:"category"`
	Total    decimal.Decimal        `json:"total"`
	Count    int                    `json:"count"`
}

type MonthlyExpenseSummaryResponse struct {
	Year       int                         `json:"year"`
	Month      int                         `json:"month"`
	Items      []MonthlyExpenseSummaryItem `json:"items"`
	GrandTotal decimal.Decimal             `json:"grandTotal"`
}

// ParseDate accepts "2006-01-02" (midnight in loc) or RFC3339.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("tarih formatı 'YYYY-MM-DD' olmalı")
	}
	return t, nil
}

func expenseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz gider ID")
	}
	return uint(id), nil
}

// GET /api/expenses/categories
func ListExpenseCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"categories": models.ExpenseCategories})
	}
}

// GET /api/expenses?from=2025-01-01&to=2025-01-31&category=kira
func ListExpensesHandler(loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Expense{})

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := ParseDate(fromStr, loc)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from geçersiz")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := ParseDate(toStr, loc)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to geçersiz")
			}
			// gün sonuna kadar dahil
			dbq = dbq.Where("date < ?", to.AddDate(0, 0, 1))
		}
		if cat := models.ExpenseCategory(c.Query("category")); cat != "" {
			if !cat.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "category geçersiz")
			}
			dbq = dbq.Where("category = ?", cat)
		}

		var rows []models.Expense
		if err := dbq.Order("date desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giderler alınırken bir hata oluştu")
		}
		return c.JSON(fiber.Map{"expenses": rows})
	}
}

// GET /api/expenses/:id
func GetExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := expenseID(c)
		if err != nil {
			return err
		}
		var exp models.Expense
		if err := database.DB.First(&exp, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
		}
		return c.JSON(fiber.Map{"success": true, "expense": exp})
	}
}

// POST /api/expenses
func CreateExpenseHandler(loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		body.Title = strings.TrimSpace(body.Title)
		if err := validation.Struct(body); err != nil {
			return err
		}
		if !body.Category.Valid() {
			return validation.Errors{"category": "Geçersiz kategori"}
		}

		exp := models.Expense{
			Title:       body.Title,
			Amount:      body.Amount,
			Category:    body.Category,
			Date:        time.Now().In(loc),
			Description: strings.TrimSpace(body.Description),
		}
		if body.Date != "" {
			d, err := ParseDate(body.Date, loc)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			exp.Date = d
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&exp).Error; err != nil {
				return fmt.Errorf("gider kaydedilemedi: %w", err)
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserName:    auth.CurrentUser(c),
				EntityType:  audit.EntityExpense,
				EntityID:    exp.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Gider eklendi: %s - %s TL", exp.Title, exp.Amount.StringFixed(2)),
				After:       exp,
			})
		})
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "Gider başarıyla eklendi",
			"expense": exp,
		})
	}
}

// PUT /api/expenses/:id
func UpdateExpenseHandler(loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := expenseID(c)
		if err != nil {
			return err
		}
		var body UpdateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		var exp models.Expense
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&exp, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
				}
				return err
			}
			before := exp

			if body.Title != nil {
				title := strings.TrimSpace(*body.Title)
				if title == "" {
					return validation.Errors{"title": "zorunlu alan"}
				}
				exp.Title = title
			}
			if body.Amount != nil {
				exp.Amount = *body.Amount
			}
			if body.Category != nil {
				if !body.Category.Valid() {
					return validation.Errors{"category": "Geçersiz kategori"}
				}
				exp.Category = *body.Category
			}
			if body.Date != nil {
				d, err := ParseDate(*body.Date, loc)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
				}
				exp.Date = d
			}
			if body.Description != nil {
				exp.Description = strings.TrimSpace(*body.Description)
			}

			if err := tx.Save(&exp).Error; err != nil {
				return fmt.Errorf("gider güncellenemedi: %w", err)
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserName:    auth.CurrentUser(c),
				EntityType:  audit.EntityExpense,
				EntityID:    exp.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Gider güncellendi: %s", exp.Title),
				Before:      before,
				After:       exp,
			})
		})
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Gider başarıyla güncellendi",
			"expense": exp,
		})
	}
}

// DELETE /api/expenses/:id
func DeleteExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := expenseID(c)
		if err != nil {
			return err
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var exp models.Expense
			if err := tx.First(&exp, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
				}
				return err
			}
			if err := tx.Delete(&models.Expense{}, "id = ?", id).Error; err != nil {
				return fmt.Errorf("gider silinemedi: %w", err)
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserName:    auth.CurrentUser(c),
				EntityType:  audit.EntityExpense,
				EntityID:    exp.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Gider silindi: %s - %s TL", exp.Title, exp.Amount.StringFixed(2)),
				Before:      exp,
			})
		})
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "message": "Gider başarıyla silindi"})
	}
}

// -------------------------
// Aylık gider özeti
// GET /api/expenses/summary/monthly?year=2025&month=12
// -------------------------
func MonthlyExpenseSummaryHandler(loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year := c.QueryInt("year")
		month := c.QueryInt("month")
		if year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
		}
		if month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month geçersiz")
		}

		firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		nextMonth := firstDay.AddDate(0, 1, 0)

		var rows []models.Expense
		if err := database.DB.
			Where("date >= ? AND date < ?", firstDay, nextMonth).
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}

		return c.JSON(summarize(year, month, rows))
	}
}

func summarize(year, month int, rows []models.Expense) MonthlyExpenseSummaryResponse {
	byCat := make(map[models.ExpenseCategory]*MonthlyExpenseSummaryItem)
	resp := MonthlyExpenseSummaryResponse{
		Year:       year,
		Month:      month,
		Items:      []MonthlyExpenseSummaryItem{},
		GrandTotal: decimal.Zero,
	}
	for _, r := range rows {
		item, ok := byCat[r.Category]
		if !ok {
			item = &MonthlyExpenseSummaryItem{Category: r.Category, Total: decimal.Zero}
			byCat[r.Category] = item
		}
		item.Total = item.Total.Add(r.Amount)
		item.Count++
		resp.GrandTotal = resp.GrandTotal.Add(r.Amount)
	}
	// sabit kategori sırası
	for _, cat := range models.ExpenseCategories {
		if item, ok := byCat[cat]; ok {
			resp.Items = append(resp.Items, *item)
		}
	}
	return resp
}

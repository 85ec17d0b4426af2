package account

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"garaj-backend/internal/apperr"
	"garaj-backend/internal/audit"
	"garaj-backend/internal/ledger"
	"garaj-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// kind holds what differs between firms and customers; everything else is shared.
type kind struct {
	label     string // "Firma" / "Müşteri"
	entity    string
	jobColumn string
	account   func(id uint) ledger.Account
}

var (
	firmKind = kind{
		label:     "Firma",
		entity:    audit.EntityFirm,
		jobColumn: "firm_id",
		account:   ledger.FirmAccount,
	}
	customerKind = kind{
		label:     "Müşteri",
		entity:    audit.EntityCustomer,
		jobColumn: "customer_id",
		account:   ledger.CustomerAccount,
	}
)

func (k kind) notFound() error {
	return fiber.NewError(fiber.StatusNotFound, k.label+" bulunamadı")
}

// exists distinguishes a missing account (404) from a failing query.
func (k kind) exists(db *gorm.DB, id uint) error {
	err := ledger.Exists(db, k.account(id))
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return k.notFound()
	}
	if err != nil {
		return fmt.Errorf("%s okunamadı: %w", strings.ToLower(k.label), err)
	}
	return nil
}

type PaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Detail is the read model of a firm or customer page.
type Detail struct {
	Summary  ledger.Summary       `json:"summary"`
	Payments []models.LedgerEntry `json:"payments"`
	Jobs     []models.Job         `json:"jobs"`
}

func (k kind) detail(db *gorm.DB, id uint) (*Detail, error) {
	acc := k.account(id)
	sum, err := ledger.Summarize(db, acc)
	if err != nil {
		return nil, err
	}
	payments, err := ledger.Payments(db, acc)
	if err != nil {
		return nil, err
	}
	var jobs []models.Job
	if err := db.Where(k.jobColumn+" = ?", id).Preload("Parts").Order("date desc, id desc").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("işler okunamadı: %w", err)
	}
	return &Detail{Summary: sum, Payments: payments, Jobs: jobs}, nil
}

// guardDelete refuses deletion while a job not in Tamamlandı references the account.
func (k kind) guardDelete(tx *gorm.DB, id uint) error {
	var open int64
	if err := tx.Model(&models.Job{}).
		Where(k.jobColumn+" = ? AND status <> ?", id, models.JobStatusCompleted).
		Count(&open).Error; err != nil {
		return err
	}
	if open > 0 {
		return apperr.Invalid(fmt.Sprintf("Tamamlanmamış işleri olan %s silinemez", strings.ToLower(k.label)))
	}
	return nil
}

// deleteAccount removes the row and its ledger history.
func (k kind) deleteAccount(tx *gorm.DB, model any, id uint) error {
	if err := k.guardDelete(tx, id); err != nil {
		return err
	}
	acc := k.account(id)
	if err := tx.Where("account_type = ? AND account_id = ?", acc.Type, acc.ID).
		Delete(&models.LedgerEntry{}).Error; err != nil {
		return fmt.Errorf("hesap hareketleri silinemedi: %w", err)
	}
	if err := tx.Delete(model, "id = ?", id).Error; err != nil {
		return fmt.Errorf("%s silinemedi: %w", strings.ToLower(k.label), err)
	}
	return nil
}

// pay records a payment and its audit record in tx.
func (k kind) pay(tx *gorm.DB, id uint, body PaymentRequest, actor string, now time.Time) (*models.LedgerEntry, error) {
	entry, err := ledger.Pay(tx, k.account(id), body.Amount, body.Description, now)
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return nil, fiber.NewError(fiber.StatusBadRequest, "Geçerli bir ödeme tutarı giriniz")
	case errors.Is(err, ledger.ErrAccountNotFound):
		return nil, k.notFound()
	case err != nil:
		return nil, err
	}

	err = audit.WriteLog(tx, audit.LogOptions{
		UserName:    actor,
		EntityType:  k.entity,
		EntityID:    id,
		Action:      models.AuditActionPayment,
		Description: fmt.Sprintf("%s ödemesi: %s TL - %s", k.label, entry.Amount.StringFixed(2), entry.Description),
		After:       entry,
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func accountID(c *fiber.Ctx, k kind) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz "+strings.ToLower(k.label)+" ID")
	}
	return uint(id), nil
}

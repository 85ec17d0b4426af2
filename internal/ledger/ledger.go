package ledger

import (
	"fmt"
	"strings"
	"time"

	"garaj-backend/internal/apperr"
	"garaj-backend/internal/database"
	"garaj-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound     = apperr.NotFound("hesap bulunamadı")
	ErrInvalidAmount       = apperr.Invalid("tutar 0'dan büyük olmalı")
	ErrInsufficientBalance = apperr.Invalid("bakiye yetersiz")
)

// InsufficientBalanceError matches ErrInsufficientBalance with errors.Is.
type InsufficientBalanceError struct {
	Account Account
	Current decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s bakiyesi yetersiz", e.Account.Label())
}

func (e *InsufficientBalanceError) Is(target error) bool { return target == ErrInsufficientBalance }

func (e *InsufficientBalanceError) ErrorKind() apperr.Kind { return apperr.KindInvalid }

func (e *InsufficientBalanceError) Details() any {
	return map[string]any{"currentBalance": e.Current}
}

const defaultPaymentDescription = "Ödeme"

// Account identifies a firm or customer balance.
type Account struct {
	Type models.AccountType
	ID   uint
}

func FirmAccount(id uint) Account     { return Account{Type: models.AccountFirm, ID: id} }
func CustomerAccount(id uint) Account { return Account{Type: models.AccountCustomer, ID: id} }

// ForJob returns the account a job is billed to, if any.
func ForJob(job *models.Job) (Account, bool) {
	switch {
	case job.FirmID != nil:
		return FirmAccount(*job.FirmID), true
	case job.CustomerID != nil:
		return CustomerAccount(*job.CustomerID), true
	}
	return Account{}, false
}

// Label is the Turkish account kind, used in messages and reports.
func (a Account) Label() string {
	if a.Type == models.AccountFirm {
		return "Firma"
	}
	return "Müşteri"
}

func (a Account) model() any {
	if a.Type == models.AccountFirm {
		return &models.Firm{}
	}
	return &models.Customer{}
}

type Summary struct {
	TotalBalance   decimal.Decimal `json:"totalBalance"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
}

// Summarize folds every entry of the account.
// totalBalance = Σcharge − Σreversal, currentBalance = totalBalance − Σpayment.
func Summarize(tx *gorm.DB, acc Account) (Summary, error) {
	var entries []models.LedgerEntry
	if err := tx.Where("account_type = ? AND account_id = ?", acc.Type, acc.ID).
		Find(&entries).Error; err != nil {
		return Summary{}, fmt.Errorf("hesap hareketleri okunamadı: %w", err)
	}

	s := Summary{TotalBalance: decimal.Zero, TotalPaid: decimal.Zero}
	for _, e := range entries {
		switch e.Kind {
		case models.EntryCharge:
			s.TotalBalance = s.TotalBalance.Add(e.Amount)
		case models.EntryReversal:
			s.TotalBalance = s.TotalBalance.Sub(e.Amount)
		case models.EntryPayment:
			s.TotalPaid = s.TotalPaid.Add(e.Amount)
		}
	}
	s.CurrentBalance = s.TotalBalance.Sub(s.TotalPaid)
	return s, nil
}

// Exists reports ErrAccountNotFound for a missing firm or customer row.
func Exists(tx *gorm.DB, acc Account) error {
	var count int64
	if err := tx.Model(acc.model()).Where("id = ?", acc.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%s #%d: %w", acc.Label(), acc.ID, ErrAccountNotFound)
	}
	return nil
}

// Charge bills a job's price to the account. Zero amounts post nothing.
func Charge(tx *gorm.DB, acc Account, jobID uint, amount decimal.Decimal, now time.Time) error {
	if amount.IsZero() {
		return nil
	}
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	return post(tx, acc, models.LedgerEntry{
		Kind:        models.EntryCharge,
		Amount:      amount,
		JobID:       &jobID,
		Description: fmt.Sprintf("İş #%d", jobID),
		Date:        now,
	})
}

// Reverse undoes whatever is still charged for the job and returns that amount.
func Reverse(tx *gorm.DB, acc Account, jobID uint, now time.Time) (decimal.Decimal, error) {
	if err := Exists(tx, acc); err != nil {
		return decimal.Zero, err
	}
	outstanding, err := JobCharge(tx, acc, jobID)
	if err != nil {
		return decimal.Zero, err
	}
	if !outstanding.IsPositive() {
		return decimal.Zero, nil
	}
	err = post(tx, acc, models.LedgerEntry{
		Kind:        models.EntryReversal,
		Amount:      outstanding,
		JobID:       &jobID,
		Description: fmt.Sprintf("İş #%d iade", jobID),
		Date:        now,
	})
	return outstanding, err
}

// JobCharge is the amount currently billed to acc for jobID.
func JobCharge(tx *gorm.DB, acc Account, jobID uint) (decimal.Decimal, error) {
	var entries []models.LedgerEntry
	if err := tx.Where("account_type = ? AND account_id = ? AND job_id = ?", acc.Type, acc.ID, jobID).
		Find(&entries).Error; err != nil {
		return decimal.Zero, fmt.Errorf("iş hareketleri okunamadı: %w", err)
	}
	total := decimal.Zero
	for _, e := range entries {
		switch e.Kind {
		case models.EntryCharge:
			total = total.Add(e.Amount)
		case models.EntryReversal:
			total = total.Sub(e.Amount)
		}
	}
	return total, nil
}

// Pay records a payment against the current balance.
func Pay(tx *gorm.DB, acc Account, amount decimal.Decimal, description string, now time.Time) (*models.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := Exists(tx, acc); err != nil {
		return nil, err
	}

	sum, err := Summarize(tx, acc)
	if err != nil {
		return nil, err
	}
	if sum.CurrentBalance.LessThan(amount) {
		return nil, &InsufficientBalanceError{Account: acc, Current: sum.CurrentBalance}
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = defaultPaymentDescription
	}

	entry := models.LedgerEntry{
		Kind:        models.EntryPayment,
		Amount:      amount,
		Description: description,
		Date:        now,
	}
	if err := post(tx, acc, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Payments lists the account's payments, newest first.
func Payments(tx *gorm.DB, acc Account) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	err := tx.Where("account_type = ? AND account_id = ? AND kind = ?", acc.Type, acc.ID, models.EntryPayment).
		Order("date desc, id desc").
		Find(&out).Error
	return out, err
}

func post(tx *gorm.DB, acc Account, entry models.LedgerEntry) error {
	entry.AccountType = acc.Type
	entry.AccountID = acc.ID
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("hesap hareketi kaydedilemedi: %w", err)
	}
	return Sync(tx, acc)
}

// Sync rewrites the cached balances on the firm/customer row from the entries.
func Sync(tx *gorm.DB, acc Account) error {
	var version uint
	if err := tx.Model(acc.model()).Select("version").Where("id = ?", acc.ID).Scan(&version).Error; err != nil {
		return err
	}
	if version == 0 {
		return fmt.Errorf("%s #%d: %w", acc.Label(), acc.ID, ErrAccountNotFound)
	}

	sum, err := Summarize(tx, acc)
	if err != nil {
		return err
	}
	return database.UpdateVersioned(tx, acc.model(), acc.ID, version, map[string]any{
		"total_balance":   sum.TotalBalance,
		"current_balance": sum.CurrentBalance,
	})
}

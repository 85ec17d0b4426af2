package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseCategory string

const (
	ExpenseElectricity ExpenseCategory = "elektrik"
	ExpenseWater       ExpenseCategory = "su"
	ExpenseGas         ExpenseCategory = "doğalgaz"
	ExpenseRent        ExpenseCategory = "kira"
	ExpenseSalary      ExpenseCategory = "maaş"
	ExpenseMaterial    ExpenseCategory = "malzeme"
	ExpenseMaintenance ExpenseCategory = "bakım"
	ExpenseOther       ExpenseCategory = "diğer"
)

// ExpenseCategories is the closed list, in display order.
var ExpenseCategories = []ExpenseCategory{
	ExpenseElectricity,
	ExpenseWater,
	ExpenseGas,
	ExpenseRent,
	ExpenseSalary,
	ExpenseMaterial,
	ExpenseMaintenance,
	ExpenseOther,
}

func (c ExpenseCategory) Valid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Expense - Gider kaydı, bakiyelerden bağımsız
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"size:200;not null" json:"title"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category    ExpenseCategory `gorm:"size:20;not null;index" json:"category"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Description string          `gorm:"size:1000" json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

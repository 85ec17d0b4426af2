package report

import (
	"fmt"
	"io"
	"sort"

	"garaj-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary  = "Özet"
	SheetTrend    = "Trend"
	SheetExpenses = "Giderler"
)

// WriteXLSX renders rep as a workbook with summary, trend and expense sheets.
func WriteXLSX(w io.Writer, rep *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetTrend, SheetExpenses} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	// Özet
	summary := [][]any{
		{"Rapor türü", string(rep.ReportType)},
		{"Başlangıç", rep.StartDate},
		{"Bitiş", rep.EndDate},
		{"Toplam gelir", rep.TotalIncome.InexactFloat64()},
		{"Toplam gider", rep.TotalExpenses.InexactFloat64()},
		{"Net kâr", rep.NetProfit.InexactFloat64()},
	}
	row := 1
	for _, vals := range summary {
		if err := setRow(f, SheetSummary, row, vals); err != nil {
			return err
		}
		row++
	}

	row++
	if err := setRow(f, SheetSummary, row, []any{"Gider kategorisi", "Tutar"}); err != nil {
		return err
	}
	_ = f.SetCellStyle(SheetSummary, cell(1, row), cell(2, row), bold)
	row++
	for _, cat := range models.ExpenseCategories {
		amount, ok := rep.ExpensesByCategory[cat]
		if !ok {
			continue
		}
		if err := setRow(f, SheetSummary, row, []any{string(cat), amount.InexactFloat64()}); err != nil {
			return err
		}
		row++
	}

	row++
	if err := setRow(f, SheetSummary, row, []any{"Gelir türü", "Kaynak", "Tutar"}); err != nil {
		return err
	}
	_ = f.SetCellStyle(SheetSummary, cell(1, row), cell(3, row), bold)
	row++
	for _, kind := range []string{IncomeFirm, IncomeCustomer} {
		group, ok := rep.IncomeByType[kind]
		if !ok {
			continue
		}
		for _, name := range sortedKeys(group.Sources) {
			if err := setRow(f, SheetSummary, row, []any{kind, name, group.Sources[name].InexactFloat64()}); err != nil {
				return err
			}
			row++
		}
	}

	// Trend
	if err := setRow(f, SheetTrend, 1, []any{"Tarih", "Gelir", "Gider"}); err != nil {
		return err
	}
	_ = f.SetCellStyle(SheetTrend, "A1", "C1", bold)
	for i, p := range rep.TrendData {
		if err := setRow(f, SheetTrend, i+2, []any{p.Date, p.Income.InexactFloat64(), p.Expenses.InexactFloat64()}); err != nil {
			return err
		}
	}

	// Giderler
	if err := setRow(f, SheetExpenses, 1, []any{"Tarih", "Başlık", "Kategori", "Tutar", "Açıklama"}); err != nil {
		return err
	}
	_ = f.SetCellStyle(SheetExpenses, "A1", "E1", bold)
	for i, exp := range rep.Expenses {
		vals := []any{
			exp.Date.Format("2006-01-02"),
			exp.Title,
			string(exp.Category),
			exp.Amount.InexactFloat64(),
			exp.Description,
		}
		if err := setRow(f, SheetExpenses, i+2, vals); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx yazılamadı: %w", err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	for i, v := range vals {
		if err := f.SetCellValue(sheet, cell(i+1, row), v); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

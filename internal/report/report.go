package report

import (
	"fmt"
	"time"

	"garaj-backend/internal/apperr"
	"garaj-backend/internal/expense"
	"garaj-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

const (
	IncomeFirm     = "Firma"
	IncomeCustomer = "Müşteri"
)

var (
	ErrInvalidPeriod = apperr.Invalid("reportType daily, weekly veya monthly olmalı")
	ErrInvalidRange  = apperr.Invalid("Başlangıç tarihi bitiş tarihinden sonra olamaz")
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodDaily, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p, nil
	}
	return "", ErrInvalidPeriod
}

// next returns the start of the bucket following t.
func (p Period) next(t time.Time) time.Time {
	switch p {
	case PeriodWeekly:
		return t.AddDate(0, 0, 7)
	case PeriodMonthly:
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}

// Range is the half-open interval [Start, End) covering whole days in the
// configured location.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseRange expands startDate/endDate to whole days. Empty values mean today.
func ParseRange(startStr, endStr string, loc *time.Location, now time.Time) (Range, error) {
	day := func(s string) (time.Time, error) {
		t := now
		if s != "" {
			parsed, err := expense.ParseDate(s, loc)
			if err != nil {
				return time.Time{}, apperr.Invalid(fmt.Sprintf("Geçersiz tarih: %s", s))
			}
			t = parsed
		}
		t = t.In(loc)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
	}

	start, err := day(startStr)
	if err != nil {
		return Range{}, err
	}
	end, err := day(endStr)
	if err != nil {
		return Range{}, err
	}
	if start.After(end) {
		return Range{}, ErrInvalidRange
	}
	return Range{Start: start, End: end.AddDate(0, 0, 1)}, nil
}

func (r Range) contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

type IncomeGroup struct {
	Total   decimal.Decimal            `json:"total"`
	Sources map[string]decimal.Decimal `json:"sources"`
}

type TrendPoint struct {
	Date     string          `json:"date"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

type Report struct {
	ReportType         Period                                     `json:"reportType"`
	StartDate          string                                     `json:"startDate"`
	EndDate            string                                     `json:"endDate"`
	TotalIncome        decimal.Decimal                            `json:"totalIncome"`
	TotalExpenses      decimal.Decimal                            `json:"totalExpenses"`
	NetProfit          decimal.Decimal                            `json:"netProfit"`
	ExpensesByCategory map[models.ExpenseCategory]decimal.Decimal `json:"expensesByCategory"`
	IncomeByType       map[string]*IncomeGroup                    `json:"incomeByType"`
	Expenses           []models.Expense                           `json:"expenses"`
	TrendData          []TrendPoint                               `json:"trendData"`
}

// Build loads completed jobs and expenses dated in r and aggregates them.
func Build(db *gorm.DB, r Range, period Period) (*Report, error) {
	var jobs []models.Job
	if err := db.
		Preload("Firm").
		Preload("Customer").
		Where("status = ? AND date >= ? AND date < ?", models.JobStatusCompleted, r.Start, r.End).
		Order("date asc").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("işler alınamadı: %w", err)
	}

	var expenses []models.Expense
	if err := db.
		Where("date >= ? AND date < ?", r.Start, r.End).
		Order("date asc").
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("giderler alınamadı: %w", err)
	}

	return Aggregate(jobs, expenses, r, period), nil
}

// incomeSource returns the income type and the name the income is credited to.
func incomeSource(job *models.Job) (string, string) {
	if job.FirmID != nil {
		if job.Firm != nil {
			return IncomeFirm, job.Firm.Name
		}
		return IncomeFirm, job.Name
	}
	if job.Customer != nil {
		return IncomeCustomer, job.Customer.Name
	}
	return IncomeCustomer, job.Name
}

// Aggregate computes the report over already loaded rows. Rows outside r are ignored.
func Aggregate(jobs []models.Job, expenses []models.Expense, r Range, period Period) *Report {
	rep := &Report{
		ReportType:         period,
		StartDate:          r.Start.Format("2006-01-02"),
		EndDate:            r.End.AddDate(0, 0, -1).Format("2006-01-02"),
		TotalIncome:        decimal.Zero,
		TotalExpenses:      decimal.Zero,
		ExpensesByCategory: map[models.ExpenseCategory]decimal.Decimal{},
		IncomeByType:       map[string]*IncomeGroup{},
		Expenses:           []models.Expense{},
		TrendData:          []TrendPoint{},
	}

	for i := range jobs {
		job := &jobs[i]
		if job.Status != models.JobStatusCompleted || !r.contains(job.Date) {
			continue
		}
		kind, name := incomeSource(job)
		group, ok := rep.IncomeByType[kind]
		if !ok {
			group = &IncomeGroup{Total: decimal.Zero, Sources: map[string]decimal.Decimal{}}
			rep.IncomeByType[kind] = group
		}
		group.Total = group.Total.Add(job.Price)
		group.Sources[name] = group.Sources[name].Add(job.Price)
		rep.TotalIncome = rep.TotalIncome.Add(job.Price)
	}

	for _, exp := range expenses {
		if !r.contains(exp.Date) {
			continue
		}
		rep.Expenses = append(rep.Expenses, exp)
		rep.ExpensesByCategory[exp.Category] = rep.ExpensesByCategory[exp.Category].Add(exp.Amount)
		rep.TotalExpenses = rep.TotalExpenses.Add(exp.Amount)
	}
	rep.NetProfit = rep.TotalIncome.Sub(rep.TotalExpenses)

	// Her dilim [başlangıç, sonraki başlangıç) ∩ aralık
	for cur := r.Start; cur.Before(r.End); cur = period.next(cur) {
		bucket := Range{Start: cur, End: period.next(cur)}
		if bucket.End.After(r.End) {
			bucket.End = r.End
		}

		point := TrendPoint{Date: cur.Format("2006-01-02"), Income: decimal.Zero, Expenses: decimal.Zero}
		for i := range jobs {
			if jobs[i].Status == models.JobStatusCompleted && bucket.contains(jobs[i].Date) {
				point.Income = point.Income.Add(jobs[i].Price)
			}
		}
		for _, exp := range rep.Expenses {
			if bucket.contains(exp.Date) {
				point.Expenses = point.Expenses.Add(exp.Amount)
			}
		}
		rep.TrendData = append(rep.TrendData, point)
	}

	return rep
}

package dashboard

import (
	"time"

	"garaj-backend/internal/database"
	"garaj-backend/internal/report"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type IncomeChartPoint struct {
	Label    string          `json:"label"` // tarih / hafta başlangıcı / ay başlangıcı
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

type IncomeChartResponse struct {
	Period        report.Period      `json:"period"` // daily | weekly | monthly
	From          string             `json:"from"`
	To            string             `json:"to"`
	Points        []IncomeChartPoint `json:"points"`
	TotalIncome   decimal.Decimal    `json:"totalIncome"`
	TotalExpenses decimal.Decimal    `json:"totalExpenses"`
}

// chartRange returns the last count buckets of period ending today.
func chartRange(period report.Period, count int, now time.Time, loc *time.Location) report.Range {
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	end := today.AddDate(0, 0, 1)

	var start time.Time
	switch period {
	case report.PeriodWeekly:
		start = end.AddDate(0, 0, -7*count)
	case report.PeriodMonthly:
		// ilgili ayların başından itibaren
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -(count - 1), 0)
	default:
		start = end.AddDate(0, 0, -count)
	}
	return report.Range{Start: start, End: end}
}

// GET /api/dashboard/income-chart?period=daily&count=7
func IncomeChartHandler(loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period, err := report.ParsePeriod(c.Query("period"))
		if err != nil {
			return err
		}

		count := c.QueryInt("count", 0)
		if c.Query("count") == "" {
			switch period {
			case report.PeriodWeekly:
				count = 8
			case report.PeriodMonthly:
				count = 12
			default:
				count = 7
			}
		}
		if count <= 0 || count > 366 {
			return fiber.NewError(fiber.StatusBadRequest, "count geçersiz")
		}

		r := chartRange(period, count, time.Now(), loc)
		rep, err := report.Build(database.DB, r, period)
		if err != nil {
			return err
		}

		resp := IncomeChartResponse{
			Period:        period,
			From:          rep.StartDate,
			To:            rep.EndDate,
			Points:        make([]IncomeChartPoint, 0, len(rep.TrendData)),
			TotalIncome:   rep.TotalIncome,
			TotalExpenses: rep.TotalExpenses,
		}
		for _, p := range rep.TrendData {
			resp.Points = append(resp.Points, IncomeChartPoint{
				Label:    p.Date,
				Income:   p.Income,
				Expenses: p.Expenses,
				Net:      p.Income.Sub(p.Expenses),
			})
		}
		return c.JSON(resp)
	}
}

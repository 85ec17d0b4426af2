package dashboard

import (
	"garaj-backend/internal/database"
	"garaj-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Stats struct {
	TotalJobs     int64                      `json:"totalJobs"`
	JobsByStatus  map[models.JobStatus]int64 `json:"jobsByStatus"`
	TotalIncome   decimal.Decimal            `json:"totalIncome"` // iptal edilmemiş işlerin toplamı
	TotalExpenses decimal.Decimal            `json:"totalExpenses"`
	Receivables   decimal.Decimal            `json:"receivables"` // firma + müşteri açık bakiyeleri
	LowStockCount int64                      `json:"lowStockCount"`
}

func collectStats(db *gorm.DB) (*Stats, error) {
	st := &Stats{JobsByStatus: map[models.JobStatus]int64{}}

	var jobs []models.Job
	if err := db.Select("id", "price", "status").Find(&jobs).Error; err != nil {
		return nil, err
	}
	st.TotalJobs = int64(len(jobs))
	st.TotalIncome = decimal.Zero
	for _, j := range jobs {
		st.JobsByStatus[j.Status]++
		if !j.IsCancelled() {
			st.TotalIncome = st.TotalIncome.Add(j.Price)
		}
	}

	var expenses []models.Expense
	if err := db.Select("id", "amount").Find(&expenses).Error; err != nil {
		return nil, err
	}
	st.TotalExpenses = decimal.Zero
	for _, e := range expenses {
		st.TotalExpenses = st.TotalExpenses.Add(e.Amount)
	}

	var firms []models.Firm
	if err := db.Select("id", "current_balance").Find(&firms).Error; err != nil {
		return nil, err
	}
	var customers []models.Customer
	if err := db.Select("id", "current_balance").Find(&customers).Error; err != nil {
		return nil, err
	}
	st.Receivables = decimal.Zero
	for _, f := range firms {
		st.Receivables = st.Receivables.Add(f.CurrentBalance)
	}
	for _, cu := range customers {
		st.Receivables = st.Receivables.Add(cu.CurrentBalance)
	}

	if err := db.Model(&models.Stock{}).
		Where("quantity <= min_quantity").
		Count(&st.LowStockCount).Error; err != nil {
		return nil, err
	}
	return st, nil
}

// GET /api/dashboard/stats
func StatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := collectStats(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İstatistikler alınırken bir hata oluştu")
		}
		return c.JSON(st)
	}
}

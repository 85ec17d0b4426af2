package server

import (
	"strings"

	"garaj-backend/internal/account"
	"garaj-backend/internal/apperr"
	"garaj-backend/internal/audit"
	"garaj-backend/internal/auth"
	"garaj-backend/internal/config"
	"garaj-backend/internal/dashboard"
	"garaj-backend/internal/expense"
	"garaj-backend/internal/inventory"
	"garaj-backend/internal/jobs"
	"garaj-backend/internal/logger"
	"garaj-backend/internal/report"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// New builds the HTTP app with every route mounted under /api.
func New(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "garaj-backend",
		ErrorHandler: apperr.Handler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.RequestLogger())

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(corsOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: !containsWildcard(corsOrigins),
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	loc := cfg.Location()
	api := app.Group("/api")

	// Public auth
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Post("/auth/logout", auth.LogoutHandler())

	// Protected
	protected := api.Group("")
	protected.Use(auth.Middleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// İşler (/jobs/clear, /jobs/:id'den önce)
	protected.Get("/jobs", jobs.ListJobsHandler())
	protected.Post("/jobs", jobs.CreateJobHandler(loc))
	protected.Put("/jobs", jobs.UpdateJobHandler(loc))
	protected.Delete("/jobs/clear", jobs.ClearJobsHandler())
	protected.Get("/jobs/:id", jobs.GetJobHandler())
	protected.Put("/jobs/:id", jobs.UpdateJobHandler(loc))
	protected.Delete("/jobs/:id", jobs.DeleteJobHandler())
	protected.Post("/jobs/:id/cancel", jobs.CancelJobHandler())

	// Stok
	protected.Get("/stock", inventory.ListStocksHandler())
	protected.Post("/stock", inventory.CreateStockHandler())
	protected.Put("/stock", inventory.UpdateStockHandler())
	protected.Delete("/stock", inventory.DeleteStockHandler())
	protected.Get("/stock/low", inventory.ListLowStocksHandler())
	protected.Get("/stock/:id", inventory.GetStockHandler())
	protected.Put("/stock/:id", inventory.UpdateStockHandler())
	protected.Delete("/stock/:id", inventory.DeleteStockHandler())

	// Firmalar
	protected.Get("/firms", account.ListFirmsHandler())
	protected.Post("/firms", account.CreateFirmHandler())
	protected.Put("/firms", account.UpdateFirmHandler())
	protected.Get("/firms/:id", account.GetFirmHandler())
	protected.Put("/firms/:id", account.UpdateFirmHandler())
	protected.Delete("/firms/:id", account.DeleteFirmHandler())
	protected.Post("/firms/:id/payments", account.CreateFirmPaymentHandler())
	protected.Get("/firms/:id/payments", account.ListFirmPaymentsHandler())

	// Müşteriler
	protected.Get("/customers", account.ListCustomersHandler())
	protected.Post("/customers", account.CreateCustomerHandler())
	protected.Get("/customers/:id", account.GetCustomerHandler())
	protected.Put("/customers/:id", account.UpdateCustomerHandler())
	protected.Delete("/customers/:id", account.DeleteCustomerHandler())
	protected.Post("/customers/:id/payments", account.CreateCustomerPaymentHandler())
	protected.Get("/customers/:id/payments", account.ListCustomerPaymentsHandler())

	// Giderler
	protected.Get("/expenses/categories", expense.ListExpenseCategoriesHandler())
	protected.Get("/expenses/summary/monthly", expense.MonthlyExpenseSummaryHandler(loc))
	protected.Get("/expenses", expense.ListExpensesHandler(loc))
	protected.Post("/expenses", expense.CreateExpenseHandler(loc))
	protected.Get("/expenses/:id", expense.GetExpenseHandler())
	protected.Put("/expenses/:id", expense.UpdateExpenseHandler(loc))
	protected.Delete("/expenses/:id", expense.DeleteExpenseHandler())

	// Raporlar
	protected.Get("/reports", report.GetReportHandler(loc))
	protected.Get("/reports/export", report.ExportReportHandler(loc))

	// Dashboard
	protected.Get("/dashboard/stats", dashboard.StatsHandler())
	protected.Get("/dashboard/income-chart", dashboard.IncomeChartHandler(loc))

	// Audit log
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	return app
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

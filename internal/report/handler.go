package report

import (
	"bytes"
	"fmt"
	"time"

	"garaj-backend/internal/database"

	"github.com/gofiber/fiber/v2"
)

func buildFromQuery(c *fiber.Ctx, loc *time.Location) (*Report, error) {
	period, err := ParsePeriod(c.Query("reportType"))
	if err != nil {
		return nil, err
	}
	r, err := ParseRange(c.Query("startDate"), c.Query("endDate"), loc, time.Now())
	if err != nil {
		return nil, err
	}
	return Build(database.DB, r, period)
}

// GET /api/reports?startDate=2025-01-01&endDate=2025-01-31&reportType=weekly
func GetReportHandler(loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rep, err := buildFromQuery(c, loc)
		if err != nil {
			return err
		}
		return c.JSON(rep)
	}
}

// GET /api/reports/export?... aynı rapor, xlsx olarak
func ExportReportHandler(loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rep, err := buildFromQuery(c, loc)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := WriteXLSX(&buf, rep); err != nil {
			return err
		}

		filename := fmt.Sprintf("rapor_%s_%s.xlsx", rep.StartDate, rep.EndDate)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
		return c.Send(buf.Bytes())
	}
}

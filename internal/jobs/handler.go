package jobs

import (
	"fmt"
	"time"

	"garaj-backend/internal/auth"
	"garaj-backend/internal/database"
	"garaj-backend/internal/logger"
	"garaj-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JobResponse adds the derived parts total to a job.
type JobResponse struct {
	models.Job
	PartsTotal decimal.Decimal `json:"partsTotal"`
}

func toResponse(job *models.Job) JobResponse {
	return JobResponse{Job: *job, PartsTotal: job.PartsTotal()}
}

func jobID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz iş ID")
	}
	return uint(id), nil
}

// GET /api/jobs?firm=&customer=&status=
func ListJobsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := ListFilter{
			FirmID:     uint(c.QueryInt("firm")),
			CustomerID: uint(c.QueryInt("customer")),
			Status:     models.JobStatus(c.Query("status")),
		}
		if f.Status != "" && !f.Status.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz durum değeri")
		}

		list, err := List(database.DB, f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşler alınırken bir hata oluştu")
		}

		resp := make([]JobResponse, 0, len(list))
		for i := range list {
			resp = append(resp, toResponse(&list[i]))
		}
		return c.JSON(fiber.Map{"jobs": resp})
	}
}

// GET /api/jobs/:id
func GetJobHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := jobID(c)
		if err != nil {
			return err
		}
		job, err := Get(database.DB, id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "job": toResponse(job)})
	}
}

// POST /api/jobs
func CreateJobHandler(loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateJobRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		svc := NewService(auth.CurrentUser(c), loc)
		var job *models.Job
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			job, err = svc.Create(tx, body)
			return err
		})
		if err != nil {
			return err
		}

		l := logger.FromCtx(c)
		l.Info().Uint("job_id", job.ID).Str("price", job.Price.StringFixed(2)).Msg("iş oluşturuldu")

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "İş başarıyla eklendi",
			"job":     toResponse(job),
		})
	}
}

// PUT /api/jobs/:id veya PUT /api/jobs (id gövdede)
func UpdateJobHandler(loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateJobRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if pid, err := c.ParamsInt("id"); err == nil && pid > 0 {
			body.ID = uint(pid)
		}
		if body.ID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İş ID zorunlu")
		}

		svc := NewService(auth.CurrentUser(c), loc)
		var job *models.Job
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			job, err = svc.Update(tx, body.ID, body)
			return err
		})
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "İş başarıyla güncellendi",
			"job":     toResponse(job),
		})
	}
}

// POST /api/jobs/:id/cancel
func CancelJobHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := jobID(c)
		if err != nil {
			return err
		}

		svc := NewService(auth.CurrentUser(c), nil)
		var job *models.Job
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			job, err = svc.Cancel(tx, id)
			return err
		})
		if err != nil {
			return err
		}

		l := logger.FromCtx(c)
		l.Info().Uint("job_id", job.ID).Str("price", job.Price.StringFixed(2)).Msg("iş iptal edildi")

		return c.JSON(fiber.Map{
			"success": true,
			"message": "İş başarıyla iptal edildi",
			"job":     toResponse(job),
		})
	}
}

// DELETE /api/jobs/:id
func DeleteJobHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := jobID(c)
		if err != nil {
			return err
		}

		svc := NewService(auth.CurrentUser(c), nil)
		if err := database.DB.Transaction(func(tx *gorm.DB) error {
			return svc.Delete(tx, id)
		}); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "message": "İş başarıyla silindi"})
	}
}

// DELETE /api/jobs/clear
func ClearJobsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc := NewService(auth.CurrentUser(c), nil)
		var count int
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			count, err = svc.Clear(tx)
			return err
		})
		if err != nil {
			return err
		}

		l := logger.FromCtx(c)
		l.Warn().Int("count", count).Msg("tüm işler silindi")

		return c.JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("%d adet iş kaydı silindi", count),
		})
	}
}

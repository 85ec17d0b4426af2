package audit

import (
	"strconv"

	"garaj-backend/internal/database"
	"garaj-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const defaultListLimit = 200

// GET /api/audit-logs?entity_type=job&entity_id=1&limit=50
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.AuditLog{})

		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}

		if entityIDStr := c.Query("entity_id"); entityIDStr != "" {
			eid, err := strconv.ParseUint(entityIDStr, 10, 64)
			if err != nil || eid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "entity_id geçersiz")
			}
			dbq = dbq.Where("entity_id = ?", eid)
		}

		limit := c.QueryInt("limit", defaultListLimit)
		if limit <= 0 || limit > 1000 {
			limit = defaultListLimit
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at desc, id desc").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar listelenemedi")
		}

		return c.JSON(fiber.Map{"auditLogs": logs})
	}
}

package apperr

import (
	"errors"

	"garaj-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// Handler is the fiber ErrorHandler. Body: {error, details?}.
func Handler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	kind, msg := KindOf(err)
	status := fiber.StatusInternalServerError
	switch kind {
	case KindInvalid:
		status = fiber.StatusBadRequest
	case KindNotFound:
		status = fiber.StatusNotFound
	case KindConflict:
		status = fiber.StatusConflict
	}

	if status == fiber.StatusInternalServerError {
		l := logger.FromCtx(c)
		l.Error().Err(err).Str("path", c.Path()).Msg("beklenmeyen sunucu hatası")
		return c.Status(status).JSON(fiber.Map{
			"error":   "Beklenmeyen sunucu hatası",
			"details": err.Error(),
		})
	}

	body := fiber.Map{"error": msg}
	if full := err.Error(); full != msg {
		body["details"] = full
	}
	if d, ok := detailsOf(err); ok {
		body["details"] = d
	}
	return c.Status(status).JSON(body)
}

type detailed interface {
	Details() any
}

func detailsOf(err error) (any, bool) {
	var d detailed
	if errors.As(err, &d) {
		return d.Details(), true
	}
	return nil, false
}

package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Level  string // trace, debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr veya dosya yolu
}

// Setup initializes the global zerolog logger.
func Setup(opts Options) error {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer
	switch opts.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		output = file
	}

	if strings.ToLower(opts.Format) != "json" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	return nil
}

// WithComponent returns a logger tagged with a component field.
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// FromCtx returns the request-scoped logger, tagged with the request id when present.
func FromCtx(c *fiber.Ctx) zerolog.Logger {
	l := log.Logger.With()
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		l = l.Str("request_id", rid)
	}
	return l.Logger()
}

// RequestLogger logs one line per request after the handler chain has run.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()

		// Hata burada yazılır ki loglanan status, istemcinin gördüğüyle aynı olsun
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		l := FromCtx(c)
		ev := l.Info()
		if status >= fiber.StatusInternalServerError {
			ev = l.Error().AnErr("error", chainErr)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("istek")

		return nil
	}
}

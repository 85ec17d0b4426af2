package auth

import (
	"strings"

	"garaj-backend/internal/config"

	"github.com/gofiber/fiber/v2"
)

const (
	CookieName    = "isLoggedIn"
	CtxUserKey    = "username"
	anonymousUser = "sistem"
)

// Middleware accepts the session cookie or an "Authorization: Bearer" header.
// With AUTH_ENABLED=false every request passes as the configured admin.
func Middleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.AuthEnabled {
			c.Locals(CtxUserKey, cfg.AdminUsername)
			return c.Next()
		}

		tokenStr := c.Cookies(CookieName)
		if tokenStr == "" {
			authHeader := c.Get("Authorization")
			if authHeader == "" {
				return fiber.NewError(fiber.StatusUnauthorized, "Oturum açmanız gerekiyor")
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return fiber.NewError(fiber.StatusUnauthorized, "Authorization formatı 'Bearer <token>' olmalı")
			}
			tokenStr = parts[1]
		}

		claims, err := ParseToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Geçersiz veya süresi dolmuş oturum")
		}

		c.Locals(CtxUserKey, claims.Username)
		return c.Next()
	}
}

// CurrentUser is the logged-in username, used for audit records.
func CurrentUser(c *fiber.Ctx) string {
	if u, ok := c.Locals(CtxUserKey).(string); ok && u != "" {
		return u
	}
	return anonymousUser
}

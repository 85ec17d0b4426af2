package auth

import (
	"crypto/subtle"
	"strings"
	"time"

	"garaj-backend/internal/config"
	"garaj-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Username = strings.TrimSpace(body.Username)
		if body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kullanıcı adı ve şifre zorunlu")
		}

		userOK := subtle.ConstantTimeCompare([]byte(body.Username), []byte(cfg.AdminUsername)) == 1
		passErr := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(body.Password))
		if !userOK || passErr != nil {
			l := logger.FromCtx(c)
			l.Warn().Str("username", body.Username).Msg("başarısız giriş denemesi")
			return fiber.NewError(fiber.StatusUnauthorized, "Kullanıcı adı veya şifre hatalı")
		}

		token, expires, err := GenerateToken(cfg.JWTSecret, cfg.AdminUsername, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token oluşturulamadı")
		}

		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			Expires:  expires,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		return c.JSON(fiber.Map{
			"success":   true,
			"message":   "Giriş başarılı",
			"token":     token,
			"expiresAt": expires,
			"user":      fiber.Map{"username": cfg.AdminUsername},
		})
	}
}

// POST /api/auth/logout
func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Çıkış yapıldı",
		})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"isLoggedIn": true,
			"user":       fiber.Map{"username": CurrentUser(c)},
		})
	}
}

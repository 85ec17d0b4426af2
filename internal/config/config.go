package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=garaj port=5432 sslmode=disable"

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	CORSOrigins string

	// Giriş kapısı (tek yönetici hesabı)
	AuthEnabled       bool
	AdminUsername     string
	AdminPasswordHash string // bcrypt
	JWTSecret         string

	Timezone string

	LogLevel  string
	LogFormat string // console | json
	LogOutput string // stdout | stderr | dosya yolu
}

// Load reads an optional .env file (envFile may be empty) and then the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("env dosyası okunamadı (%s): %w", envFile, err)
		}
	} else {
		// .env yoksa sistem environment'ı kullanılır
		_ = godotenv.Load()
	}

	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:       getEnv("DATABASE_DSN", defaultDSN),
		CORSOrigins:       getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		AuthEnabled:       getEnvBool("AUTH_ENABLED", true),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		Timezone:          getEnv("TIMEZONE", "Europe/Istanbul"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
		LogOutput:         getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the production safety rules.
func (c *Config) Validate() error {
	if c.AuthEnabled {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET tanımlanmamış, AUTH_ENABLED=true iken zorunludur")
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET en az 32 karakter olmalıdır")
		}
		if c.AdminPasswordHash == "" {
			return fmt.Errorf("ADMIN_PASSWORD_HASH tanımlanmamış, AUTH_ENABLED=true iken zorunludur")
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE geçersiz (%s): %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone; reports use it for day boundaries.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Warnings lists non-fatal configuration smells worth logging at startup.
func (c *Config) Warnings() []string {
	var out []string
	if c.DatabaseDSN == defaultDSN {
		out = append(out, "DATABASE_DSN varsayılan değer kullanılıyor, production için kendi Postgres bağlantı bilgisini tanımla")
	}
	if c.CORSOrigins == "http://localhost:3000" {
		out = append(out, "CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor")
	}
	if !c.AuthEnabled {
		out = append(out, "AUTH_ENABLED=false, API giriş kontrolü kapalı")
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"garaj-backend/internal/config"
	"garaj-backend/internal/database"
	"garaj-backend/internal/logger"
	"garaj-backend/internal/server"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:          "garaj",
	Short:        "Garaj yönetim paneli backend servisi",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "HTTP API sunucusunu başlatır",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Veritabanı tablolarını oluşturur / günceller ve çıkar",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		db, err := database.Open(cfg)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		log := logger.WithComponent("migrate")
		log.Info().Msg("migration tamamlandı")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", ".env dosya yolu (boşsa çalışma dizinindeki .env denenir)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// setup loads config and initializes the global logger.
func setup() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
	}); err != nil {
		return nil, fmt.Errorf("logger başlatılamadı: %w", err)
	}

	log := logger.WithComponent("config")
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	log := logger.WithComponent("main")

	if err := database.Init(cfg); err != nil {
		return err
	}

	app := server.New(cfg)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("sunucu kapatılıyor")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("sunucu düzgün kapatılamadı")
		}
	}()

	log.Info().Str("port", cfg.HTTPPort).Msg("sunucu başlatılıyor")
	return app.Listen(":" + cfg.HTTPPort)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hata: %v\n", err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"inmo-backoffice/internal/config"
	"inmo-backoffice/internal/email"
	"inmo-backoffice/internal/gcal"
	"inmo-backoffice/internal/nonce"
	"inmo-backoffice/internal/routes"
	"inmo-backoffice/internal/storage"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the back office API server",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Starting back office server...")
		ServerMain(provider)
	},
}

// Initialize logger
func initLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		println("Invalid log level in config, defaulting to INFO")
	}
	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	slog.Debug("Logger initialized", "level", level.String())
	return logger
}

func newDeps(cfg *config.Config, storageProvider storage.Provider) *routes.Deps {
	deps := &routes.Deps{
		Storage: storageProvider,
		Calendar: gcal.New(gcal.Options{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			TimeZone:     cfg.TimeZone,
			Tokens:       storageProvider,
		}),
		OAuth:    routes.NewGoogleOAuth(cfg),
		BaseURL:  cfg.BaseURL,
		TimeZone: cfg.TimeZone,
	}

	if cfg.Email.Host != "" {
		deps.Mailer = email.NewMailer(cfg.Email)
	} else {
		slog.Warn("SMTP host not set, visit confirmation emails disabled")
	}

	return deps
}

func ServerMain(storageProvider storage.Provider) {

	if config.Cfg == nil {
		panic("Config not initialized.")
	}

	if storageProvider == nil {
		slog.Error("Storage provider is nil")
		os.Exit(1)
	}

	initLogger(config.Cfg)

	if err := nonce.InitNonceStore(config.Cfg, storageProvider); err != nil {
		slog.Error("Failed to initialize nonce store", "error", err)
		os.Exit(1)
	}

	server := gin.Default()
	routes.RegisterRoutes(server, newDeps(config.Cfg, storageProvider))

	if err := server.Run(config.Cfg.Listen); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

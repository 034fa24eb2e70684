package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/trackwise/expense-voice/internal/application/service"
	"github.com/trackwise/expense-voice/internal/config"
	"github.com/trackwise/expense-voice/internal/export"
	"github.com/trackwise/expense-voice/internal/extraction"
	httpserver "github.com/trackwise/expense-voice/internal/interfaces/http"
	"github.com/trackwise/expense-voice/internal/repository"
	"github.com/trackwise/expense-voice/pkg/database"
	"github.com/trackwise/expense-voice/pkg/utils"
)

func main() {
	// Load .env if present, then configuration
	gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting expense voice server",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(repository.Migrations); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Load prompt templates
	promptCfg := extraction.DefaultPrompts()
	if cfg.Prompts.Path != "" {
		promptCfg, err = extraction.LoadPrompts(cfg.Prompts.Path)
		if err != nil {
			logger.Fatal("Failed to load prompt config", zap.Error(err))
		}
	}
	prompts, err := extraction.NewPromptBuilder(promptCfg)
	if err != nil {
		logger.Fatal("Failed to build prompt templates", zap.Error(err))
	}

	// Initialize extraction pipeline
	extractor := extraction.NewExtractor(extraction.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Timeout:     cfg.OpenAI.Timeout,
	}, prompts, logger)

	// Initialize repositories and services
	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	expenseService := service.NewExpenseService(expenseRepo, logger)
	voiceService := service.NewVoiceService(extractor, logger)
	reportWriter := export.NewReportWriter(logger)

	// Initialize HTTP server
	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, expenseService, voiceService, reportWriter, utils.NewKVLogger(logger))

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

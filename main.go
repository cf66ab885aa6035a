package main

import (
	"context"
	"log"

	"counterTradeBot/config"
	"counterTradeBot/internal/adapters/binanceclient"
	"counterTradeBot/internal/adapters/logger"
	"counterTradeBot/internal/adapters/sqlite"
	"counterTradeBot/internal/adapters/telegram"
	"counterTradeBot/internal/app"
	"counterTradeBot/internal/ports"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use standard log before our logger is initialized
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()
	appLogger.Info(ctx, "Configuration loaded", map[string]interface{}{
		"settleAsset": cfg.SettleAsset,
		"isTestnet":   cfg.IsTestnet,
		"logLevel":    cfg.LogLevel.String(),
	})

	// 3. Initialize Repository (audit trail)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing database connection")
		}
	}()

	// 4. Initialize Exchange Clients (one per account)
	primaryClient, err := binanceclient.New(binanceclient.Config{
		APIKey:               cfg.PrimaryAPIKey,
		SecretKey:            cfg.PrimarySecretKey,
		UseTestnet:           cfg.IsTestnet,
		Logger:               appLogger,
		ReconnectDelay:       cfg.ReconnectDelay,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize primary account client")
		log.Fatalf("FATAL: Failed to initialize primary account client: %v", err)
	}

	counterClient, err := binanceclient.New(binanceclient.Config{
		APIKey:               cfg.CounterAPIKey,
		SecretKey:            cfg.CounterSecretKey,
		UseTestnet:           cfg.IsTestnet,
		Logger:               appLogger,
		ReconnectDelay:       cfg.ReconnectDelay,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize counter account client")
		log.Fatalf("FATAL: Failed to initialize counter account client: %v", err)
	}

	// 5. Initialize Notifier (optional)
	var notifier ports.Notifier = telegram.NoopNotifier{}
	if cfg.TelegramBotToken != "" {
		notifier, err = telegram.New(telegram.Config{
			BotToken: cfg.TelegramBotToken,
			ChatID:   cfg.TelegramChatID,
			Logger:   appLogger,
		})
		if err != nil {
			appLogger.Error(ctx, err, "FATAL: Failed to initialize Telegram notifier")
			log.Fatalf("FATAL: Failed to initialize Telegram notifier: %v", err)
		}
		appLogger.Info(ctx, "Telegram notifications enabled")
	} else {
		appLogger.Info(ctx, "Telegram notifications disabled (no bot token configured)")
	}

	// 6. Initialize Application Service
	service, err := app.NewMirrorService(cfg, app.Deps{
		Logger:         appLogger,
		PrimaryBalance: primaryClient,
		CounterBalance: counterClient,
		Instruments:    counterClient,
		Prices:         counterClient,
		Orders:         counterClient,
		Stream:         primaryClient,
		Notifier:       notifier,
		History:        repo,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize mirror service")
		log.Fatalf("FATAL: Failed to initialize mirror service: %v", err)
	}

	// 7. Start the Service (blocks until shutdown)
	appLogger.Info(ctx, "Starting order mirroring...")
	if err := service.Start(ctx); err != nil {
		appLogger.Error(ctx, err, "Mirror service stopped with error")
		log.Fatalf("FATAL: Mirror service stopped with error: %v", err)
	}

	appLogger.Info(ctx, "Mirror service shut down gracefully.")
}

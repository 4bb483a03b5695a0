package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smc-signal-engine/config"
	"smc-signal-engine/internal/api"
	"smc-signal-engine/internal/auth"
	"smc-signal-engine/internal/cache"
	"smc-signal-engine/internal/database"
	"smc-signal-engine/internal/events"
	"smc-signal-engine/internal/logging"
	"smc-signal-engine/internal/quality"
	"smc-signal-engine/internal/risk"
	signalpkg "smc-signal-engine/internal/signal"
	"smc-signal-engine/internal/validator"

	"github.com/rs/zerolog"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.SetDefault(logging.New(&logging.Config{
		Level:      cfg.LoggingConfig.Level,
		Output:     cfg.LoggingConfig.Output,
		JSONFormat: cfg.LoggingConfig.JSONFormat,
	}))
	logger := logging.WithComponent("main")
	logger.Info("Starting SMC signal engine")

	// Database
	db, err := database.NewDB(database.Config{
		Host:     cfg.DatabaseConfig.Host,
		Port:     cfg.DatabaseConfig.Port,
		User:     cfg.DatabaseConfig.User,
		Password: cfg.DatabaseConfig.Password,
		Database: cfg.DatabaseConfig.Database,
		SSLMode:  cfg.DatabaseConfig.SSLMode,
	})
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.RunMigrations(migrateCtx); err != nil {
		cancelMigrate()
		logger.WithError(err).Error("Failed to run migrations")
		os.Exit(1)
	}
	cancelMigrate()
	repo := database.NewRepository(db)

	// Cache (optional, engine works degraded without Redis)
	var assessments *cache.AssessmentCache
	if cfg.RedisConfig.Enabled {
		store, err := cache.NewService(cache.Config{
			Enabled:  true,
			Address:  cfg.RedisConfig.Addr(),
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, running without assessment cache")
		} else {
			assessments = cache.NewAssessmentCache(store, cache.DefaultAssessmentTTL)
			logger.Info("Assessment cache enabled")
		}
	}

	strategyCfg := signalpkg.StrategyConfig{
		MinConfidenceScore:        cfg.StrategyConfig.MinConfidenceScore,
		RequiredConfluenceFactors: cfg.StrategyConfig.RequiredConfluenceFactors,
		SessionFilterEnabled:      cfg.StrategyConfig.SessionFilterEnabled,
		RiskPercentage:            cfg.StrategyConfig.RiskPercentage,
		MaxConcurrentTrades:       cfg.StrategyConfig.MaxConcurrentTrades,
		MaxDailyDrawdown:          cfg.StrategyConfig.MaxDailyDrawdown,
	}

	riskLogger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "risk").Logger()
	riskManager := risk.NewManager(strategyCfg, riskLogger)
	if cfg.RiskConfig.InitialBalance > 0 {
		riskManager.UpdateBalance(cfg.RiskConfig.InitialBalance)
	} else if snap, err := repo.LatestAccountSnapshot(context.Background()); err == nil && snap != nil {
		riskManager.UpdateBalance(snap.Balance)
		logger.Info("Restored account balance from last snapshot", "balance", snap.Balance)
	}

	v := validator.New()
	classifier := quality.NewWithValidator(v, quality.DefaultThresholds())
	eventBus := events.NewEventBus()

	var jwtManager *auth.JWTManager
	if cfg.AuthConfig.Enabled {
		jwtManager = auth.NewJWTManager(cfg.AuthConfig.JWTSecret, cfg.AuthConfig.AccessTokenDuration)
	} else {
		logger.Warn("Authentication disabled")
	}

	server := api.NewServer(
		api.ServerConfig{
			Port:            cfg.ServerConfig.Port,
			Host:            cfg.ServerConfig.Host,
			ProductionMode:  cfg.ServerConfig.ProductionMode,
			AllowedOrigins:  cfg.ServerConfig.AllowedOrigins,
			RateLimitPerMin: cfg.ServerConfig.RateLimitPerMin,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: time.Duration(cfg.ServerConfig.ShutdownSeconds) * time.Second,
		},
		repo, v, classifier, riskManager, assessments, eventBus, jwtManager, strategyCfg,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("API server listening", "host", cfg.ServerConfig.Host, "port", cfg.ServerConfig.Port)
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/prediction-league/config"
	"github.com/Dosada05/prediction-league/db"
	_ "github.com/Dosada05/prediction-league/docs"
	"github.com/Dosada05/prediction-league/feed"
	"github.com/Dosada05/prediction-league/handlers"
	"github.com/Dosada05/prediction-league/live"
	"github.com/Dosada05/prediction-league/repositories"
	api "github.com/Dosada05/prediction-league/routes"
	"github.com/Dosada05/prediction-league/scheduler"
	"github.com/Dosada05/prediction-league/services"
	"github.com/Dosada05/prediction-league/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

//	@title						Prediction League API
//	@version					1.0
//	@description				Score predictions, gameweek chips and private leagues.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("failed to apply database schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database connection established")

	// Аватары хранятся в Cloudflare R2; без настроек сервис работает без них
	var avatarUploader storage.FileUploader
	if cfg.AvatarStorageEnabled() {
		avatarUploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 settings are incomplete, avatar uploads disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger.With("component", "live"))
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	fixtureRepo := repositories.NewPostgresFixtureRepository(dbConn)
	predictionRepo := repositories.NewPostgresPredictionRepository(dbConn)
	activeChipRepo := repositories.NewPostgresActiveChipRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	transactor := repositories.NewTransactor(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, avatarUploader, logger)
	fixtureService := services.NewFixtureService(fixtureRepo, predictionRepo, transactor, wsHub, logger)
	predictionService := services.NewPredictionService(predictionRepo, fixtureRepo, cfg.PredictionDeadlineBuffer)
	chipService := services.NewChipService(predictionRepo, activeChipRepo, fixtureRepo, wsHub, services.ChipServiceConfig{
		DeadlineBuffer:  cfg.PredictionDeadlineBuffer,
		SyncConcurrency: cfg.SyncConcurrency,
		SyncRatePerSec:  cfg.SyncRatePerSec,
	}, logger)
	leagueService := services.NewLeagueService(leagueRepo, transactor)
	logger.Info("Services initialized")

	// Планировщик забирает результаты матчей из внешнего фида
	jobs := scheduler.New(logger.With("component", "scheduler"), 2*time.Minute)
	if cfg.ResultsFeedURL != "" {
		feedClient, err := feed.NewClient(feed.Config{
			BaseURL:    cfg.ResultsFeedURL,
			APIKey:     cfg.ResultsFeedAPIKey,
			Timeout:    10 * time.Second,
			RetryCount: 3,
		})
		if err != nil {
			logger.Error("failed to initialize results feed client", slog.Any("error", err))
			os.Exit(1)
		}
		resultsSync := services.NewResultsSyncService(feedClient, fixtureRepo, fixtureService, logger)
		err = jobs.Add("results-sync", cfg.ResultsSyncSchedule, func(ctx context.Context) error {
			completed, err := resultsSync.Run(ctx)
			if completed > 0 {
				logger.Info("results synced from feed", slog.Int("fixtures", completed))
			}
			return err
		})
		if err != nil {
			logger.Error("failed to schedule results sync", slog.Any("error", err))
			os.Exit(1)
		}
		jobs.Start()
	} else {
		logger.Info("RESULTS_FEED_URL is not set, results must be recorded manually")
	}

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	fixtureHandler := handlers.NewFixtureHandler(fixtureService)
	predictionHandler := handlers.NewPredictionHandler(predictionService)
	chipHandler := handlers.NewChipHandler(chipService)
	leagueHandler := handlers.NewLeagueHandler(leagueService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			JWTSecret:      cfg.JWTSecretKey,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Logger:         logger,
		},
		authHandler,
		userHandler,
		fixtureHandler,
		predictionHandler,
		chipHandler,
		leagueHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
		jobs.Stop(shutdownCtx)
	}

	// os.Exit не выполняет defer, поэтому закрываем явно
	stop()
	if err := dbConn.Close(); err != nil {
		logger.Error("failed to close database connection", slog.Any("error", err))
	} else {
		logger.Info("database connection closed")
	}
	logger.Info("application exited")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

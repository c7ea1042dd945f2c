package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carhive/internal/api"
	"carhive/internal/catalog"
	"carhive/internal/config"
	"carhive/internal/domain"
	"carhive/internal/events"
	"carhive/internal/google"
	"carhive/internal/logging"
	"carhive/internal/metrics"
	"carhive/internal/models"
	"carhive/internal/notify"
	"carhive/internal/repository"
	"carhive/internal/service"
	"carhive/internal/store"
	"carhive/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	fleet, err := loadCatalog(cfg, &logger)
	if err != nil {
		return err
	}

	db, err := store.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init store")
		return err
	}
	defer db.Close()

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := events.NewEventBus()
	initNotifier(cfg, eventBus, &logger)

	sheetsWorker := initSheetsWorker(ctx, cfg, db, redisClient, &logger)

	bookings := service.NewBookingService(db, fleet, eventBus, sheetsWorker, &logger)
	stats := service.NewStatsService(db, &logger)
	drafts := service.NewDraftService(initDraftRepository(redisClient, &logger), &logger)

	httpServer := api.NewHTTPServer(cfg.API, fleet, bookings, stats, drafts, &logger)

	startBackups(ctx, cfg, &logger)
	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func loadCatalog(cfg *config.Config, logger *zerolog.Logger) (*catalog.Catalog, error) {
	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = cfg.Catalog.Path
	}

	fleet, err := catalog.Load(catalogPath)
	if err != nil {
		logger.Error().Err(err).Str("catalog_path", catalogPath).Msg("load catalog")
		return nil, err
	}

	logger.Info().Int("cars", fleet.Len()).Msg("catalog loaded")
	return fleet, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initDraftRepository builds the draft store: redis with an in-memory
// fallback when redis is configured, plain in-memory otherwise.
func initDraftRepository(redisClient *redis.Client, logger *zerolog.Logger) domain.DraftRepository {
	ttl := models.DefaultRedisTTL * time.Second
	memory := repository.NewMemoryDraftRepository(ttl)
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverDraftRepository(repository.NewRedisDraftRepository(redisClient, ttl), memory, logger)
}

func initNotifier(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Notifications.TelegramToken == "" || cfg.Notifications.ManagersChatID == 0 {
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Notifications.TelegramToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without manager notifications")
		return
	}

	notifier := notify.NewTelegramNotifier(bot, cfg.Notifications.ManagersChatID, logger)
	notifier.SubscribeAll(bus)
	logger.Info().Int64("chat_id", cfg.Notifications.ManagersChatID).Msg("manager notifications enabled")
}

// initSheetsWorker returns nil (the no-op worker) when google sheets is not
// configured; booking writes then skip the sync queue entirely.
func initSheetsWorker(ctx context.Context, cfg *config.Config, db *store.DB, redisClient *redis.Client, logger *zerolog.Logger) domain.SyncWorker {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(cfg.Google.GoogleCredentialsFile, cfg.Google.BookingSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets sync")
		return nil
	}
	logger.Info().Msg("google sheets connected")

	retry := worker.RetryPolicy{
		MaxRetries:    5,
		InitialDelay:  2 * time.Second,
		MaxDelay:      5 * time.Minute,
		BackoffFactor: 2,
	}
	sheetsWorker := worker.NewSheetsWorker(db, sheetsService, redisClient, retry, logger)
	go sheetsWorker.Start(ctx)
	return sheetsWorker
}

func startBackups(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Backup.Enabled {
		return
	}
	backups := store.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
	go backups.Start(ctx)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/api"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/config"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/database"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/events"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/metrics"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/notify"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/report"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/repository"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/service"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("BOOKING_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if len(cfg.Server.APIKeys) == 0 {
		logger.Fatal().Msg("set server.api_keys in config")
	}

	defaultPolicy := models.BookingPolicy{
		MinAdvanceMinutes:           cfg.Booking.MinAdvanceMinutes,
		CancellationDeadlineMinutes: cfg.Booking.CancellationDeadlineMinutes,
	}
	db, err := database.NewDB(cfg.Database.Path, defaultPolicy, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var rdb *redis.Client
	var policies service.PolicyRepository = db
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		ttl := time.Duration(cfg.Redis.CacheTTLSeconds) * time.Second
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		policies = repository.NewCachedPolicyRepository(db, rdb, ttl, &logger)
	}

	bus := events.NewEventBus()
	bookings := service.NewBookingService(db, policies, bus, cfg.SlotGranularity(), &logger)
	schedules := service.NewScheduleService(db, policies, cfg.EditGranularity(), &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var notifier *notify.Notifier
	if cfg.Notifications.Enabled && cfg.Notifications.BotToken != "" {
		sender, err := notify.NewTelegramSender(cfg.Notifications.BotToken, cfg.Notifications.MessagesPerSecond, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create telegram sender error")
		}
		notifier = notify.NewNotifier(sender, cfg.Notifications.ManagerChatIDs, &logger)
		notifier.SubscribeTo(bus)
	}

	if cfg.Reports.Enabled {
		var sink report.DocumentSink
		if notifier != nil {
			sink = notifier
		}
		reports := report.NewService(report.Config{
			DataRetentionDays: cfg.Reports.DataRetentionDays,
			ExportOnStart:     cfg.Reports.ExportOnStart,
		}, db, report.NewExcelizeWriter, sink, db, &logger)
		reports.Start()
		defer reports.Stop()
	}

	backups := database.NewBackupService(db, database.BackupConfig{
		Enabled:       cfg.Backup.Enabled,
		IntervalHours: cfg.Backup.IntervalHours,
		Path:          cfg.Backup.Path,
		RetentionDays: cfg.Backup.RetentionDays,
	}, &logger)
	go backups.Start(ctx)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.NewHTTPServer(bookings, schedules, cfg.Server.APIKeys, &logger)
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(ctxShutdown)
	}()

	logger.Info().Msg("booking server started")
	if err := server.ListenAndServe(cfg.ServerAddress()); err != nil {
		logger.Fatal().Err(err).Msg("api server error")
	}
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
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

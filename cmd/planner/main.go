package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"semainier/internal/audit"
	"semainier/internal/config"
	"semainier/internal/events"
	"semainier/internal/export"
	"semainier/internal/metrics"
	"semainier/internal/repository"
	"semainier/internal/service"
	"semainier/internal/timegrid"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("SEMAINIER_CONFIG_PATH"), "path to config.yaml")
		exportWeek = flag.String("export", "", "week start date (yyyy-MM-dd) to export as xlsx and exit")
		exportOut  = flag.String("out", "", "output path for -export (default <week>.xlsx)")
	)
	flag.Parse()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	grid, err := timegrid.Build(cfg.Grid)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid grid config")
	}

	repo := buildRepository(cfg, &logger)

	auditDB, err := audit.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open audit db error")
	}
	defer auditDB.Close()

	bus := events.NewBus()
	audit.SubscribeAll(bus, auditDB, &logger)

	planner := service.New(cfg.Shop.Name, grid, repo, bus, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *exportWeek != "" {
		if err := runExport(ctx, planner, *exportWeek, *exportOut, &logger); err != nil {
			logger.Fatal().Err(err).Msg("export failed")
		}
		return
	}

	go audit.NewBackupService(cfg.Database.Path, cfg.Backup, &logger).Start(ctx)

	if deleted, err := auditDB.PurgeOlderThan(ctx, cfg.AuditRetention()); err != nil {
		logger.Warn().Err(err).Msg("audit purge failed")
	} else if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Msg("audit trail purged")
	}

	// Reload the config periodically so grid changes reconcile stored weeks.
	err = config.Watch(ctx, *configPath, 30*time.Second, func(latest *config.Config) {
		freshGrid, err := timegrid.Build(latest.Grid)
		if err != nil {
			logger.Error().Err(err).Msg("ignoring invalid grid config")
			return
		}
		planner.ApplyGrid(ctx, freshGrid)
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("config watch error")
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, auditDB, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().Str("shop", cfg.Shop.Name).Int("slots", grid.Len()).Msg("planner started")
	<-ctx.Done()
	logger.Info().Msg("planner stopped")
}

func buildRepository(cfg *config.Config, logger *zerolog.Logger) repository.Repository {
	memory := repository.NewMemoryRepository()
	if cfg.Redis.Address == "" {
		logger.Warn().Msg("no redis configured, state is in-memory only")
		return memory
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return repository.NewFailoverRepository(repository.NewRedisRepository(rdb), memory, logger)
}

func runExport(ctx context.Context, planner *service.Planner, weekStart, out string, logger *zerolog.Logger) error {
	if out == "" {
		out = weekStart + ".xlsx"
	}

	report, err := planner.WeekReport(ctx, weekStart)
	if err != nil {
		return err
	}

	file, err := os.Create(out)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := export.WriteWeek(report, file); err != nil {
		return err
	}
	logger.Info().Str("week", weekStart).Str("file", out).Msg("week exported")
	return nil
}

func startHealthServer(ctx context.Context, port int, auditDB *audit.DB, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := auditDB.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
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

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"learnhub/api"
	"learnhub/auth"
	"learnhub/config"
	"learnhub/models"
	"learnhub/providers"
	"learnhub/providers/core"
	"learnhub/providers/github"
	"learnhub/providers/googlebooks"
	"learnhub/providers/unpaywall"
	"learnhub/providers/youtube"
	"learnhub/services"
	"learnhub/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var refreshedResourcesCounter prometheus.Counter

func init() {
	refreshedResourcesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduled_refresh_resources_total",
			Help: "Total number of resources stored by scheduled refresh runs.",
		},
	)
	prometheus.MustRegister(refreshedResourcesCounter)
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	logging.Info("Running database auto-migration...")
	if err := models.AutoMigrate(db); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Setup Sources
	client := providers.NewClient(cfg.SourceTimeout, cfg.SourceRetries, cfg.SourceRetryBackoff, logging)
	sources, err := buildSources(cfg, client, logging)
	if err != nil {
		logging.Fatal("Source setup failed", zap.Error(err))
	}

	// Setup Services
	bucket, err := storage.NewBucket(ctx, cfg, logging)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	if bucket == nil {
		logging.Info("S3 nicht konfiguriert, Export und Backup sind deaktiviert")
	}
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logging.Fatal("Token issuer setup failed", zap.Error(err))
	}
	projects := services.NewProjectService(db, logging)
	ingest := services.NewIngestService(cfg, db, logging, sources, projects)

	handler := &api.Handler{
		Users:     services.NewUserService(db, logging),
		Tokens:    tokens,
		Projects:  projects,
		Ingest:    ingest,
		Resources: services.NewResourceService(db, logging),
		Exports:   services.NewExportService(cfg, db, bucket, logging),
		Logger:    logging,
	}

	// Setup Cron
	if cfg.CronSchedule != "" {
		cronScheduler := cron.New()
		_, err := cronScheduler.AddFunc(cfg.CronSchedule, func() {
			logging.Info("Running scheduled refresh job...")
			count, err := ingest.RefreshAll(ctx)
			refreshedResourcesCounter.Add(float64(count))
			if err != nil {
				logging.Error("Cron job failed", zap.Error(err))
				return
			}
			logging.Info("Cron job completed", zap.Int("stored_resources", count))
		})
		if err != nil {
			logging.Fatal("Invalid cron schedule", zap.String("schedule", cfg.CronSchedule), zap.Error(err))
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(handler),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server shutdown failed", zap.Error(err))
	}
	handler.Wait()
}

// buildSources erzeugt die in ENABLED_SOURCES genannten Quellen. Nicht genannte bleiben nil.
func buildSources(cfg *config.Config, client *providers.Client, logging *zap.Logger) (services.Sources, error) {
	var sources services.Sources
	for _, name := range cfg.Sources() {
		switch name {
		case "youtube":
			f, err := youtube.NewFetcher(cfg, client, logging)
			if err != nil {
				return sources, err
			}
			sources.Videos = f
		case "core":
			f, err := core.NewFetcher(cfg, client, logging)
			if err != nil {
				return sources, err
			}
			sources.Papers = f
			if cfg.UnpaywallEmail != "" {
				oa, err := unpaywall.NewFetcher(cfg, client, logging)
				if err != nil {
					return sources, err
				}
				sources.Papers = &unpaywall.Enricher{Source: f, Fetcher: oa, Limit: cfg.FetchConcurrency}
				logging.Info("Unpaywall-Anreicherung für Papers aktiv")
			}
		case "googlebooks":
			sources.EBooks = googlebooks.NewFetcher(cfg, client, logging)
		case "github":
			f, err := github.NewFetcher(cfg, client, logging)
			if err != nil {
				return sources, err
			}
			sources.Repositories = f
		default:
			logging.Warn("Unknown source in config", zap.String("source_name", name))
		}
	}
	logging.Info("Active sources loaded", zap.Strings("sources", cfg.Sources()))
	return sources, nil
}

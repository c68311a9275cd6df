// Package main provides the timetable bot server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/isu-schedule/telebot-go/internal/bot"
	"github.com/isu-schedule/telebot-go/internal/buildinfo"
	"github.com/isu-schedule/telebot-go/internal/config"
	"github.com/isu-schedule/telebot-go/internal/logger"
	"github.com/isu-schedule/telebot-go/internal/metrics"
	"github.com/isu-schedule/telebot-go/internal/refresh"
	"github.com/isu-schedule/telebot-go/internal/resolver"
	"github.com/isu-schedule/telebot-go/internal/scraper"
	"github.com/isu-schedule/telebot-go/internal/scraper/isu"
	"github.com/isu-schedule/telebot-go/internal/sentry"
	"github.com/isu-schedule/telebot-go/internal/storage"
	"github.com/isu-schedule/telebot-go/internal/timetable"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting ISU timetable bot server", "version", buildinfo.Version)

	if err := sentry.Initialize(cfg.SentryDSN, cfg.Environment, buildinfo.Version); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error tracking disabled")
	}

	db, err := storage.New(cfg.SQLitePath(), timetable.FreshnessWindow)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())
	m := metrics.New(registry)

	scraperClient := scraper.NewClient(cfg.ScraperTimeout, cfg.ScraperMaxRetries, cfg.ScraperWorkers)
	fetcher := isu.NewFetcher(scraperClient, cfg.ScheduleBaseURL, cfg.AcademicYear)
	res := resolver.New(db, fetcher, m, log)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Telegram")
	}
	log.WithField("bot", api.Self.UserName).Info("Telegram API connected")

	tgBot := bot.New(api, db, res, m, log)

	jobs := refresh.New(db, fetcher, res, tgBot, m, log)
	scheduler := refresh.NewScheduler(jobs, log)
	if err := scheduler.Start(cfg.RefreshSchedule, cfg.BroadcastSchedule); err != nil {
		log.WithError(err).Fatal("Failed to start scheduler")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Populate the subject catalog on a cold start so /group and /teacher
	// work before the first scheduled refresh.
	go func() {
		warmCtx, warmCancel := context.WithTimeout(ctx, config.CatalogRefreshTimeout)
		defer warmCancel()
		if count, err := db.CountSubjects(warmCtx, timetable.SubjectGroup); err == nil && count == 0 {
			if err := jobs.RefreshCatalog(warmCtx); err != nil {
				log.WithError(err).Warn("Initial catalog refresh incomplete")
			}
		}
	}()

	if cfg.WebhookURL != "" {
		if err := registerWebhook(api, cfg); err != nil {
			log.WithError(err).Fatal("Failed to register webhook")
		}
		log.Info("Webhook registered")
	} else {
		go tgBot.RunPolling(ctx)
	}

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))
	setupRoutes(router, tgBot, db, registry, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.HTTPReadTimeout,
		WriteTimeout: config.HTTPWriteTimeout,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()
	scheduler.Stop()
	tgBot.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if sentry.IsEnabled() {
		sentry.Flush(2 * time.Second)
	}
	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}
	log.Info("Server stopped")
}

// registerWebhook points Telegram at this deployment's webhook endpoint.
// The secret is embedded in the path; requests to any other path are 403'd.
func registerWebhook(api *tgbotapi.BotAPI, cfg *config.Config) error {
	wh, err := tgbotapi.NewWebhook(webhookEndpoint(cfg.WebhookURL, cfg.WebhookSecret))
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

func webhookEndpoint(baseURL, secret string) string {
	endpoint := baseURL + "/webhook"
	if secret != "" {
		endpoint += "/" + secret
	}
	return endpoint
}

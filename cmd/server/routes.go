// Package main provides the timetable bot server entry point.
package main

import (
	"context"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/isu-schedule/telebot-go/internal/bot"
	"github.com/isu-schedule/telebot-go/internal/config"
	"github.com/isu-schedule/telebot-go/internal/storage"
	"github.com/isu-schedule/telebot-go/internal/timetable"
)

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, tgBot *bot.Bot, db *storage.DB, registry *prometheus.Registry, cfg *config.Config) {
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "isu-timetable-bot"})
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness probe: the process is up, nothing more.
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness probe: database reachable, catalog state reported.
	readyHandler := func(c *gin.Context) {
		if err := db.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		groups, _ := db.CountSubjects(c.Request.Context(), timetable.SubjectGroup)
		teachers, _ := db.CountSubjects(c.Request.Context(), timetable.SubjectTeacher)
		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"catalog": gin.H{
				"groups":   groups,
				"teachers": teachers,
			},
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Telegram webhook. Updates are acknowledged immediately and processed in
	// the background; Telegram retries delivery on non-200 responses.
	webhookHandler := func(c *gin.Context) {
		if cfg.WebhookSecret != "" && c.Param("secret") != cfg.WebhookSecret {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		var update tgbotapi.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		go tgBot.HandleUpdate(context.Background(), update)
		c.Status(http.StatusOK)
	}
	if cfg.WebhookSecret != "" {
		router.POST("/webhook/:secret", webhookHandler)
	} else {
		router.POST("/webhook", webhookHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}

// Package bot wires Telegram updates to the schedule resolver: command
// routing, inline keyboards for semester and subject selection, and message
// delivery within Telegram's size limits.
package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/isu-schedule/telebot-go/internal/ctxutil"
	"github.com/isu-schedule/telebot-go/internal/logger"
	"github.com/isu-schedule/telebot-go/internal/metrics"
	"github.com/isu-schedule/telebot-go/internal/ratelimit"
	"github.com/isu-schedule/telebot-go/internal/storage"
	"github.com/isu-schedule/telebot-go/internal/timetable"
)

// API is the slice of the Telegram client the bot uses. *tgbotapi.BotAPI
// satisfies it; tests substitute a recording fake.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Store is the persistence surface the bot needs for user preferences and
// subject lookup.
type Store interface {
	UpsertUser(ctx context.Context, chatID int64, username string) error
	GetUser(ctx context.Context, chatID int64) (*storage.User, error)
	SetUserSemester(ctx context.Context, chatID int64, semester int) error
	SetUserSubject(ctx context.Context, chatID int64, kind timetable.SubjectKind, name string) error
	SearchSubjects(ctx context.Context, kind timetable.SubjectKind, semester int, query string) ([]timetable.Subject, error)
}

// Resolver produces rendered schedule text for a user.
type Resolver interface {
	ResolveDay(ctx context.Context, user *storage.User, day string) (string, error)
	ResolveWeek(ctx context.Context, user *storage.User) ([]string, error)
}

// Bot processes Telegram updates. One instance serves both webhook and
// long-polling modes.
type Bot struct {
	api      API
	store    Store
	resolver Resolver
	limiter  *ratelimit.PerChatLimiter
	log      *logger.Logger
	metrics  *metrics.Metrics

	updateTimeout time.Duration
}

// New creates a bot.
func New(api API, store Store, res Resolver, m *metrics.Metrics, log *logger.Logger) *Bot {
	return &Bot{
		api:      api,
		store:    store,
		resolver: res,
		// A schedule bot has no legitimate rapid-fire usage pattern.
		limiter: ratelimit.NewPerChatLimiter(ratelimit.PerChatLimiterConfig{
			MaxTokens:  6,
			RefillRate: 0.5,
		}),
		log:           log.WithModule("bot"),
		metrics:       m,
		updateTimeout: 90 * time.Second,
	}
}

// Stop releases the bot's background resources.
func (b *Bot) Stop() {
	b.limiter.Stop()
}

// RunPolling consumes updates via long polling until the context is
// cancelled. Used in local development; production runs on a webhook.
func (b *Bot) RunPolling(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := b.api.GetUpdatesChan(cfg)
	b.log.Info("long polling started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("long polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate routes one update. Errors are handled inside: the user gets a
// reply or nothing, the caller never needs to act on a failure.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	chatID := updateChatID(update)
	if chatID != 0 && !b.limiter.Allow(chatID) {
		b.log.Debug("update dropped by rate limiter", "chat_id", chatID)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, b.updateTimeout)
	defer cancel()
	ctx = ctxutil.WithChatID(ctx, chatID)

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil &&
		update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

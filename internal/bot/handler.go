package bot

import (
	"context"
	"errors"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	domerrors "github.com/isu-schedule/telebot-go/internal/errors"
	"github.com/isu-schedule/telebot-go/internal/storage"
	"github.com/isu-schedule/telebot-go/internal/timetable"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	username := ""
	if msg.From != nil {
		username = msg.From.UserName
	}
	if err := b.store.UpsertUser(ctx, chatID, username); err != nil {
		b.log.Error("failed to upsert user", "chat_id", chatID, "error", err)
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command(), msg.CommandArguments())
		return
	}

	// Bare day names (and "сегодня"/"завтра") work without the /day prefix.
	start := time.Now()
	if day, ok := NormalizeDay(msg.Text, time.Now()); ok {
		err := b.sendDay(ctx, chatID, day)
		b.observe("text", start, err)
		return
	}
	b.reply(chatID, msgUnknown)
	b.observe("text", start, nil)
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) {
	start := time.Now()
	var err error

	switch command {
	case "start":
		b.reply(chatID, msgWelcome)
	case "help":
		b.reply(chatID, msgHelp)
	case "semester":
		b.replyWithKeyboard(chatID, msgChooseSemester, semesterKeyboard())
	case "group":
		err = b.handleSearch(ctx, chatID, timetable.SubjectGroup, args, msgGroupUsage)
	case "teacher":
		err = b.handleSearch(ctx, chatID, timetable.SubjectTeacher, args, msgTeacherUsage)
	case "day":
		if day, ok := NormalizeDay(args, time.Now()); ok {
			err = b.sendDay(ctx, chatID, day)
		} else {
			b.replyWithKeyboard(chatID, msgChooseDay, dayKeyboard())
		}
	case "week":
		err = b.sendWeek(ctx, chatID)
	default:
		command = "unknown"
		b.reply(chatID, msgUnknown)
	}

	b.observe(command, start, err)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Error("failed to answer callback", "error", err)
	}
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	start := time.Now()
	action, params := parseCallback(cb.Data)
	var err error

	switch action {
	case actionDay:
		if len(params) == 1 {
			err = b.sendDay(ctx, chatID, params[0])
		}
	case actionSemester:
		if len(params) == 1 {
			err = b.setSemester(ctx, chatID, params[0])
		}
	case actionSubject:
		if len(params) == 2 {
			err = b.setSubject(ctx, chatID, timetable.SubjectKind(params[0]), params[1])
		}
	default:
		b.log.Warn("unknown callback action", "action", action)
	}

	b.observe("callback_"+action, start, err)
}

// handleSearch resolves a /group or /teacher query: a unique match is
// selected immediately, multiple matches get a disambiguation keyboard.
func (b *Bot) handleSearch(ctx context.Context, chatID int64, kind timetable.SubjectKind, query, usage string) error {
	if query == "" {
		b.reply(chatID, usage)
		return nil
	}

	semester := storage.DefaultSemester
	if user, err := b.store.GetUser(ctx, chatID); err == nil {
		semester = user.Semester
	}

	matches, err := b.store.SearchSubjects(ctx, kind, semester, query)
	if err != nil {
		b.log.Error("subject search failed", "chat_id", chatID, "query", query, "error", err)
		b.reply(chatID, msgUpstreamDown)
		return err
	}

	switch len(matches) {
	case 0:
		b.reply(chatID, msgNothingFound)
	case 1:
		return b.setSubject(ctx, chatID, matches[0].Kind, matches[0].Name)
	default:
		b.replyWithKeyboard(chatID, msgChooseMatch, subjectKeyboard(matches))
	}
	return nil
}

func (b *Bot) setSubject(ctx context.Context, chatID int64, kind timetable.SubjectKind, name string) error {
	if err := b.store.SetUserSubject(ctx, chatID, kind, name); err != nil {
		b.log.Error("failed to set subject", "chat_id", chatID, "error", err)
		b.reply(chatID, msgUpstreamDown)
		return err
	}
	b.reply(chatID, subjectSetReply(name))
	return nil
}

func (b *Bot) setSemester(ctx context.Context, chatID int64, value string) error {
	semester, err := strconv.Atoi(value)
	if err != nil || (semester != 1 && semester != 2) {
		b.log.Warn("invalid semester callback", "value", value)
		return nil
	}
	if err := b.store.SetUserSemester(ctx, chatID, semester); err != nil {
		b.log.Error("failed to set semester", "chat_id", chatID, "error", err)
		b.reply(chatID, msgUpstreamDown)
		return err
	}
	b.reply(chatID, msgSemesterSet)
	return nil
}

func (b *Bot) sendDay(ctx context.Context, chatID int64, day string) error {
	user, err := b.store.GetUser(ctx, chatID)
	if err != nil {
		b.reply(chatID, msgNoSubject)
		return nil
	}

	text, err := b.resolver.ResolveDay(ctx, user, day)
	if err != nil {
		b.replyScheduleError(chatID, err)
		return err
	}
	b.SendChunked(chatID, text)
	return nil
}

func (b *Bot) sendWeek(ctx context.Context, chatID int64) error {
	user, err := b.store.GetUser(ctx, chatID)
	if err != nil {
		b.reply(chatID, msgNoSubject)
		return nil
	}

	messages, err := b.resolver.ResolveWeek(ctx, user)
	if err != nil {
		b.replyScheduleError(chatID, err)
		return err
	}
	for _, text := range messages {
		b.SendChunked(chatID, text)
	}
	return nil
}

// replyScheduleError maps resolution failures to user-facing text.
func (b *Bot) replyScheduleError(chatID int64, err error) {
	switch {
	case errors.Is(err, domerrors.ErrNoSubject):
		b.reply(chatID, msgNoSubject)
	case errors.Is(err, domerrors.ErrNoSchedule):
		b.reply(chatID, msgNoSchedule)
	case errors.Is(err, domerrors.ErrSubjectNotFound):
		b.reply(chatID, msgSubjectGone)
	default:
		b.log.Error("schedule resolution failed", "chat_id", chatID, "error", err)
		b.reply(chatID, msgUpstreamDown)
	}
}

func (b *Bot) observe(handler string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	b.metrics.RecordUpdate(handler, status, time.Since(start).Seconds())
}

package bot

import (
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramMessageLimit is Telegram's per-message character cap.
const telegramMessageLimit = 4096

// SplitMessage splits text into chunks of at most limit characters,
// preferring line boundaries. A single line longer than the limit is
// hard-split by runes.
func SplitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	count := 0

	flush := func() {
		if count > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			count = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		lineLen := utf8.RuneCountInString(line)
		for lineLen > limit {
			flush()
			runes := []rune(line)
			chunks = append(chunks, string(runes[:limit]))
			line = string(runes[limit:])
			lineLen = utf8.RuneCountInString(line)
		}

		needed := lineLen
		if count > 0 {
			needed++ // the joining newline
		}
		if count+needed > limit {
			flush()
		}
		if count > 0 {
			current.WriteByte('\n')
			count++
		}
		current.WriteString(line)
		count += lineLen
	}
	flush()
	return chunks
}

// SendChunked delivers text as one or more messages within the size cap.
func (b *Bot) SendChunked(chatID int64, text string) {
	for _, chunk := range SplitMessage(text, telegramMessageLimit) {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			b.log.Error("failed to send message", "chat_id", chatID, "error", err)
			return
		}
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("failed to send reply", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("failed to send keyboard reply", "chat_id", chatID, "error", err)
	}
}

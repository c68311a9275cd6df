package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/isu-schedule/telebot-go/internal/timetable"
)

// maxSubjectButtons caps the disambiguation keyboard; the search itself is
// already limited, this only guards against oversized keyboards.
const maxSubjectButtons = 10

func dayKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, (len(weekDays)+1)/2)
	for i := 0; i < len(weekDays); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(weekDays[i], dayCallback(weekDays[i])),
		}
		if i+1 < len(weekDays) {
			row = append(row,
				tgbotapi.NewInlineKeyboardButtonData(weekDays[i+1], dayCallback(weekDays[i+1])))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func semesterKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Осенний", semesterCallback("1")),
			tgbotapi.NewInlineKeyboardButtonData("Весенний", semesterCallback("2")),
		),
	)
}

// subjectKeyboard builds a disambiguation keyboard for search matches, one
// button per row. Names that would overflow the callback size cap are
// skipped; the user can narrow the query instead.
func subjectKeyboard(subjects []timetable.Subject) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, subject := range subjects {
		if len(rows) == maxSubjectButtons {
			break
		}
		data := subjectCallback(subject.Kind, subject.Name)
		if !fitsCallback(data) {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(subject.Name, data)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

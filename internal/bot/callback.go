package bot

import (
	"strings"

	"github.com/isu-schedule/telebot-go/internal/timetable"
)

// callbackSplitChar separates fields inside callback data, "action$param...".
// Telegram caps callback data at 64 bytes, so payloads stay short: a day
// label, a semester digit, or a subject name.
const callbackSplitChar = "$"

const callbackDataLimit = 64

// Callback actions.
const (
	actionDay      = "day"
	actionSemester = "sem"
	actionSubject  = "subj"
)

func dayCallback(day string) string {
	return actionDay + callbackSplitChar + day
}

func semesterCallback(semester string) string {
	return actionSemester + callbackSplitChar + semester
}

func subjectCallback(kind timetable.SubjectKind, name string) string {
	return actionSubject + callbackSplitChar + string(kind) + callbackSplitChar + name
}

// parseCallback splits callback data into action and parameters.
func parseCallback(data string) (action string, params []string) {
	parts := strings.Split(data, callbackSplitChar)
	return parts[0], parts[1:]
}

// fitsCallback reports whether data is within Telegram's callback size cap.
func fitsCallback(data string) bool {
	return len(data) <= callbackDataLimit
}

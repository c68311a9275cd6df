package bot

import (
	"strings"
	"time"
)

// weekDays lists day labels in schedule order, matching the labels the source
// markup uses verbatim.
var weekDays = []string{
	"Понедельник",
	"Вторник",
	"Среда",
	"Четверг",
	"Пятница",
	"Суббота",
	"Воскресенье",
}

var ruWeekdays = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

// campusLocation is the university's local time zone, used to interpret
// "today" and "tomorrow" and to pick the broadcast day.
var campusLocation = loadCampusLocation()

func loadCampusLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Yekaterinburg")
	if err != nil {
		return time.FixedZone("UTC+5", 5*60*60)
	}
	return loc
}

// DayForTime returns the schedule day label for a point in time in campus
// local time.
func DayForTime(t time.Time) string {
	return ruWeekdays[t.In(campusLocation).Weekday()]
}

// NormalizeDay maps free-form user input to a canonical day label. Accepts
// any casing of a day name plus "сегодня" and "завтра" relative to now.
func NormalizeDay(input string, now time.Time) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(input))
	switch text {
	case "":
		return "", false
	case "сегодня":
		return DayForTime(now), true
	case "завтра":
		return DayForTime(now.Add(24 * time.Hour)), true
	}

	for _, day := range weekDays {
		if strings.ToLower(day) == text {
			return day, true
		}
	}
	return "", false
}

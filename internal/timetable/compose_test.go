package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoDaySchedule() *Schedule {
	s := NewSchedule([]string{"Время", "Дисциплина", "Аудитория", "Преподаватель"})
	s.Append("Понедельник", LessonEntry{
		"Время":         "08:00-09:35",
		"Дисциплина":    "Математика",
		"Аудитория":     "3-210",
		"Преподаватель": "Иванов И.И.",
	})
	s.Append("Вторник", LessonEntry{
		"Время":         "",
		"Дисциплина":    "",
		"Аудитория":     "",
		"Преподаватель": "",
	})
	return s
}

func TestComposeDayRendersFieldsInHeaderOrder(t *testing.T) {
	t.Parallel()

	got := ComposeDay(twoDaySchedule(), "Понедельник")

	want := "Понедельник\n" +
		"\tВремя: 08:00-09:35\n" +
		"\tДисциплина: Математика\n" +
		"\tАудитория: 3-210\n" +
		"\tПреподаватель: Иванов И.И.\n" +
		"\n"
	assert.Equal(t, want, got)
}

func TestComposeDayExcludesFillerEntries(t *testing.T) {
	t.Parallel()

	s := NewSchedule([]string{"Время", "Дисциплина", "Аудитория"})
	s.Append("Среда", LessonEntry{"Время": "", "Аудитория": ""})
	s.Append("Среда", LessonEntry{"Время": "10:00", "Дисциплина": "Химия", "Аудитория": "1-101"})

	got := ComposeDay(s, "Среда")

	assert.NotContains(t, got, "Время: \n")
	assert.Contains(t, got, "Химия")

	// Exactly one lesson survives the filter.
	want := "Среда\n\tВремя: 10:00\n\tДисциплина: Химия\n\tАудитория: 1-101\n\n"
	assert.Equal(t, want, got)
}

func TestComposeDayNoClasses(t *testing.T) {
	t.Parallel()

	s := twoDaySchedule()

	assert.Equal(t, "Вторник: No classes", ComposeDay(s, "Вторник"))
	// A day absent from the schedule renders the same way.
	assert.Equal(t, "Воскресенье: No classes", ComposeDay(s, "Воскресенье"))
}

func TestComposeAllPreservesDayOrder(t *testing.T) {
	t.Parallel()

	messages := ComposeAll(twoDaySchedule())

	require.Len(t, messages, 2)
	assert.Equal(t, "Понедельник\n\tВремя: 08:00-09:35\n\tДисциплина: Математика\n\tАудитория: 3-210\n\tПреподаватель: Иванов И.И.\n\n", messages[0])
	assert.Equal(t, "Вторник: No classes", messages[1])
}

func TestComposeIsRepeatable(t *testing.T) {
	t.Parallel()

	s := twoDaySchedule()

	assert.Equal(t, ComposeDay(s, "Понедельник"), ComposeDay(s, "Понедельник"))
	assert.Equal(t, ComposeAll(s), ComposeAll(s))
}

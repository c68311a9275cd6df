package timetable

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/isu-schedule/telebot-go/internal/errors"
)

const weekFixture = `
<html><body>
<table>
<thead>
<tr><td>День</td><td>Время</td><td>Дисциплина</td><td>Аудитория</td><td>Преподаватель</td></tr>
</thead>
<tbody>
<tr><td colspan="5">Понедельник</td></tr>
<tr><td>08:00-09:35</td><td>Математика</td><td>3-210</td><td>Иванов И.И.</td></tr>
<tr><td>09:45-11:20</td><td>Физика</td><td>2-115</td><td>Петрова А.А.</td></tr>
<tr><td colspan="5">Вторник</td></tr>
<tr><td></td><td></td><td></td><td></td></tr>
</tbody>
</table>
</body></html>`

func parseFixture(t *testing.T, markup string) *Schedule {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	schedule, err := Parse(doc)
	require.NoError(t, err)
	return schedule
}

func TestParseWeekFixture(t *testing.T) {
	t.Parallel()

	schedule := parseFixture(t, weekFixture)

	assert.Equal(t, []string{"Время", "Дисциплина", "Аудитория", "Преподаватель"}, schedule.Headers)
	assert.Equal(t, []string{"Понедельник", "Вторник"}, schedule.Days)

	monday, ok := schedule.DayLessons("Понедельник")
	require.True(t, ok)
	require.Len(t, monday, 2)
	assert.Equal(t, "Математика", monday[0]["Дисциплина"])
	assert.Equal(t, "2-115", monday[1]["Аудитория"])

	tuesday, ok := schedule.DayLessons("Вторник")
	require.True(t, ok)
	require.Len(t, tuesday, 1)
	assert.Zero(t, tuesday[0].Populated())
}

func TestParseMissingDayIsAbsent(t *testing.T) {
	t.Parallel()

	schedule := parseFixture(t, weekFixture)

	_, ok := schedule.DayLessons("Среда")
	assert.False(t, ok)
}

func TestParseDeterministic(t *testing.T) {
	t.Parallel()

	first := parseFixture(t, weekFixture)
	second := parseFixture(t, weekFixture)

	assert.Equal(t, first, second)
}

func TestParseNoTable(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>nothing here</p></body></html>"))
	require.NoError(t, err)

	_, err = Parse(doc)
	assert.ErrorIs(t, err, domerrors.ErrNoTimetable)
}

func TestParseDayLabelRowCarriesNoLesson(t *testing.T) {
	t.Parallel()

	// The day-label row must only open the group, not contribute an entry.
	markup := `
<table>
<thead><tr><td>День</td><td>Время</td><td>Дисциплина</td><td>Аудитория</td></tr></thead>
<tbody>
<tr><td colspan="4">Суббота</td></tr>
</tbody>
</table>`
	schedule := parseFixture(t, markup)

	saturday, ok := schedule.DayLessons("Суббота")
	require.True(t, ok)
	assert.Empty(t, saturday)
}

func TestParseShortRowZipsAvailableCells(t *testing.T) {
	t.Parallel()

	markup := `
<table>
<thead><tr><td>День</td><td>Время</td><td>Дисциплина</td><td>Аудитория</td></tr></thead>
<tbody>
<tr><td colspan="4">Среда</td></tr>
<tr><td>10:00</td><td>Химия</td></tr>
</tbody>
</table>`
	schedule := parseFixture(t, markup)

	wednesday, _ := schedule.DayLessons("Среда")
	require.Len(t, wednesday, 1)
	assert.Equal(t, LessonEntry{"Время": "10:00", "Дисциплина": "Химия"}, wednesday[0])
}

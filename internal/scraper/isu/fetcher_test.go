package isu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/isu-schedule/telebot-go/internal/errors"
	"github.com/isu-schedule/telebot-go/internal/scraper"
	"github.com/isu-schedule/telebot-go/internal/timetable"
)

const formPage = `
<html><body>
<p>Идёт 7-я неделя</p>
<form>
<select name="schedule_semestr_id">
<option value="">Выберите семестр</option>
<option value="241">Осенний семестр 2024/2025</option>
<option value="242">Весенний семестр 2024/2025</option>
</select>
<select name="student_group_id">
<option value="">Выберите группу</option>
<option value="5017">СУЛА-308С</option>
<option value="5018">СУЛА-309С</option>
</select>
<select name="teacher">
<option value="">Выберите преподавателя</option>
<option value="911">Иванов Иван Иванович</option>
</select>
</form>
</body></html>`

const schedulePage = `
<html><body>
<table>
<thead><tr><td>День</td><td>Время</td><td>Дисциплина</td></tr></thead>
<tbody>
<tr><td colspan="3">Понедельник</td></tr>
<tr><td>08:00</td><td>Математика</td></tr>
</tbody>
</table>
</body></html>`

// newTestFetcher serves the form page for bare requests and the schedule
// page once a subject parameter is present.
func newTestFetcher(t *testing.T, fetchCount *atomic.Int32) *Fetcher {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		query := r.URL.Query()
		switch {
		case query.Get(groupParam) != "" || query.Get(teacherParam) != "":
			if fetchCount != nil {
				fetchCount.Add(1)
			}
			if query.Get(groupParam) == "0000" {
				_, _ = w.Write([]byte("<html><body><p>Ничего не найдено</p></body></html>"))
				return
			}
			_, _ = w.Write([]byte(schedulePage))
		default:
			_, _ = w.Write([]byte(formPage))
		}
	}))
	t.Cleanup(srv.Close)

	client := scraper.NewClient(5*time.Second, 0, 2)
	return NewFetcher(client, srv.URL, "2024/2025")
}

func TestFetchTimetable(t *testing.T) {
	t.Parallel()

	fetcher := newTestFetcher(t, nil)

	doc, err := fetcher.FetchTimetable(context.Background(), Selection{
		Kind:       timetable.SubjectGroup,
		ExternalID: "5017",
		Semester:   2,
	})
	require.NoError(t, err)

	schedule, err := timetable.Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Понедельник"}, schedule.Days)
}

func TestFetchTimetableSubjectNotFound(t *testing.T) {
	t.Parallel()

	fetcher := newTestFetcher(t, nil)

	_, err := fetcher.FetchTimetable(context.Background(), Selection{
		Kind:       timetable.SubjectGroup,
		ExternalID: "0000",
		Semester:   1,
	})
	assert.ErrorIs(t, err, domerrors.ErrSubjectNotFound)
}

func TestFetchTimetableInvalidSemester(t *testing.T) {
	t.Parallel()

	fetcher := newTestFetcher(t, nil)

	_, err := fetcher.FetchTimetable(context.Background(), Selection{
		Kind:       timetable.SubjectGroup,
		ExternalID: "5017",
		Semester:   3,
	})
	assert.ErrorIs(t, err, domerrors.ErrInvalidInput)
}

func TestListSubjects(t *testing.T) {
	t.Parallel()

	fetcher := newTestFetcher(t, nil)

	groups, err := fetcher.ListSubjects(context.Background(), timetable.SubjectGroup, 1)
	require.NoError(t, err)
	assert.Equal(t, []CatalogEntry{
		{ExternalID: "5017", Name: "СУЛА-308С"},
		{ExternalID: "5018", Name: "СУЛА-309С"},
	}, groups)

	teachers, err := fetcher.ListSubjects(context.Background(), timetable.SubjectTeacher, 1)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "Иванов Иван Иванович", teachers[0].Name)
}

func TestFetchWeekLabel(t *testing.T) {
	t.Parallel()

	fetcher := newTestFetcher(t, nil)

	label, err := fetcher.FetchWeekLabel(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "7-я неделя", label)
}

func TestSemesterIDCached(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int32
	fetcher := newTestFetcher(t, &fetches)

	// Two timetable fetches share one cached semester-form resolution.
	for range 2 {
		_, err := fetcher.FetchTimetable(context.Background(), Selection{
			Kind:       timetable.SubjectGroup,
			ExternalID: "5017",
			Semester:   2,
		})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), fetches.Load())

	id, err := fetcher.semesterID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "241", id)
}

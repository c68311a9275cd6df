package timetable

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	domerrors "github.com/isu-schedule/telebot-go/internal/errors"
)

// Parse converts the raw ISU markup into a normalized Schedule.
//
// The page carries a single schedule table: a header row naming the columns
// (the first column is the day label, not data) and body rows grouped by day.
// A row with a single cell introduces a new day; the day-label row itself
// never carries lesson data, only the rows that follow it do. Data rows are
// zipped against the remaining column headers in order.
//
// Parsing is deterministic: identical markup always yields a structurally
// equal Schedule.
func Parse(doc *goquery.Document) (*Schedule, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, domerrors.ErrNoTimetable
	}

	var headers []string
	table.Find("thead tr").First().Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(cell.Text()))
	})
	if len(headers) == 0 {
		return nil, domerrors.ErrNoTimetable
	}

	// Drop the day/time label column; only the remaining columns are data.
	dataHeaders := headers[1:]
	schedule := NewSchedule(dataHeaders)

	currentDay := ""
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 1 {
			currentDay = strings.TrimSpace(cells.First().Text())
			if currentDay != "" {
				schedule.AddDay(currentDay)
			}
			return
		}
		if currentDay == "" {
			// Data before any day label has no home; the source never emits
			// this, but a malformed page must not panic the parser.
			return
		}

		entry := make(LessonEntry, len(dataHeaders))
		cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
			if i >= len(dataHeaders) {
				return false
			}
			entry[dataHeaders[i]] = strings.TrimSpace(cell.Text())
			return true
		})
		schedule.Append(currentDay, entry)
	})

	return schedule, nil
}

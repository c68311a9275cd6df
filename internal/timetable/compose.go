package timetable

import (
	"fmt"
	"strings"
)

// minPopulatedFields is the threshold below which an entry is a filler row
// for a free slot rather than a real lesson.
const minPopulatedFields = 3

// ComposeDay renders one day of a schedule as plain text: the day label,
// then one "\tfield: value" line per field for every real lesson, with a
// blank line after each lesson. Filler entries are excluded. A day with no
// real lessons (or a day absent from the schedule) renders as
// "{day}: No classes".
func ComposeDay(s *Schedule, day string) string {
	lessons, _ := s.DayLessons(day)

	lines := []string{day}
	rendered := 0
	for _, entry := range lessons {
		if entry.Populated() < minPopulatedFields {
			continue
		}
		for _, header := range s.Headers {
			value, ok := entry[header]
			if !ok {
				continue
			}
			lines = append(lines, fmt.Sprintf("\t%s: %s", header, value))
		}
		lines = append(lines, "\n")
		rendered++
	}

	if rendered == 0 {
		return fmt.Sprintf("%s: No classes", day)
	}
	return strings.Join(lines, "\n")
}

// ComposeAll renders every day present in the schedule, preserving the
// schedule's day order. One string per day; chunking long messages to the
// transport limit is the sender's job, not the composer's.
func ComposeAll(s *Schedule) []string {
	messages := make([]string, 0, len(s.Days))
	for _, day := range s.Days {
		messages = append(messages, ComposeDay(s, day))
	}
	return messages
}

// Package timetable defines the normalized schedule model, the HTML table
// parser, the text composer, and the cache key rules shared by the resolver
// and the refresh jobs.
package timetable

import "strings"

// SubjectKind discriminates the two identities a schedule can be queried for.
type SubjectKind string

const (
	// SubjectGroup identifies a student group timetable.
	SubjectGroup SubjectKind = "group"
	// SubjectTeacher identifies an instructor timetable.
	SubjectTeacher SubjectKind = "teacher"
)

// Subject is a tagged identity the schedule is queried for: exactly one kind,
// never "whichever optional field happens to be set".
type Subject struct {
	Kind       SubjectKind `json:"kind"`
	Name       string      `json:"name"`        // Display name, unique within a semester
	ExternalID string      `json:"external_id"` // Opaque identifier used by the remote source
	Semester   int         `json:"semester"`    // 1 = autumn, 2 = spring
}

// LessonEntry maps a column header (e.g. "Время", "Дисциплина") to the cell
// text of one scheduled session. Field order for rendering comes from
// Schedule.Headers, not from map iteration.
type LessonEntry map[string]string

// Populated returns the number of fields with non-empty values.
// The source emits filler rows for free slots; entries with fewer than three
// populated fields are treated as "no class" and excluded from output.
func (e LessonEntry) Populated() int {
	n := 0
	for _, v := range e {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// Schedule is a full week of lessons for one subject and semester.
// Days preserves encounter order from the source markup; days the source
// never published are simply absent.
type Schedule struct {
	Headers []string                 `json:"headers"` // Data column names, day column already discarded
	Days    []string                 `json:"days"`
	Lessons map[string][]LessonEntry `json:"lessons"`
}

// NewSchedule creates an empty schedule with the given data column headers.
func NewSchedule(headers []string) *Schedule {
	return &Schedule{
		Headers: headers,
		Lessons: make(map[string][]LessonEntry),
	}
}

// AddDay registers a day key if it has not been seen yet.
func (s *Schedule) AddDay(day string) {
	if _, ok := s.Lessons[day]; ok {
		return
	}
	s.Days = append(s.Days, day)
	s.Lessons[day] = nil
}

// Append adds a lesson entry to the given day, registering the day if needed.
func (s *Schedule) Append(day string, entry LessonEntry) {
	s.AddDay(day)
	s.Lessons[day] = append(s.Lessons[day], entry)
}

// DayLessons returns the ordered entries for a day and whether the day is
// present in the schedule at all.
func (s *Schedule) DayLessons(day string) ([]LessonEntry, bool) {
	lessons, ok := s.Lessons[day]
	return lessons, ok
}

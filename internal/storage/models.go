package storage

import (
	"github.com/isu-schedule/telebot-go/internal/timetable"
)

// User is one chat's preference record. SubjectKind/SubjectName form the
// tagged subject selection; both empty means the user has not picked a group
// or teacher yet.
type User struct {
	ChatID      int64
	Username    string
	Semester    int
	SubjectKind timetable.SubjectKind
	SubjectName string
}

// HasSubject reports whether the user has a group or teacher configured.
func (u *User) HasSubject() bool {
	return u != nil && u.SubjectKind != "" && u.SubjectName != ""
}

// TimetableRecord is a persisted, parsed schedule for one subject and
// semester, with the refresh timestamp the freshness window is checked
// against.
type TimetableRecord struct {
	SubjectKind timetable.SubjectKind
	SubjectName string
	Semester    int
	Schedule    *timetable.Schedule
	LastUpdated int64 // Unix seconds
}

// SubjectRef identifies a subject without its external id, as referenced by
// user preferences and timetable records.
type SubjectRef struct {
	Kind     timetable.SubjectKind
	Name     string
	Semester int
}

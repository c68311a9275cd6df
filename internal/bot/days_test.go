package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDay(t *testing.T) {
	t.Parallel()

	// 2026-01-05 is a Monday.
	monday := time.Date(2026, 1, 5, 12, 0, 0, 0, campusLocation)

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"Понедельник", "Понедельник", true},
		{"понедельник", "Понедельник", true},
		{"  суббота  ", "Суббота", true},
		{"сегодня", "Понедельник", true},
		{"завтра", "Вторник", true},
		{"", "", false},
		{"послезавтра", "", false},
		{"monday", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeDay(tt.input, monday)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestDayForTimeUsesCampusZone(t *testing.T) {
	t.Parallel()

	// 21:00 UTC on Monday is already Tuesday at UTC+5.
	lateMonday := time.Date(2026, 1, 5, 21, 0, 0, 0, time.UTC)
	assert.Equal(t, "Вторник", DayForTime(lateMonday))
}

package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeyBitExact(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "сула-308с_2_понедельник", CacheKey("СУЛА-308С", 2, "Понедельник"))
}

func TestCacheKeyStripsWhitespace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ивановиванович_1_среда", CacheKey("Иванов Иванович", 1, "Среда"))
	assert.Equal(t, "ивановиванович_1_среда", CacheKey(" Иванов\tИванович ", 1, "СРЕДА"))
}

func TestWeekCacheKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "сула-308с_2_all", WeekCacheKey("СУЛА-308С", 2))
}

func TestBundleRoundTrip(t *testing.T) {
	t.Parallel()

	messages := []string{"Понедельник\n\tВремя: 08:00\n\n", "Вторник: No classes"}
	assert.Equal(t, messages, SplitBundle(JoinBundle(messages)))
}

func TestIsStale(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsStale(now.Add(-7*time.Hour), now))
	assert.False(t, IsStale(now.Add(-5*time.Hour), now))
	assert.False(t, IsStale(now.Add(-FreshnessWindow), now))
}

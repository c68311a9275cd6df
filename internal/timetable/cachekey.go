package timetable

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	// AllDaysToken replaces the day segment in cache keys for whole-week bundles.
	AllDaysToken = "all"

	// BundleSeparator joins per-day renderings inside a whole-week cache value.
	BundleSeparator = "|||"

	// FreshnessWindow is how long a persisted schedule is trusted before a
	// live re-fetch is triggered.
	FreshnessWindow = 6 * time.Hour
)

// CacheKey builds the canonical cache key for one day of a subject's
// schedule. The rule is bit-exact for interoperability with any persisted
// cache: subject name lowercased with all whitespace removed, then semester,
// then the lowercased day, joined with underscores.
//
//	CacheKey("СУЛА-308С", 2, "Понедельник") == "сула-308с_2_понедельник"
func CacheKey(subjectName string, semester int, day string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, subjectName)
	return fmt.Sprintf("%s_%d_%s", strings.ToLower(name), semester, strings.ToLower(day))
}

// WeekCacheKey builds the cache key for the whole-week bundle of a subject.
func WeekCacheKey(subjectName string, semester int) string {
	return CacheKey(subjectName, semester, AllDaysToken)
}

// JoinBundle packs per-day renderings into a single cache value.
func JoinBundle(messages []string) string {
	return strings.Join(messages, BundleSeparator)
}

// SplitBundle unpacks a whole-week cache value into per-day renderings.
func SplitBundle(value string) []string {
	return strings.Split(value, BundleSeparator)
}

// IsStale reports whether a schedule refreshed at lastUpdated has outlived
// the freshness window as of now.
func IsStale(lastUpdated, now time.Time) bool {
	return now.Sub(lastUpdated) > FreshnessWindow
}

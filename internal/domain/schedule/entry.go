// Package schedule holds the weekday class list and the static timetable.
package schedule

import (
	"strings"
	"time"

	"class_timer_bot/internal/domain/period"
)

// Entry is one class on a given weekday. Time is free-form display text and
// may be empty.
type Entry struct {
	Day  string
	Name string
	Time string
}

// Timetable is the static configuration loaded at startup.
type Timetable struct {
	Periods []period.Period
	Entries []Entry
}

// Weekdays are the selectable day keys, Monday to Friday.
var Weekdays = []string{"пн", "вт", "ср", "чт", "пт"}

var dayKeys = [...]string{
	time.Sunday:    "вс",
	time.Monday:    "пн",
	time.Tuesday:   "вт",
	time.Wednesday: "ср",
	time.Thursday:  "чт",
	time.Friday:    "пт",
	time.Saturday:  "сб",
}

// DayKey returns the short lowercase key used by the entries table for w.
func DayKey(w time.Weekday) string {
	return dayKeys[w]
}

// IsWeekday reports whether day (case-insensitive) is one of Weekdays.
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if strings.EqualFold(d, day) {
			return true
		}
	}
	return false
}

// Resolve returns the entries whose Day matches day case-insensitively, in
// source order. An empty or unmatched day yields an empty result.
func Resolve(entries []Entry, day string) []Entry {
	result := make([]Entry, 0)
	if day == "" {
		return result
	}
	for _, e := range entries {
		if strings.EqualFold(e.Day, day) {
			result = append(result, e)
		}
	}
	return result
}

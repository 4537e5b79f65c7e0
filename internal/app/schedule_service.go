package app

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"class_timer_bot/internal/domain/schedule"
)

var ErrUnknownDay = errors.New("unknown day key")

// ScheduleService resolves the weekday class list and tracks the day each
// chat currently has selected in its schedule view. Selections live until
// ResetSelections, which the day-start job calls.
type ScheduleService struct {
	clock Clock

	mu       sync.Mutex
	entries  []schedule.Entry
	selected map[int64]string
}

func NewScheduleService(entries []schedule.Entry, clock Clock) *ScheduleService {
	return &ScheduleService{
		entries:  entries,
		clock:    clock,
		selected: make(map[int64]string),
	}
}

// Resolve returns the entries for day. See schedule.Resolve.
func (s *ScheduleService) Resolve(day string) []schedule.Entry {
	s.mu.Lock()
	entries := s.entries
	s.mu.Unlock()
	return schedule.Resolve(entries, day)
}

// SetEntries replaces the class list, e.g. after a timetable reload.
func (s *ScheduleService) SetEntries(entries []schedule.Entry) {
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

// ResetSelections forgets every chat's selected day. A chat's next view
// falls back to today.
func (s *ScheduleService) ResetSelections() {
	s.mu.Lock()
	s.selected = make(map[int64]string)
	s.mu.Unlock()
}

// Today returns today's day key and its entries.
func (s *ScheduleService) Today() (string, []schedule.Entry) {
	day := schedule.DayKey(s.clock.Now().Weekday())
	return day, s.Resolve(day)
}

// OpenView (re)mounts the schedule view for chatID: the selection is reset to
// today's day key, which is returned.
func (s *ScheduleService) OpenView(chatID int64) string {
	day := schedule.DayKey(s.clock.Now().Weekday())

	s.mu.Lock()
	s.selected[chatID] = day
	s.mu.Unlock()
	return day
}

// SelectDay records an explicit selection. Only Weekdays are selectable.
func (s *ScheduleService) SelectDay(chatID int64, day string) (string, error) {
	if !schedule.IsWeekday(day) {
		return "", fmt.Errorf("%w: %q", ErrUnknownDay, day)
	}
	day = strings.ToLower(day)

	s.mu.Lock()
	s.selected[chatID] = day
	s.mu.Unlock()
	return day, nil
}

// SelectedDay returns the chat's current selection, opening the view if the
// chat has none yet.
func (s *ScheduleService) SelectedDay(chatID int64) string {
	s.mu.Lock()
	day, ok := s.selected[chatID]
	s.mu.Unlock()
	if !ok {
		return s.OpenView(chatID)
	}
	return day
}

// FormatDay renders a day's class list as plain text.
func FormatDay(day string, entries []schedule.Entry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Расписание (%s):\n", day))
	if len(entries) == 0 {
		b.WriteString("Пар нет.")
		return b.String()
	}
	for i, e := range entries {
		b.WriteString(fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(e.Name)))
		if e.Time != "" {
			b.WriteString(" (" + e.Time + ")")
		}
		if i < len(entries)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

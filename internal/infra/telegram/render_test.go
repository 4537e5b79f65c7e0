package telegram

import (
	"strings"
	"testing"
	"time"

	"class_timer_bot/internal/app"
	"class_timer_bot/internal/domain/period"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSlots(t *testing.T) {
	first := period.MustNew("08:30", "09:50")
	second := period.MustNew("10:00", "11:20")
	slots := []app.Slot{
		{
			Period:    first,
			Sample:    app.Sample{Period: first, State: period.State{Phase: period.Active, Remaining: 9*time.Minute + 59500*time.Millisecond}},
			HasSample: true,
		},
		{Period: second},
	}

	assert.Equal(t, "До конца пар:\n08:30 - 09:50  09:59\n10:00 - 11:20  --:--", renderSlots(slots))

	slots[0].Sample.State.Remaining = 10*time.Minute + 500*time.Millisecond
	assert.Equal(t, "До конца пар:\n08:30 - 09:50  10:00\n10:00 - 11:20  --:--", renderSlots(slots))
	assert.Equal(t, "До конца пар:", renderSlots(nil))
}

func TestDayKeyboard(t *testing.T) {
	markup := dayKeyboard("ср")
	require.Len(t, markup.InlineKeyboard, 1)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 5)

	labels := make([]string, 0, len(row))
	for _, btn := range row {
		labels = append(labels, btn.Text)
		assert.Equal(t, dayButtonUnique, btn.Unique)
	}
	assert.Equal(t, []string{"пн", "вт", "• ср", "чт", "пт"}, labels)
	assert.Equal(t, "ср", row[2].Data)
}

func TestDayKeyboard_WeekendMarksNothing(t *testing.T) {
	for _, btn := range dayKeyboard("сб").InlineKeyboard[0] {
		assert.False(t, strings.HasPrefix(btn.Text, "•"))
	}
}

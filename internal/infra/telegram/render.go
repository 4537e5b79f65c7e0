package telegram

import (
	"strings"

	"class_timer_bot/internal/app"
	"class_timer_bot/internal/domain/period"
	"class_timer_bot/internal/domain/schedule"

	"gopkg.in/telebot.v3"
)

// dayButtonUnique is the callback namespace of the schedule day selector.
const dayButtonUnique = "day"

// noSampleIndicator is shown for a period whose timer has not reported yet.
const noSampleIndicator = "--:--"

const helpText = `Я показываю, сколько осталось до конца пары, и предупреждаю за 10 минут до её окончания.

/start - подписаться на уведомления
/stop - отписаться от уведомлений
/times - таймеры всех пар
/schedule - расписание по дням
/help - это сообщение`

// renderSlots lists every period with its remaining time, one per line.
func renderSlots(slots []app.Slot) string {
	var b strings.Builder
	b.WriteString("До конца пар:")
	for _, s := range slots {
		b.WriteString("\n")
		b.WriteString(s.Period.String())
		b.WriteString("  ")
		if s.HasSample {
			b.WriteString(period.FormatRemaining(s.Sample.State.Remaining))
		} else {
			b.WriteString(noSampleIndicator)
		}
	}
	return b.String()
}

// dayKeyboard builds the пн..пт selector with the selected day marked.
func dayKeyboard(selected string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	buttons := make([]telebot.Btn, 0, len(schedule.Weekdays))
	for _, day := range schedule.Weekdays {
		label := day
		if day == selected {
			label = "• " + day
		}
		buttons = append(buttons, markup.Data(label, dayButtonUnique, day))
	}
	markup.Inline(markup.Row(buttons...))
	return markup
}

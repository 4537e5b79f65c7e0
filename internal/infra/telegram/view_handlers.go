package telegram

import (
	"errors"

	"class_timer_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// SnapshotSource provides the latest sample of every period; satisfied by *app.Board.
type SnapshotSource interface {
	Snapshot() []app.Slot
}

type viewHandlers struct {
	board     SnapshotSource
	schedules *app.ScheduleService
	logger    *logrus.Entry
}

// RegisterViewHandlers registers /times, /schedule and the day selector callback.
func RegisterViewHandlers(
	b *telebot.Bot,
	board SnapshotSource,
	schedules *app.ScheduleService,
	baseLogger *logrus.Entry,
) {
	h := &viewHandlers{board: board, schedules: schedules, logger: baseLogger}
	b.Handle("/times", h.onTimes)
	b.Handle("/schedule", h.onSchedule)
	b.Handle(&telebot.Btn{Unique: dayButtonUnique}, h.onSelectDay)
}

func (h *viewHandlers) onTimes(c telebot.Context) error {
	h.logger.WithFields(logrus.Fields{"handler": "/times", "chat_id": c.Chat().ID}).Debug("Rendering timers")
	return c.Send(renderSlots(h.board.Snapshot()))
}

func (h *viewHandlers) onSchedule(c telebot.Context) error {
	chatID := c.Chat().ID
	day := h.schedules.OpenView(chatID)
	h.logger.WithFields(logrus.Fields{"handler": "/schedule", "chat_id": chatID, "day": day}).Debug("Opening schedule view")
	return c.Send(app.FormatDay(day, h.schedules.Resolve(day)), dayKeyboard(day))
}

// onSelectDay edits the schedule message in place. Pressing the already
// selected day leaves the message unchanged, which Telegram reports as an
// error that is not worth surfacing.
func (h *viewHandlers) onSelectDay(c telebot.Context) error {
	chatID := c.Chat().ID
	logCtx := h.logger.WithFields(logrus.Fields{"handler": "day_select", "chat_id": chatID})

	day, err := h.schedules.SelectDay(chatID, c.Callback().Data)
	if err != nil {
		logCtx.WithError(err).Warn("Rejected day selection")
		return c.Respond(&telebot.CallbackResponse{Text: "Неизвестный день."})
	}

	err = c.Edit(app.FormatDay(day, h.schedules.Resolve(day)), dayKeyboard(day))
	if err != nil && !errors.Is(err, telebot.ErrSameMessageContent) {
		logCtx.WithError(err).Error("Failed to edit schedule view")
		return c.Respond(&telebot.CallbackResponse{Text: "Произошла ошибка."})
	}
	return c.Respond()
}

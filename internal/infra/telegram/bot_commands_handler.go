package telegram

import (
	"context"
	"errors"

	"class_timer_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

type commandHandlers struct {
	ctx           context.Context
	subscriptions *app.SubscriptionService
	logger        *logrus.Entry
}

// RegisterBotCommands registers the subscription commands and /help.
func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	subscriptions *app.SubscriptionService,
	baseLogger *logrus.Entry,
) {
	h := &commandHandlers{ctx: ctx, subscriptions: subscriptions, logger: baseLogger}
	b.Handle("/start", h.onStart)
	b.Handle("/stop", h.onStop)
	b.Handle("/help", h.onHelp)
}

func (h *commandHandlers) onStart(c telebot.Context) error {
	chatID := c.Chat().ID
	logCtx := h.logger.WithFields(logrus.Fields{"handler": "/start", "chat_id": chatID})
	logCtx.Info("Processing /start command")

	var firstName, username string
	if sender := c.Sender(); sender != nil {
		firstName, username = sender.FirstName, sender.Username
	}

	_, err := h.subscriptions.Subscribe(h.ctx, chatID, firstName, username)
	switch {
	case errors.Is(err, app.ErrAlreadySubscribed):
		logCtx.Info("Chat already subscribed")
		return c.Send("Вы уже подписаны на уведомления. /help - список команд.")
	case err != nil:
		logCtx.WithError(err).Error("Failed to subscribe chat")
		return c.Send("Произошла ошибка при подписке. Пожалуйста, попробуйте позже.")
	}

	logCtx.Info("Chat subscribed")
	return c.Send("Привет! Я буду предупреждать вас за 10 минут до конца каждой пары.\n\n" + helpText)
}

func (h *commandHandlers) onStop(c telebot.Context) error {
	chatID := c.Chat().ID
	logCtx := h.logger.WithFields(logrus.Fields{"handler": "/stop", "chat_id": chatID})
	logCtx.Info("Processing /stop command")

	_, err := h.subscriptions.Unsubscribe(h.ctx, chatID)
	switch {
	case errors.Is(err, app.ErrNotSubscribed):
		return c.Send("Вы не подписаны на уведомления. /start - подписаться.")
	case err != nil:
		logCtx.WithError(err).Error("Failed to unsubscribe chat")
		return c.Send("Произошла ошибка при отписке. Пожалуйста, попробуйте позже.")
	}

	logCtx.Info("Chat unsubscribed")
	return c.Send("Уведомления отключены. /start - включить снова.")
}

func (h *commandHandlers) onHelp(c telebot.Context) error {
	h.logger.WithFields(logrus.Fields{"handler": "/help", "chat_id": c.Chat().ID}).Debug("Processing /help command")
	return c.Send(helpText)
}

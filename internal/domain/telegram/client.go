package telegram

import "gopkg.in/telebot.v3"

// Client sends messages to Telegram chats. It keeps app services independent
// of the bot instance.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}

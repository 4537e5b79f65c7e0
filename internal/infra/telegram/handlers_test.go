package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"class_timer_bot/internal/app"
	"class_timer_bot/internal/domain/period"
	"class_timer_bot/internal/domain/schedule"
	"class_timer_bot/internal/domain/subscriber"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

// fakeContext implements the parts of telebot.Context the handlers use.
// Calling anything else panics on the nil embedded interface.
type fakeContext struct {
	telebot.Context

	chat     *telebot.Chat
	sender   *telebot.User
	callback *telebot.Callback
	editErr  error

	sent      []string
	sentOpts  [][]interface{}
	edited    []string
	editOpts  [][]interface{}
	responses []*telebot.CallbackResponse
	responded int
}

func newFakeContext(chatID int64) *fakeContext {
	return &fakeContext{
		chat:   &telebot.Chat{ID: chatID},
		sender: &telebot.User{ID: chatID, FirstName: "Анна", Username: "anna"},
	}
}

func (c *fakeContext) Chat() *telebot.Chat         { return c.chat }
func (c *fakeContext) Sender() *telebot.User       { return c.sender }
func (c *fakeContext) Callback() *telebot.Callback { return c.callback }

func (c *fakeContext) Send(what interface{}, opts ...interface{}) error {
	c.sent = append(c.sent, what.(string))
	c.sentOpts = append(c.sentOpts, opts)
	return nil
}

func (c *fakeContext) Edit(what interface{}, opts ...interface{}) error {
	if c.editErr != nil {
		return c.editErr
	}
	c.edited = append(c.edited, what.(string))
	c.editOpts = append(c.editOpts, opts)
	return nil
}

func (c *fakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	c.responded++
	c.responses = append(c.responses, resp...)
	return nil
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

// wednesday is 2025-03-05 08:00 local time.
var wednesday = fixedClock(time.Date(2025, time.March, 5, 8, 0, 0, 0, time.Local))

var handlerEntries = []schedule.Entry{
	{Day: "пн", Name: "Информационная безопасность"},
	{Day: "ср", Name: "Развитие физических качеств"},
	{Day: "пт", Name: "Навыки математики"},
}

type staticBoard []app.Slot

func (b staticBoard) Snapshot() []app.Slot { return b }

func newViewHandlers() *viewHandlers {
	return &viewHandlers{
		board:     staticBoard{{Period: period.MustNew("08:30", "09:50")}},
		schedules: app.NewScheduleService(handlerEntries, wednesday),
		logger:    quietLogger(),
	}
}

func TestViewHandlers_Times(t *testing.T) {
	h := newViewHandlers()
	c := newFakeContext(1)

	require.NoError(t, h.onTimes(c))
	assert.Equal(t, []string{"До конца пар:\n08:30 - 09:50  --:--"}, c.sent)
}

func TestViewHandlers_ScheduleOpensOnToday(t *testing.T) {
	h := newViewHandlers()
	c := newFakeContext(1)

	_, err := h.schedules.SelectDay(1, "пт")
	require.NoError(t, err)

	require.NoError(t, h.onSchedule(c))
	assert.Equal(t, []string{"Расписание (ср):\n1. Развитие физических качеств"}, c.sent)
	require.Len(t, c.sentOpts[0], 1)
	markup, ok := c.sentOpts[0][0].(*telebot.ReplyMarkup)
	require.True(t, ok)
	assert.Equal(t, "• ср", markup.InlineKeyboard[0][2].Text)
	assert.Equal(t, "ср", h.schedules.SelectedDay(1))
}

func TestViewHandlers_SelectDayEditsInPlace(t *testing.T) {
	h := newViewHandlers()
	c := newFakeContext(1)
	c.callback = &telebot.Callback{Data: "ПН"}

	require.NoError(t, h.onSelectDay(c))
	assert.Equal(t, []string{"Расписание (пн):\n1. Информационная безопасность"}, c.edited)
	assert.Equal(t, 1, c.responded)
	assert.Empty(t, c.responses)
	assert.Equal(t, "пн", h.schedules.SelectedDay(1))
}

func TestViewHandlers_SelectDayRejectsUnknownDay(t *testing.T) {
	h := newViewHandlers()
	c := newFakeContext(1)
	h.schedules.OpenView(1)
	c.callback = &telebot.Callback{Data: "сб"}

	require.NoError(t, h.onSelectDay(c))
	assert.Empty(t, c.edited)
	require.Len(t, c.responses, 1)
	assert.Equal(t, "Неизвестный день.", c.responses[0].Text)
	assert.Equal(t, "ср", h.schedules.SelectedDay(1))
}

func TestViewHandlers_SelectSameDayIsQuiet(t *testing.T) {
	h := newViewHandlers()
	c := newFakeContext(1)
	c.callback = &telebot.Callback{Data: "ср"}
	c.editErr = telebot.ErrSameMessageContent

	require.NoError(t, h.onSelectDay(c))
	assert.Equal(t, 1, c.responded)
	assert.Empty(t, c.responses)
}

func TestViewHandlers_SelectDayEditFailure(t *testing.T) {
	h := newViewHandlers()
	c := newFakeContext(1)
	c.callback = &telebot.Callback{Data: "пт"}
	c.editErr = errors.New("message to edit not found")

	require.NoError(t, h.onSelectDay(c))
	require.Len(t, c.responses, 1)
	assert.Equal(t, "Произошла ошибка.", c.responses[0].Text)
}

type memSubscriberRepo struct {
	byChat map[int64]*subscriber.Subscriber
}

func (r *memSubscriberRepo) Create(_ context.Context, s *subscriber.Subscriber) error {
	if _, ok := r.byChat[s.ChatID]; ok {
		return subscriber.ErrDuplicateChatID
	}
	cp := *s
	r.byChat[s.ChatID] = &cp
	return nil
}

func (r *memSubscriberRepo) GetByChatID(_ context.Context, chatID int64) (*subscriber.Subscriber, error) {
	s, ok := r.byChat[chatID]
	if !ok {
		return nil, subscriber.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSubscriberRepo) Update(_ context.Context, s *subscriber.Subscriber) error {
	cp := *s
	r.byChat[s.ChatID] = &cp
	return nil
}

func (r *memSubscriberRepo) ListActive(context.Context) ([]*subscriber.Subscriber, error) {
	return nil, nil
}

func TestCommandHandlers_StartStop(t *testing.T) {
	repo := &memSubscriberRepo{byChat: make(map[int64]*subscriber.Subscriber)}
	h := &commandHandlers{
		ctx:           context.Background(),
		subscriptions: app.NewSubscriptionService(repo),
		logger:        quietLogger(),
	}
	c := newFakeContext(7)

	require.NoError(t, h.onStart(c))
	require.NoError(t, h.onStart(c))
	require.NoError(t, h.onStop(c))
	require.NoError(t, h.onStop(c))

	require.Len(t, c.sent, 4)
	assert.Contains(t, c.sent[0], "Привет!")
	assert.Equal(t, "Вы уже подписаны на уведомления. /help - список команд.", c.sent[1])
	assert.Equal(t, "Уведомления отключены. /start - включить снова.", c.sent[2])
	assert.Equal(t, "Вы не подписаны на уведомления. /start - подписаться.", c.sent[3])

	sub := repo.byChat[7]
	require.NotNil(t, sub)
	assert.Equal(t, "Анна", sub.FirstName)
	assert.False(t, sub.IsActive)
}

func TestCommandHandlers_StartWithoutSender(t *testing.T) {
	repo := &memSubscriberRepo{byChat: make(map[int64]*subscriber.Subscriber)}
	h := &commandHandlers{ctx: context.Background(), subscriptions: app.NewSubscriptionService(repo), logger: quietLogger()}
	c := newFakeContext(-100)
	c.sender = nil

	require.NoError(t, h.onStart(c))
	assert.True(t, repo.byChat[-100].IsActive)
}

func TestCommandHandlers_Help(t *testing.T) {
	h := &commandHandlers{logger: quietLogger()}
	c := newFakeContext(1)

	require.NoError(t, h.onHelp(c))
	assert.Equal(t, []string{helpText}, c.sent)
}

package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"class_timer_bot/internal/domain/notification"
	"class_timer_bot/internal/domain/subscriber"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeSubs(chatIDs ...int64) []*subscriber.Subscriber {
	subs := make([]*subscriber.Subscriber, 0, len(chatIDs))
	for _, id := range chatIDs {
		subs = append(subs, &subscriber.Subscriber{ChatID: id, FirstName: "x", IsActive: true})
	}
	return subs
}

func TestBroadcastService_SendsToActiveSubscribersOnly(t *testing.T) {
	subs := activeSubs(1, 2)
	subs = append(subs, &subscriber.Subscriber{ChatID: 3, IsActive: false})
	client := &fakeTelegramClient{}
	svc := NewBroadcastService(newFakeSubscriberRepo(subs...), client, testLogger(), 0)

	require.NoError(t, svc.Broadcast(context.Background(), "hello", notification.PriorityUrgent))

	sent := client.Sent()
	require.Len(t, sent, 2)
	chats := []int64{sent[0].chatID, sent[1].chatID}
	assert.ElementsMatch(t, []int64{1, 2}, chats)
	for _, m := range sent {
		assert.Equal(t, "hello", m.text)
		assert.False(t, m.silent)
	}
}

func TestBroadcastService_DefaultPriorityIsSilent(t *testing.T) {
	client := &fakeTelegramClient{}
	svc := NewBroadcastService(newFakeSubscriberRepo(activeSubs(1)...), client, testLogger(), 0)

	require.NoError(t, svc.Broadcast(context.Background(), "digest", notification.PriorityDefault))
	require.Len(t, client.Sent(), 1)
	assert.True(t, client.Sent()[0].silent)
}

func TestBroadcastService_FailedRecipientDoesNotBlockOthers(t *testing.T) {
	boom := errors.New("bot was blocked by the user")
	client := &fakeTelegramClient{failOn: map[int64]error{2: boom}}
	svc := NewBroadcastService(newFakeSubscriberRepo(activeSubs(1, 2, 3)...), client, testLogger(), 0)

	err := svc.Broadcast(context.Background(), "hello", notification.PriorityUrgent)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, client.Sent(), 2)
}

func TestBroadcastService_ListError(t *testing.T) {
	repo := newFakeSubscriberRepo()
	repo.listErr = errors.New("db down")
	svc := NewBroadcastService(repo, &fakeTelegramClient{}, testLogger(), 0)

	assert.ErrorIs(t, svc.Broadcast(context.Background(), "x", notification.PriorityUrgent), repo.listErr)
}

func TestBroadcastService_NotifyIsDeliveredByRun(t *testing.T) {
	client := &fakeTelegramClient{}
	svc := NewBroadcastService(newFakeSubscriberRepo(activeSubs(1)...), client, testLogger(), 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	svc.Notify(ctx, "До конца пары осталось 9 минут!", notification.PriorityUrgent)
	require.Eventually(t, func() bool { return len(client.Sent()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "До конца пары осталось 9 минут!", client.Sent()[0].text)

	cancel()
	<-done
}

func TestBroadcastService_NotifyDropsWhenQueueFull(t *testing.T) {
	client := &fakeTelegramClient{}
	svc := NewBroadcastService(newFakeSubscriberRepo(activeSubs(1)...), client, testLogger(), 1)

	svc.Notify(context.Background(), "first", notification.PriorityUrgent)
	svc.Notify(context.Background(), "second", notification.PriorityUrgent)
	assert.Len(t, svc.queue, 1)

	msg := <-svc.queue
	assert.Equal(t, "first", msg.text)
}

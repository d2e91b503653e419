package middleware

import (
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: userID * 10},
			Text: text,
		},
	}
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	sender := &fakeSender{}
	rl := NewRateLimiterMiddleware(60, 2, zap.NewNop(), sender)
	defer rl.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	handled := 0
	next := func(tgbotapi.Update) { handled++ }

	for range 3 {
		rl.Handle(textUpdate(1, "hi"), next)
	}
	assert.Equal(t, 2, handled)
	require.Len(t, sender.sent, 1)

	// Another user has an independent bucket
	rl.Handle(textUpdate(2, "hi"), next)
	assert.Equal(t, 3, handled)

	// 60 per minute refills one token per second
	now = now.Add(time.Second)
	rl.Handle(textUpdate(1, "hi"), next)
	assert.Equal(t, 4, handled)
}

func TestRateLimiter_EvictsInactiveUsers(t *testing.T) {
	rl := NewRateLimiterMiddleware(60, 1, zap.NewNop(), &fakeSender{})
	defer rl.Close()

	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.Handle(textUpdate(1, "hi"), func(tgbotapi.Update) {})

	now = now.Add(2 * time.Hour)
	rl.evictInactive()
	assert.Empty(t, rl.limits)
}

func TestRecovery_NotifiesUser(t *testing.T) {
	sender := &fakeSender{}
	m := NewRecoveryMiddleware(zap.NewNop(), sender)

	assert.NotPanics(t, func() {
		m.Handle(textUpdate(1, "hi"), func(tgbotapi.Update) { panic("boom") })
	})
	assert.Equal(t, []string{panicNotice}, sender.sent)
}

func TestUpdateType(t *testing.T) {
	assert.Equal(t, "text", updateType(textUpdate(1, "hello")))
	assert.Equal(t, "callback", updateType(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{}}))
	assert.Equal(t, "other", updateType(tgbotapi.Update{}))
}

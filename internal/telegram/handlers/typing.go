package handlers

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Telegram chat actions expire after 5 seconds
const chatActionInterval = 4 * time.Second

// ChatActionNotifier keeps a chat action such as "typing" visible while work is in progress
type ChatActionNotifier struct {
	bot      BotAPI
	chatID   int64
	action   string
	interval time.Duration
	logger   *zap.Logger

	once sync.Once
	done chan struct{}
}

// NewTypingNotifier shows "typing" while the assistant composes a reply
func NewTypingNotifier(bot BotAPI, chatID int64, logger *zap.Logger) *ChatActionNotifier {
	return newChatActionNotifier(bot, chatID, tgbotapi.ChatTyping, logger)
}

// NewUploadNotifier shows "sending a file" while a report is rendered
func NewUploadNotifier(bot BotAPI, chatID int64, logger *zap.Logger) *ChatActionNotifier {
	return newChatActionNotifier(bot, chatID, tgbotapi.ChatUploadDocument, logger)
}

func newChatActionNotifier(bot BotAPI, chatID int64, action string, logger *zap.Logger) *ChatActionNotifier {
	return &ChatActionNotifier{
		bot:      bot,
		chatID:   chatID,
		action:   action,
		interval: chatActionInterval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start sends the action immediately and then repeats it until Stop or ctx is done
func (n *ChatActionNotifier) Start(ctx context.Context) {
	n.send()

	go func() {
		ticker := time.NewTicker(n.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				n.send()
			case <-n.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops repeating the chat action, safe to call more than once
func (n *ChatActionNotifier) Stop() {
	n.once.Do(func() { close(n.done) })
}

func (n *ChatActionNotifier) send() {
	if _, err := n.bot.Request(tgbotapi.NewChatAction(n.chatID, n.action)); err != nil {
		n.logger.Warn("failed to send chat action",
			zap.Error(err),
			zap.String("action", n.action),
			zap.Int64("chat_id", n.chatID),
		)
	}
}

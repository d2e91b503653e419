package handlers

import (
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/launchpad-backend/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	maxSendRetries = 3
	retrySleepBase = time.Second
)

// MessageSender provides centralized message sending functionality
type MessageSender struct {
	bot        BotAPI
	logger     *zap.Logger
	retryDelay time.Duration
}

// NewMessageSender creates a new MessageSender
func NewMessageSender(bot BotAPI, logger *zap.Logger) *MessageSender {
	return &MessageSender{
		bot:        bot,
		logger:     logger,
		retryDelay: retrySleepBase,
	}
}

// Send sends a message to the specified chat
func (s *MessageSender) Send(chatID int64, text string, markup interface{}) error {
	_, err := s.send(chatID, text, markup)
	return err
}

// SendCritical retries delivery of messages the user must not miss
func (s *MessageSender) SendCritical(chatID int64, text string, markup interface{}) (int, error) {
	msg := newMessage(chatID, text, markup)

	var sent tgbotapi.Message
	err := retry.Do(
		func() error {
			var err error
			sent, err = s.bot.Send(msg)
			return err
		},
		retry.Attempts(maxSendRetries),
		retry.Delay(s.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("failed to send message, retrying",
				zap.Error(err),
				zap.Uint("attempt", n+1),
				zap.Int64("chat_id", chatID),
			)
		}),
	)
	if err != nil {
		s.logger.Error("failed to send message after all retries",
			zap.Error(err),
			zap.Int("max_retries", maxSendRetries),
			zap.Int64("chat_id", chatID),
		)
		return 0, err
	}
	return sent.MessageID, nil
}

// SendDocument uploads a generated report into the chat
func (s *MessageSender) SendDocument(chatID int64, file *entity.ReportFile) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  file.Filename,
		Bytes: file.Content,
	})
	if _, err := s.bot.Send(doc); err != nil {
		s.logger.Error("failed to send document",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.String("filename", file.Filename),
		)
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

// EditMarkup replaces the inline keyboard of an already sent message
func (s *MessageSender) EditMarkup(chatID int64, messageID int, markup tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, markup)
	if _, err := s.bot.Request(edit); err != nil {
		s.logger.Warn("failed to edit message markup",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
		)
		return err
	}
	return nil
}

// AnswerCallback acknowledges a button press
func (s *MessageSender) AnswerCallback(callbackID, text string) {
	if callbackID == "" {
		return
	}
	if _, err := s.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		s.logger.Error("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}

func (s *MessageSender) send(chatID int64, text string, markup interface{}) (tgbotapi.Message, error) {
	sent, err := s.bot.Send(newMessage(chatID, text, markup))
	if err != nil {
		s.logger.Error("failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		return sent, err
	}
	return sent, nil
}

func newMessage(chatID int64, text string, markup interface{}) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return msg
}

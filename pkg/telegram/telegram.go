package telegram

import (
	"context"
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/ratelimit"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// Telegram allows roughly one message per second into the same chat.
const perChatMessagesPerSecond = 1

var ErrChatNotConfigured = errors.New("telegram chat id is not configured")

// Messenger is the part of *telebot.Bot the sender needs.
type Messenger interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Sender delivers messages under a global and a per-chat rate limit.
type Sender struct {
	bot     Messenger
	chatID  int64
	timeout time.Duration
	log     *logger.Logger
	global  *rate.Limiter
	chats   *ratelimit.Keyed[int64]
}

func NewSender(bot Messenger, cfg config.TelegramConfig, log *logger.Logger) *Sender {
	global := cfg.MaxGlobalRequestPerSecond
	if global <= 0 {
		global = 30
	}
	timeout := cfg.TimeoutDuration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Sender{
		bot:     bot,
		chatID:  cfg.ChatID,
		timeout: timeout,
		log:     log,
		global:  rate.NewLimiter(rate.Limit(global), global),
		chats:   ratelimit.NewKeyed[int64](rate.Limit(perChatMessagesPerSecond), perChatMessagesPerSecond),
	}
}

// Send waits for both limiters and then sends message to chatID.
func (s *Sender) Send(ctx context.Context, chatID int64, message string, opts ...interface{}) error {
	if chatID == 0 {
		return ErrChatNotConfigured
	}
	if err := s.global.Wait(ctx); err != nil {
		return fmt.Errorf("global telegram rate limit: %w", err)
	}
	if err := s.chats.For(chatID).Wait(ctx); err != nil {
		return fmt.Errorf("chat telegram rate limit: %w", err)
	}

	if _, err := s.bot.Send(&telebot.Chat{ID: chatID}, message, opts...); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// SendAlert pushes a log alert into the configured chat. Failures are only logged.
func (s *Sender) SendAlert(message string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.Send(ctx, s.chatID, message, telebot.ModeMarkdown); err != nil {
		s.log.Warn("Failed to deliver alert to telegram", logger.ErrorField(err))
	}
}

// NotifyBacktest sends the summary of result into the configured chat.
func (s *Sender) NotifyBacktest(ctx context.Context, result *dto.BacktestResult) error {
	if result == nil {
		return nil
	}
	return s.Send(ctx, s.chatID, FormatBacktestResult(result), telebot.ModeMarkdown)
}

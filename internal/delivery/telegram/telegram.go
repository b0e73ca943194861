package telegram

import (
	"context"
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/internal/service"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/middleware"
	"crypto-signal-backtest/pkg/ratelimit"
	"crypto-signal-backtest/pkg/telegram"
	"crypto-signal-backtest/pkg/utils"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// handlerTimeout bounds a single command, a backtest included.
const handlerTimeout = 5 * time.Minute

type TelegramBotHandler struct {
	ctx     context.Context
	cfg     *config.Config
	bot     *telebot.Bot
	log     *logger.Logger
	sender  *telegram.Sender
	service *service.Service
	chats   *ratelimit.Keyed[int64]
}

func NewTelegramBotHandler(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	bot *telebot.Bot,
	sender *telegram.Sender,
	service *service.Service) *TelegramBotHandler {
	return &TelegramBotHandler{
		ctx:     ctx,
		cfg:     cfg,
		log:     log,
		bot:     bot,
		sender:  sender,
		service: service,
		chats:   ratelimit.NewKeyed[int64](rate.Every(2*time.Second), 3),
	}
}

// Start registers the command handlers and begins long polling in the background.
func (t *TelegramBotHandler) Start() {
	t.log.Info("Starting Telegram bot...")
	t.RegisterHandlers()

	utils.GoSafe(t.log, t.bot.Start)
}

func (t *TelegramBotHandler) Stop() {
	t.log.Info("Stopping Telegram bot...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopDone := make(chan struct{})
	go func() {
		t.bot.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
		t.log.Info("Telegram bot stopped successfully")
	case <-ctx.Done():
		t.log.Warn("Timeout while stopping bot, forcing shutdown")
	}
}

func (t *TelegramBotHandler) RegisterHandlers() {
	t.bot.Use(middleware.PerChatRateLimit(t.chats))

	t.bot.Handle("/start", t.withContext(t.handleStart))
	t.bot.Handle("/help", t.withContext(t.handleHelp))
	t.bot.Handle("/backtest", t.withContext(t.handleBacktest))
	t.bot.Handle("/results", t.withContext(t.handleResults))
	t.bot.Handle("/jobs", t.withContext(t.handleJobs))
	t.bot.Handle(&btnRunJob, t.withContext(t.handleBtnRunJob))
	t.bot.Handle(&btnDeleteMessage, t.withContext(t.handleBtnDeleteMessage))
	t.bot.Handle(telebot.OnText, t.withContext(t.handleText))
}

func (t *TelegramBotHandler) withContext(handler func(ctx context.Context, c telebot.Context) error) telebot.HandlerFunc {
	return middleware.WithContext(t.ctx, handlerTimeout, handler)
}

// reply sends through the rate limited sender into the chat of the update.
func (t *TelegramBotHandler) reply(ctx context.Context, c telebot.Context, message string, opts ...interface{}) error {
	if c.Chat() == nil {
		return nil
	}
	if err := t.sender.Send(ctx, c.Chat().ID, message, opts...); err != nil {
		t.log.WarnContext(ctx, "Failed to reply to telegram chat", logger.ErrorField(err))
		return err
	}
	return nil
}

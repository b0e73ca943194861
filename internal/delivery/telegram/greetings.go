package telegram

import (
	"context"
	"crypto-signal-backtest/pkg/logger"
	"strings"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handleStart(ctx context.Context, c telebot.Context) error {
	return t.reply(ctx, c, "👋 Welcome!\n\n"+helpMessage, telebot.ModeMarkdown)
}

func (t *TelegramBotHandler) handleHelp(ctx context.Context, c telebot.Context) error {
	return t.reply(ctx, c, helpMessage, telebot.ModeMarkdown)
}

func (t *TelegramBotHandler) handleText(ctx context.Context, c telebot.Context) error {
	if strings.HasPrefix(c.Text(), "/") {
		return t.reply(ctx, c, "Unknown command. Use /help to see what I can do.")
	}
	return t.reply(ctx, c, "Send /backtest BTC/USDT to start, or /help for all commands.")
}

func (t *TelegramBotHandler) handleBtnDeleteMessage(ctx context.Context, c telebot.Context) error {
	if err := c.Delete(); err != nil {
		t.log.WarnContext(ctx, "Failed to delete message", logger.ErrorField(err))
	}
	return c.Respond()
}

package middleware

import (
	"context"
	"crypto-signal-backtest/pkg/ratelimit"
	"time"

	"gopkg.in/telebot.v3"
)

// WithContext derives a bounded context from rootCtx for each bot update.
func WithContext(rootCtx context.Context, timeout time.Duration, handler func(ctx context.Context, c telebot.Context) error) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(rootCtx, timeout)
		defer cancel()

		return handler(ctx, c)
	}
}

// PerChatRateLimit drops updates from a chat that exceeds its bucket.
func PerChatRateLimit(store *ratelimit.Keyed[int64]) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			if c.Chat() != nil && !store.For(c.Chat().ID).Allow() {
				return c.Send("⏳ Too many requests, slow down a little.")
			}
			return next(c)
		}
	}
}

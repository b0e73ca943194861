package telegram

import (
	"context"
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/internal/service"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/telegram"
	"crypto-signal-backtest/pkg/utils"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"
)

const backtestUsage = "Usage: /backtest SYMBOL [TIMEFRAME] [DAYS]\ne.g. /backtest BTC/USDT 4h 60"

// parseBacktestArgs reads "SYMBOL [TIMEFRAME] [DAYS]". Missing values stay empty so the
// service can fill its configured defaults.
func parseBacktestArgs(args []string) (dto.BacktestRequest, error) {
	if len(args) == 0 || len(args) > 3 {
		return dto.BacktestRequest{}, errors.New(backtestUsage)
	}

	req := dto.BacktestRequest{Symbol: strings.ToUpper(args[0])}
	for _, arg := range args[1:] {
		if days, err := strconv.Atoi(arg); err == nil {
			req.Days = days
			continue
		}
		if _, err := utils.ParseTimeframe(arg); err != nil {
			return dto.BacktestRequest{}, fmt.Errorf("unknown timeframe %q\n%s", arg, backtestUsage)
		}
		req.Timeframe = arg
	}
	return req, nil
}

func (t *TelegramBotHandler) handleBacktest(ctx context.Context, c telebot.Context) error {
	req, err := parseBacktestArgs(c.Args())
	if err != nil {
		return t.reply(ctx, c, err.Error())
	}

	if err := t.reply(ctx, c, fmt.Sprintf("⏳ Running backtest for %s...", req.Symbol)); err != nil {
		return err
	}

	result, err := t.service.BacktestService.RunBacktest(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return t.reply(ctx, c, "❌ "+err.Error()+"\n\n"+backtestUsage)
		}
		t.log.ErrorContext(ctx, "Failed to run backtest from telegram", logger.ErrorField(err), logger.StringField("symbol", req.Symbol))
		return t.reply(ctx, c, commonErrorInternal)
	}
	if result == nil {
		return t.reply(ctx, c, fmt.Sprintf("🤷 No data available to backtest %s.", req.Symbol))
	}

	return t.reply(ctx, c, telegram.FormatBacktestResult(result), telebot.ModeMarkdown)
}

func (t *TelegramBotHandler) handleResults(ctx context.Context, c telebot.Context) error {
	param := dto.GetBacktestResultsParam{Limit: 5}
	if args := c.Args(); len(args) > 0 {
		param.Symbol = args[0]
	}

	results, err := t.service.BacktestService.ListResults(ctx, param)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to list backtest results", logger.ErrorField(err))
		return t.reply(ctx, c, commonErrorInternal)
	}

	return t.reply(ctx, c, formatResultList(results), telebot.ModeMarkdown)
}

func formatResultList(results []dto.BacktestResult) string {
	if len(results) == 0 {
		return "No saved backtests yet. Results saved by jobs or the API show up here."
	}

	var sb strings.Builder
	sb.WriteString("🗂 *Latest backtests*\n\n")
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("#%d %s %s %dd | %d signals | win %.2f%% | PF %.2f\n",
			r.ID, r.Symbol, r.Timeframe, r.Days, r.TotalSignals, r.WinRate, r.ProfitFactor))
	}
	return sb.String()
}

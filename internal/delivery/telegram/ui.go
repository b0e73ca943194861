package telegram

import "gopkg.in/telebot.v3"

var (
	btnRunJob        = telebot.Btn{Text: "▶️ Run", Unique: "btn_run_job"}
	btnDeleteMessage = telebot.Btn{Text: "🗑 Close", Unique: "btn_delete_message"}
)

const (
	commonErrorInternal = "Something went wrong on our side, please try again later."

	helpMessage = `🤖 *Crypto Signal Backtester*

/backtest SYMBOL [TIMEFRAME] [DAYS] - replay the signal generator on history
   e.g. /backtest BTC/USDT 4h 60
/results [SYMBOL] - latest saved backtests
/jobs - configured jobs, run one manually
/help - show this message

Signals are historical simulations only. Do your own research.`
)

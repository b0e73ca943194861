package common

const (
	KEY_CANDLES         = "candles:%s:%s:%s:%d:%d"
	KEY_BACKTEST_RESULT = "backtest_result:%d"
)

const (
	EXCHANGE_BINANCE = "BINANCE"
	EXCHANGE_YAHOO   = "YAHOO"
)

func GetExchangeList() []string {
	return []string{
		EXCHANGE_BINANCE,
		EXCHANGE_YAHOO,
	}
}

const (
	JOB_TYPE_BACKTEST     = "backtest"
	JOB_TYPE_DATA_CLEANUP = "data_clean_up"
)

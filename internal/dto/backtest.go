package dto

import "time"

// BacktestRequest mendefinisikan parameter untuk menjalankan sebuah backtest.
type BacktestRequest struct {
	Exchange  string       `json:"exchange" query:"exchange" validate:"omitempty,exchange"`
	Symbol    string       `json:"symbol" query:"symbol" validate:"required"`
	Timeframe string       `json:"timeframe" query:"timeframe" default:"1h" validate:"oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w"`
	Days      int          `json:"days" query:"days" default:"30" validate:"gte=1,lte=365"`
	EndTime   time.Time    `json:"end_time"`
	Save      bool         `json:"save"`
	Notify    bool         `json:"notify"`
	Config    SignalConfig `json:"config"`
}

// StrategyPerformance is the per-strategy slice of a backtest.
type StrategyPerformance struct {
	Count        int     `json:"count"`
	WinCount     int     `json:"win_count"`
	LossCount    int     `json:"loss_count"`
	ProfitSum    float64 `json:"profit_sum"`
	LossSum      float64 `json:"loss_sum"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
}

// BacktestResult merangkum hasil dari sebuah sesi backtest.
type BacktestResult struct {
	ID                  uint                           `json:"id,omitempty"`
	Exchange            string                         `json:"exchange"`
	Symbol              string                         `json:"symbol"`
	Timeframe           string                         `json:"timeframe"`
	Days                int                            `json:"days"`
	StartDate           time.Time                      `json:"start_date"`
	EndDate             time.Time                      `json:"end_date"`
	TotalBars           int                            `json:"total_bars"`
	TotalSignals        int                            `json:"total_signals"`
	WinningSignals      int                            `json:"winning_signals"`
	LosingSignals       int                            `json:"losing_signals"`
	WinRate             float64                        `json:"win_rate"`
	AvgProfit           float64                        `json:"avg_profit"`
	MaxDrawdown         float64                        `json:"max_drawdown"`
	ProfitFactor        float64                        `json:"profit_factor"`
	StrategyPerformance map[string]StrategyPerformance `json:"strategy_performance"`
	Signals             []Signal                       `json:"signals"`
	Config              SignalConfig                   `json:"config"`
	CreatedAt           time.Time                      `json:"created_at,omitempty"`
}

type GetBacktestResultsParam struct {
	Symbol      string `query:"symbol"`
	Limit       int    `query:"limit" default:"10" validate:"gte=1,lte=100"`
	WithSignals bool   `query:"with_signals"`
}

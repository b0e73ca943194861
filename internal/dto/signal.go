package dto

import "time"

type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

type ExitReason string

const (
	ExitReasonStopLoss  ExitReason = "Stop Loss"
	ExitReasonTarget1   ExitReason = "Target 1"
	ExitReasonTarget2   ExitReason = "Target 2"
	ExitReasonEndOfData ExitReason = "End of data"
)

// TradeExit is filled in once by the outcome simulator.
type TradeExit struct {
	Price      float64    `json:"exit_price"`
	Time       time.Time  `json:"exit_time"`
	ProfitLoss float64    `json:"profit_loss"`
	Reason     ExitReason `json:"exit_reason"`
}

// Signal is a directional trade proposal anchored at one bar.
type Signal struct {
	ID          string     `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	Symbol      string     `json:"symbol"`
	Direction   Direction  `json:"signal_type"`
	Strategy    string     `json:"strategy"`
	EntryPrice  float64    `json:"entry_price"`
	StopLoss    float64    `json:"stop_loss"`
	Target1     float64    `json:"target1"`
	Target2     float64    `json:"target2"`
	RiskReward1 float64    `json:"risk_reward_ratio1"`
	RiskReward2 float64    `json:"risk_reward_ratio2"`
	Leverage    int        `json:"leverage"`
	RiskPercent float64    `json:"risk_percent"`
	Exit        *TradeExit `json:"exit,omitempty"`
}

// IsTerminal reports whether an exit has been recorded.
func (s Signal) IsTerminal() bool {
	return s.Exit != nil
}

// ProfitLoss is the realized return in percent, 0 for an open signal.
func (s Signal) ProfitLoss() float64 {
	if s.Exit == nil {
		return 0
	}
	return s.Exit.ProfitLoss
}

// HasValidLevels checks stop < entry < t1 < t2 for longs and the mirror for shorts.
func (s Signal) HasValidLevels() bool {
	switch s.Direction {
	case DirectionLong:
		return s.StopLoss < s.EntryPrice && s.EntryPrice < s.Target1 && s.Target1 < s.Target2
	case DirectionShort:
		return s.StopLoss > s.EntryPrice && s.EntryPrice > s.Target1 && s.Target1 > s.Target2
	default:
		return false
	}
}

package model

import (
	"database/sql"
	"time"
)

// BacktestSignal is a simulated signal stored together with its outcome.
type BacktestSignal struct {
	ID               uint   `gorm:"primaryKey"`
	BacktestResultID uint   `gorm:"not null;index"`
	SignalID         string `gorm:"type:varchar(36);not null"`
	Timestamp        time.Time
	Symbol           string  `gorm:"type:varchar(30);not null"`
	Direction        string  `gorm:"type:varchar(10);not null"`
	Strategy         string  `gorm:"type:varchar(100);not null"`
	EntryPrice       float64 `gorm:"not null"`
	StopLoss         float64 `gorm:"not null"`
	Target1          float64 `gorm:"not null"`
	Target2          float64 `gorm:"not null"`
	RiskReward1      float64
	RiskReward2      float64
	Leverage         int
	RiskPercent      float64
	ExitPrice        sql.NullFloat64
	ExitTime         sql.NullTime
	ExitReason       sql.NullString `gorm:"type:varchar(20)"`
	ProfitLoss       sql.NullFloat64
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

func (BacktestSignal) TableName() string {
	return "backtest_signals"
}

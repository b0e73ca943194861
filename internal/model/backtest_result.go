package model

import (
	"time"

	"gorm.io/datatypes"
)

type BacktestResult struct {
	ID                  uint           `gorm:"primaryKey"`
	Exchange            string         `gorm:"type:varchar(20);not null"`
	Symbol              string         `gorm:"type:varchar(30);not null;index"`
	Timeframe           string         `gorm:"type:varchar(10);not null"`
	Days                int            `gorm:"not null"`
	StartDate           time.Time      `gorm:"not null"`
	EndDate             time.Time      `gorm:"not null"`
	TotalBars           int            `gorm:"not null"`
	TotalSignals        int            `gorm:"not null"`
	WinningSignals      int            `gorm:"not null"`
	LosingSignals       int            `gorm:"not null"`
	WinRate             float64        `gorm:"not null"`
	AvgProfit           float64        `gorm:"not null"`
	MaxDrawdown         float64        `gorm:"not null"`
	ProfitFactor        float64        `gorm:"not null"`
	StrategyPerformance datatypes.JSON `gorm:"type:jsonb"`
	Config              datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt           time.Time      `gorm:"autoCreateTime"`

	Signals []BacktestSignal `gorm:"foreignKey:BacktestResultID;constraint:OnDelete:CASCADE"`
}

func (BacktestResult) TableName() string {
	return "backtest_results"
}

type GetBacktestResultParam struct {
	Symbol      string
	Limit       int
	WithSignals bool
}

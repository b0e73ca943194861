package service

import (
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/internal/model"
	"database/sql"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

func toBacktestResultModel(result *dto.BacktestResult) (*model.BacktestResult, error) {
	performance, err := json.Marshal(result.StrategyPerformance)
	if err != nil {
		return nil, fmt.Errorf("marshal strategy performance: %w", err)
	}
	cfg, err := json.Marshal(result.Config)
	if err != nil {
		return nil, fmt.Errorf("marshal signal config: %w", err)
	}

	return &model.BacktestResult{
		Exchange:            result.Exchange,
		Symbol:              result.Symbol,
		Timeframe:           result.Timeframe,
		Days:                result.Days,
		StartDate:           result.StartDate,
		EndDate:             result.EndDate,
		TotalBars:           result.TotalBars,
		TotalSignals:        result.TotalSignals,
		WinningSignals:      result.WinningSignals,
		LosingSignals:       result.LosingSignals,
		WinRate:             result.WinRate,
		AvgProfit:           result.AvgProfit,
		MaxDrawdown:         result.MaxDrawdown,
		ProfitFactor:        result.ProfitFactor,
		StrategyPerformance: datatypes.JSON(performance),
		Config:              datatypes.JSON(cfg),
	}, nil
}

func toBacktestSignalModels(resultID uint, signals []dto.Signal) []model.BacktestSignal {
	rows := make([]model.BacktestSignal, 0, len(signals))
	for _, s := range signals {
		row := model.BacktestSignal{
			BacktestResultID: resultID,
			SignalID:         s.ID,
			Timestamp:        s.Timestamp,
			Symbol:           s.Symbol,
			Direction:        string(s.Direction),
			Strategy:         s.Strategy,
			EntryPrice:       s.EntryPrice,
			StopLoss:         s.StopLoss,
			Target1:          s.Target1,
			Target2:          s.Target2,
			RiskReward1:      s.RiskReward1,
			RiskReward2:      s.RiskReward2,
			Leverage:         s.Leverage,
			RiskPercent:      s.RiskPercent,
		}
		if s.Exit != nil {
			row.ExitPrice = sql.NullFloat64{Float64: s.Exit.Price, Valid: true}
			row.ExitTime = sql.NullTime{Time: s.Exit.Time, Valid: true}
			row.ExitReason = sql.NullString{String: string(s.Exit.Reason), Valid: true}
			row.ProfitLoss = sql.NullFloat64{Float64: s.Exit.ProfitLoss, Valid: true}
		}
		rows = append(rows, row)
	}
	return rows
}

func toBacktestResultDTO(row *model.BacktestResult) (*dto.BacktestResult, error) {
	result := &dto.BacktestResult{
		ID:             row.ID,
		Exchange:       row.Exchange,
		Symbol:         row.Symbol,
		Timeframe:      row.Timeframe,
		Days:           row.Days,
		StartDate:      row.StartDate,
		EndDate:        row.EndDate,
		TotalBars:      row.TotalBars,
		TotalSignals:   row.TotalSignals,
		WinningSignals: row.WinningSignals,
		LosingSignals:  row.LosingSignals,
		WinRate:        row.WinRate,
		AvgProfit:      row.AvgProfit,
		MaxDrawdown:    row.MaxDrawdown,
		ProfitFactor:   row.ProfitFactor,
		CreatedAt:      row.CreatedAt,
	}

	if len(row.StrategyPerformance) > 0 {
		if err := json.Unmarshal(row.StrategyPerformance, &result.StrategyPerformance); err != nil {
			return nil, fmt.Errorf("unmarshal strategy performance of result %d: %w", row.ID, err)
		}
	}
	if len(row.Config) > 0 {
		if err := json.Unmarshal(row.Config, &result.Config); err != nil {
			return nil, fmt.Errorf("unmarshal signal config of result %d: %w", row.ID, err)
		}
	}

	for _, s := range row.Signals {
		signal := dto.Signal{
			ID:          s.SignalID,
			Timestamp:   s.Timestamp,
			Symbol:      s.Symbol,
			Direction:   dto.Direction(s.Direction),
			Strategy:    s.Strategy,
			EntryPrice:  s.EntryPrice,
			StopLoss:    s.StopLoss,
			Target1:     s.Target1,
			Target2:     s.Target2,
			RiskReward1: s.RiskReward1,
			RiskReward2: s.RiskReward2,
			Leverage:    s.Leverage,
			RiskPercent: s.RiskPercent,
		}
		if s.ExitReason.Valid {
			signal.Exit = &dto.TradeExit{
				Price:      s.ExitPrice.Float64,
				Time:       s.ExitTime.Time,
				ProfitLoss: s.ProfitLoss.Float64,
				Reason:     dto.ExitReason(s.ExitReason.String),
			}
		}
		result.Signals = append(result.Signals, signal)
	}
	return result, nil
}

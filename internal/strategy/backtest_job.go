package strategy

import (
	"context"
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/pkg/logger"
	"encoding/json"
	"fmt"
)

// BatchRunner runs many backtests at once. Nil entries in the result are unavailable runs.
type BatchRunner interface {
	RunBatch(ctx context.Context, reqs []dto.BacktestRequest) ([]*dto.BacktestResult, error)
}

type BacktestJobPayload struct {
	Exchange  string            `json:"exchange"`
	Symbols   []string          `json:"symbols"`
	Timeframe string            `json:"timeframe"`
	Days      int               `json:"days"`
	Save      *bool             `json:"save"`
	Notify    bool              `json:"notify"`
	Config    *dto.SignalConfig `json:"config"`
}

type BacktestJobSummary struct {
	Symbol       string  `json:"symbol"`
	Available    bool    `json:"available"`
	TotalSignals int     `json:"total_signals,omitempty"`
	WinRate      float64 `json:"win_rate,omitempty"`
	ProfitFactor float64 `json:"profit_factor,omitempty"`
	ResultID     uint    `json:"result_id,omitempty"`
}

type BacktestJobStrategy struct {
	cfg    *config.Config
	log    *logger.Logger
	runner BatchRunner
}

func NewBacktestJobStrategy(cfg *config.Config, log *logger.Logger, runner BatchRunner) *BacktestJobStrategy {
	return &BacktestJobStrategy{
		cfg:    cfg,
		log:    log,
		runner: runner,
	}
}

// Execute backtests every symbol in the payload, falling back to backtest.symbols.
// Results are saved unless the payload sets save to false.
func (s *BacktestJobStrategy) Execute(ctx context.Context, job Job) (JobResult, error) {
	var payload BacktestJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		s.log.ErrorContext(ctx, "Failed to unmarshal job payload", logger.ErrorField(err), logger.StringField("job_name", job.Name))
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to unmarshal job payload: %v", err)}, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}

	symbols := payload.Symbols
	if len(symbols) == 0 {
		symbols = s.cfg.Backtest.Symbols
	}
	if len(symbols) == 0 {
		s.log.InfoContext(ctx, "No symbols to backtest", logger.StringField("job_name", job.Name))
		return JobResult{ExitCode: JOB_EXIT_CODE_SKIPPED, Output: "no symbols configured"}, nil
	}

	save := payload.Save == nil || *payload.Save
	reqs := make([]dto.BacktestRequest, 0, len(symbols))
	for _, symbol := range symbols {
		req := dto.BacktestRequest{
			Exchange:  payload.Exchange,
			Symbol:    symbol,
			Timeframe: payload.Timeframe,
			Days:      payload.Days,
			Save:      save,
			Notify:    payload.Notify,
		}
		if payload.Config != nil {
			req.Config = *payload.Config
			req.Config.Symbol = ""
		}
		reqs = append(reqs, req)
	}

	results, err := s.runner.RunBatch(ctx, reqs)
	if err != nil {
		s.log.ErrorContext(ctx, "Backtest batch failed", logger.ErrorField(err), logger.StringField("job_name", job.Name))
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: err.Error()}, err
	}

	summaries := make([]BacktestJobSummary, 0, len(results))
	available := 0
	for i, result := range results {
		summary := BacktestJobSummary{Symbol: reqs[i].Symbol}
		if result != nil {
			available++
			summary.Available = true
			summary.TotalSignals = result.TotalSignals
			summary.WinRate = result.WinRate
			summary.ProfitFactor = result.ProfitFactor
			summary.ResultID = result.ID
		}
		summaries = append(summaries, summary)
	}

	output, err := json.Marshal(summaries)
	if err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to marshal output message: %v", err)}, fmt.Errorf("failed to marshal output message: %w", err)
	}

	exitCode := int32(JOB_EXIT_CODE_SUCCESS)
	switch {
	case available == 0:
		exitCode = JOB_EXIT_CODE_FAILED
	case available < len(results):
		exitCode = JOB_EXIT_CODE_PARTIAL_SUCCESS
	}

	s.log.InfoContext(ctx, "Backtest job finished",
		logger.StringField("job_name", job.Name),
		logger.IntField("symbols", len(reqs)),
		logger.IntField("available", available))

	return JobResult{ExitCode: exitCode, Output: string(output)}, nil
}

func (s *BacktestJobStrategy) GetType() JobType {
	return JobTypeBacktest
}

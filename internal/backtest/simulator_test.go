package backtest

import (
	"crypto-signal-backtest/internal/dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func bar(hour int, open, high, low, close float64) dto.Bar {
	return dto.Bar{
		Timestamp: t0.Add(time.Duration(hour) * time.Hour),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    1,
	}
}

func longSignal() dto.Signal {
	return dto.Signal{
		ID:         "long",
		Timestamp:  t0,
		Symbol:     "BTC/USDT",
		Direction:  dto.DirectionLong,
		Strategy:   dto.StrategyMACDBullish,
		EntryPrice: 100,
		StopLoss:   95,
		Target1:    110,
		Target2:    120,
	}
}

func shortSignal() dto.Signal {
	return dto.Signal{
		ID:         "short",
		Timestamp:  t0,
		Symbol:     "BTC/USDT",
		Direction:  dto.DirectionShort,
		Strategy:   dto.StrategyRSIOverbought,
		EntryPrice: 100,
		StopLoss:   105,
		Target1:    90,
		Target2:    80,
	}
}

func TestSimulate(t *testing.T) {
	tests := []struct {
		name       string
		signal     dto.Signal
		future     []dto.Bar
		wantReason dto.ExitReason
		wantPrice  float64
		wantPL     float64
		wantTime   time.Time
	}{
		{
			name:   "long reaches target 1 on second bar",
			signal: longSignal(),
			future: []dto.Bar{
				bar(1, 100, 105, 98, 104),
				bar(2, 104, 112, 101, 111),
			},
			wantReason: dto.ExitReasonTarget1,
			wantPrice:  110,
			wantPL:     10,
			wantTime:   t0.Add(2 * time.Hour),
		},
		{
			name:       "long stop wins when the same bar spans stop and targets",
			signal:     longSignal(),
			future:     []dto.Bar{bar(1, 100, 125, 94, 120)},
			wantReason: dto.ExitReasonStopLoss,
			wantPrice:  95,
			wantPL:     -5,
			wantTime:   t0.Add(time.Hour),
		},
		{
			name:       "short reaches target 1",
			signal:     shortSignal(),
			future:     []dto.Bar{bar(1, 100, 101, 85, 86)},
			wantReason: dto.ExitReasonTarget1,
			wantPrice:  90,
			wantPL:     10,
			wantTime:   t0.Add(time.Hour),
		},
		{
			name:       "short stopped out",
			signal:     shortSignal(),
			future:     []dto.Bar{bar(1, 100, 106, 99, 104)},
			wantReason: dto.ExitReasonStopLoss,
			wantPrice:  105,
			wantPL:     -5,
			wantTime:   t0.Add(time.Hour),
		},
		{
			name: "target 2 checked after target 1",
			signal: func() dto.Signal {
				s := longSignal()
				s.Target1 = 200
				return s
			}(),
			future:     []dto.Bar{bar(1, 100, 121, 99, 118)},
			wantReason: dto.ExitReasonTarget2,
			wantPrice:  120,
			wantPL:     20,
			wantTime:   t0.Add(time.Hour),
		},
		{
			name:   "no hit closes at the last bar",
			signal: longSignal(),
			future: []dto.Bar{
				bar(1, 100, 104, 97, 102),
				bar(2, 102, 106, 99, 103),
			},
			wantReason: dto.ExitReasonEndOfData,
			wantPrice:  103,
			wantPL:     3,
			wantTime:   t0.Add(2 * time.Hour),
		},
		{
			name:       "no future bars closes flat at the anchor",
			signal:     longSignal(),
			future:     nil,
			wantReason: dto.ExitReasonEndOfData,
			wantPrice:  100,
			wantPL:     0,
			wantTime:   t0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simulate(tt.signal, tt.future)
			require.True(t, got.IsTerminal())
			assert.Equal(t, tt.wantReason, got.Exit.Reason)
			assert.Equal(t, tt.wantPrice, got.Exit.Price)
			assert.InDelta(t, tt.wantPL, got.Exit.ProfitLoss, 1e-9)
			assert.Equal(t, tt.wantTime, got.Exit.Time)
			assert.False(t, tt.signal.IsTerminal(), "input signal must not be modified")
		})
	}
}

func TestSimulate_TerminalSignalUnchanged(t *testing.T) {
	s := longSignal()
	s.Exit = &dto.TradeExit{Price: 97, Time: t0, ProfitLoss: -3, Reason: dto.ExitReasonEndOfData}

	got := Simulate(s, []dto.Bar{bar(1, 100, 130, 90, 125)})
	assert.Equal(t, s, got)
}

func TestSimulate_ProfitSignFollowsDirection(t *testing.T) {
	future := []dto.Bar{bar(1, 100, 104, 97, 102)}

	long := Simulate(longSignal(), future)
	short := Simulate(shortSignal(), future)

	assert.Greater(t, long.Exit.ProfitLoss, 0.0)
	assert.Less(t, short.Exit.ProfitLoss, 0.0)
	assert.InDelta(t, -long.Exit.ProfitLoss, short.Exit.ProfitLoss, 1e-9)
}

func TestProfitLossPercent_ZeroEntry(t *testing.T) {
	assert.Equal(t, 0.0, ProfitLossPercent(dto.DirectionLong, 0, 50))
	assert.Equal(t, 0.0, ProfitLossPercent(dto.DirectionShort, 0, 50))
}

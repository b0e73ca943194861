package signal

import (
	"crypto-signal-backtest/internal/dto"
	"sort"
)

// ConflictFilter drops the minority side when a symbol has both long and short
// proposals. On an even split only the proposal with the best second target
// risk/reward survives.
type ConflictFilter struct{}

func NewConflictFilter() *ConflictFilter {
	return &ConflictFilter{}
}

func (f *ConflictFilter) Resolve(signals []dto.Signal) []dto.Signal {
	if len(signals) == 0 {
		return nil
	}

	var order []string
	bySymbol := make(map[string][]dto.Signal)
	for _, s := range signals {
		if _, ok := bySymbol[s.Symbol]; !ok {
			order = append(order, s.Symbol)
		}
		bySymbol[s.Symbol] = append(bySymbol[s.Symbol], s)
	}

	filtered := make([]dto.Signal, 0, len(signals))
	for _, symbol := range order {
		filtered = append(filtered, resolveSymbol(bySymbol[symbol])...)
	}
	return filtered
}

func resolveSymbol(group []dto.Signal) []dto.Signal {
	var longs, shorts []dto.Signal
	for _, s := range group {
		switch s.Direction {
		case dto.DirectionLong:
			longs = append(longs, s)
		case dto.DirectionShort:
			shorts = append(shorts, s)
		}
	}

	switch {
	case len(longs) == 0 || len(shorts) == 0:
		return group
	case len(longs) > len(shorts):
		return longs
	case len(shorts) > len(longs):
		return shorts
	}

	best := make([]dto.Signal, len(group))
	copy(best, group)
	sort.SliceStable(best, func(i, j int) bool { return best[i].RiskReward2 > best[j].RiskReward2 })
	return best[:1]
}

package dto

// SignalConfig carries indicator toggles and trade sizing parameters. Toggles are
// pointers so that an omitted field means "enabled" while an explicit false is kept.
type SignalConfig struct {
	Symbol string `json:"symbol" mapstructure:"symbol"`

	UseMACD    *bool `json:"use_macd" mapstructure:"use_macd" default:"true"`
	MACDFast   int   `json:"macd_fast" mapstructure:"macd_fast" default:"12" validate:"gte=1"`
	MACDSlow   int   `json:"macd_slow" mapstructure:"macd_slow" default:"26" validate:"gtfield=MACDFast"`
	MACDSignal int   `json:"macd_signal" mapstructure:"macd_signal" default:"9" validate:"gte=1"`

	UseRSI        *bool   `json:"use_rsi" mapstructure:"use_rsi" default:"true"`
	RSIPeriod     int     `json:"rsi_period" mapstructure:"rsi_period" default:"14" validate:"gte=2"`
	RSIOverbought float64 `json:"rsi_overbought" mapstructure:"rsi_overbought" default:"70" validate:"gt=0,lte=100"`
	RSIOversold   float64 `json:"rsi_oversold" mapstructure:"rsi_oversold" default:"30" validate:"gte=0,ltfield=RSIOverbought"`

	UseATR        *bool   `json:"use_atr" mapstructure:"use_atr" default:"true"`
	ATRPeriod     int     `json:"atr_period" mapstructure:"atr_period" default:"14" validate:"gte=1"`
	ATRMultiplier float64 `json:"atr_multiplier" mapstructure:"atr_multiplier" default:"2.0" validate:"gt=0"`

	UseCandlestickPatterns *bool `json:"use_candlestick_patterns" mapstructure:"use_candlestick_patterns" default:"true"`
	UseHarmonicPatterns    *bool `json:"use_harmonic_patterns" mapstructure:"use_harmonic_patterns" default:"true"`
	UsePriceAction         *bool `json:"use_price_action" mapstructure:"use_price_action" default:"true"`
	UseCombinedStrategies  *bool `json:"use_combined_strategies" mapstructure:"use_combined_strategies" default:"false"`

	TP1Factor       float64 `json:"tp1_factor" mapstructure:"tp1_factor" default:"1.5" validate:"gt=0"`
	TP2Factor       float64 `json:"tp2_factor" mapstructure:"tp2_factor" default:"3.0" validate:"gtfield=TP1Factor"`
	DefaultLeverage int     `json:"default_leverage" mapstructure:"default_leverage" default:"5" validate:"gte=1"`
	RiskPercent     float64 `json:"risk_percent" mapstructure:"risk_percent" default:"1.0" validate:"gt=0"`
}

func enabled(flag *bool) bool {
	return flag == nil || *flag
}

func (c SignalConfig) MACDEnabled() bool        { return enabled(c.UseMACD) }
func (c SignalConfig) RSIEnabled() bool         { return enabled(c.UseRSI) }
func (c SignalConfig) ATREnabled() bool         { return enabled(c.UseATR) }
func (c SignalConfig) CandlestickEnabled() bool { return enabled(c.UseCandlestickPatterns) }
func (c SignalConfig) HarmonicEnabled() bool    { return enabled(c.UseHarmonicPatterns) }
func (c SignalConfig) PriceActionEnabled() bool { return enabled(c.UsePriceAction) }

// CombinedEnabled is opt-in, unlike the single-source toggles.
func (c SignalConfig) CombinedEnabled() bool {
	return c.UseCombinedStrategies != nil && *c.UseCombinedStrategies
}

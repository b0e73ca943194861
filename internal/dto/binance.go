package dto

import "time"

// Kline is one row of the Binance /api/v3/klines array response.
// Times are unix milliseconds.
type Kline struct {
	OpenTime    int64
	CloseTime   int64
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	QuoteVolume float64
	Trades      int64
	TakerBase   float64
	TakerQuote  float64
}

// Bar drops the exchange-specific columns.
func (k Kline) Bar() Bar {
	return Bar{
		Timestamp: time.UnixMilli(k.OpenTime).UTC(),
		Open:      k.Open,
		High:      k.High,
		Low:       k.Low,
		Close:     k.Close,
		Volume:    k.Volume,
	}
}

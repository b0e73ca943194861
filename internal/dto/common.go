package dto

import "strings"

// Pair splits a symbol such as "BTC/USDT" into base and quote. A symbol without a
// separator is returned as base with an empty quote.
func Pair(symbol string) (base, quote string) {
	parts := strings.SplitN(strings.ToUpper(strings.TrimSpace(symbol)), "/", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// BinanceSymbol converts "BTC/USDT" to "BTCUSDT".
func BinanceSymbol(symbol string) string {
	base, quote := Pair(symbol)
	return base + quote
}

// YahooSymbol converts "BTC/USDT" to "BTC-USD". Stablecoin quotes map to USD.
func YahooSymbol(symbol string) string {
	base, quote := Pair(symbol)
	switch quote {
	case "":
		return base
	case "USDT", "USDC", "BUSD":
		quote = "USD"
	}
	return base + "-" + quote
}

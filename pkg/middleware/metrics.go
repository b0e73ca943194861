package middleware

import (
	"crypto-signal-backtest/pkg/metrics"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Metrics records request count and latency keyed by the matched route template.
func Metrics(recorder *metrics.Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			recorder.RecordHTTP(route, c.Request().Method, strconv.Itoa(c.Response().Status), time.Since(start))
			return nil
		}
	}
}

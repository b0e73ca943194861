package http

import (
	"crypto-signal-backtest/internal/service"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/metrics"

	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	echo     *echo.Echo
	log      *logger.Logger
	service  *service.Service
	recorder *metrics.Recorder
}

func NewHttpAPIHandler(echo *echo.Echo, log *logger.Logger, service *service.Service, recorder *metrics.Recorder) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:     echo,
		log:      log,
		service:  service,
		recorder: recorder,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.GET("/metrics", echo.WrapHandler(h.recorder.Handler()))

	base := h.echo.Group("/api")
	h.SetupJobs(base)
	h.SetupBacktest(base)
}

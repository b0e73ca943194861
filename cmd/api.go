package cmd

import (
	"context"
	"crypto-signal-backtest/internal/delivery/http"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/middleware"
	"fmt"
	"time"

	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Per client IP, the backtest endpoint is CPU heavy.
const (
	apiRequestsPerSecond = 5
	apiBurst             = 20
)

type HTTPServer struct {
	ctx     context.Context
	appDep  *AppDependency
	handler *http.HttpAPIHandler
}

func NewHTTPServer(ctx context.Context, appDep *AppDependency, handler *http.HttpAPIHandler) *HTTPServer {
	return &HTTPServer{
		ctx:     ctx,
		appDep:  appDep,
		handler: handler,
	}
}

func (s *HTTPServer) Start() error {
	s.appDep.log.Info("Starting HTTP server", logger.IntField("port", s.appDep.cfg.API.Port))
	address := fmt.Sprintf(":%d", s.appDep.cfg.API.Port)

	e := s.appDep.echo
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.Metrics(s.appDep.recorder))
	e.Use(middleware.NewRateLimiterMiddleware(apiRequestsPerSecond, apiBurst))
	s.handler.SetupRoutes()

	return e.Start(address)
}

func (s *HTTPServer) Stop() error {
	s.appDep.log.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), 10*time.Second)
	defer cancel()

	if err := s.appDep.echo.Shutdown(ctx); err != nil {
		s.appDep.log.Error("Error when stopping HTTP server", logger.ErrorField(err))
		return err
	}
	s.appDep.log.Info("HTTP server stopped successfully")
	return nil
}

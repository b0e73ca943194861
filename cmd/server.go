package cmd

import (
	"context"
	"crypto-signal-backtest/internal/delivery/http"
	"crypto-signal-backtest/internal/delivery/telegram"
	"crypto-signal-backtest/pkg/logger"
	"errors"
	"fmt"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the HTTP API, the telegram bot and the job scheduler",
	RunE:  Start,
}

func Start(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return fmt.Errorf("failed to create app dependency: %w", err)
	}
	defer func() {
		if err := appDep.Close(); err != nil {
			appDep.log.Error("Failed to close app dependency", logger.ErrorField(err))
		}
	}()

	services := appDep.Services()

	apiServer := NewHTTPServer(ctx, appDep, http.NewHttpAPIHandler(appDep.echo, appDep.log, services, appDep.recorder))
	serverErr := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, httpNet.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var telegramHandler *telegram.TelegramBotHandler
	if appDep.telegramBot != nil {
		telegramHandler = telegram.NewTelegramBotHandler(ctx, appDep.cfg, appDep.log, appDep.telegramBot, appDep.telegram, services)
		telegramHandler.Start()
	} else {
		appDep.log.Info("Telegram bot is disabled")
	}

	if appDep.cfg.Scheduler.Enabled {
		if err := services.SchedulerService.Start(ctx); err != nil {
			stop()
			_ = apiServer.Stop()
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	} else {
		appDep.log.Info("Scheduler is disabled")
	}

	select {
	case <-ctx.Done():
		appDep.log.Info("Shutting down gracefully...")
	case err = <-serverErr:
		appDep.log.Error("HTTP server failed", logger.ErrorField(err))
	}

	services.SchedulerService.Stop()
	if telegramHandler != nil {
		telegramHandler.Stop()
	}
	if stopErr := apiServer.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}

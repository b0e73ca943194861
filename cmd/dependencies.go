package cmd

import (
	"context"
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/internal/backtest"
	"crypto-signal-backtest/internal/contract"
	"crypto-signal-backtest/internal/indicator"
	"crypto-signal-backtest/internal/pattern"
	"crypto-signal-backtest/internal/repository"
	"crypto-signal-backtest/internal/service"
	"crypto-signal-backtest/internal/signal"
	"crypto-signal-backtest/pkg/cache"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/metrics"
	"crypto-signal-backtest/pkg/postgres"
	"crypto-signal-backtest/pkg/telegram"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/telebot.v3"
	"gorm.io/gorm"
)

type AppDependency struct {
	db          *postgres.DB
	cfg         *config.Config
	log         *logger.Logger
	echo        *echo.Echo
	cache       cache.Cache
	recorder    *metrics.Recorder
	engine      *backtest.Engine
	telegram    *telegram.Sender
	telegramBot *telebot.Bot
}

type dependencyOptions struct {
	withDB       bool
	withTelegram bool
}

type DependencyOption func(*dependencyOptions)

// WithoutDB skips the database connection, for commands that never persist.
func WithoutDB() DependencyOption {
	return func(o *dependencyOptions) { o.withDB = false }
}

// WithoutTelegram skips creating the bot even when it is enabled in config.
func WithoutTelegram() DependencyOption {
	return func(o *dependencyOptions) { o.withTelegram = false }
}

func NewAppDependency(ctx context.Context, opts ...DependencyOption) (*AppDependency, error) {
	options := dependencyOptions{withDB: true, withTelegram: true}
	for _, opt := range opts {
		opt(&options)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	dep := &AppDependency{
		cfg:      cfg,
		log:      log,
		echo:     echo.New(),
		cache:    cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		recorder: metrics.New(),
	}

	if options.withTelegram && cfg.Telegram.Enabled {
		pref := telebot.Settings{
			Token:  cfg.Telegram.BotToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				log.Error("Telegram bot error", zap.Error(err))
			},
		}
		bot, err := telebot.NewBot(pref)
		if err != nil {
			log.Error("Failed to create telegram bot", zap.Error(err))
			return nil, err
		}
		dep.telegramBot = bot
		dep.telegram = telegram.NewSender(bot, cfg.Telegram, log)
		dep.log = log.WithAlert(dep.telegram, zapcore.ErrorLevel)
	}

	if options.withDB {
		db, err := postgres.NewDB(cfg.DB, dep.log)
		if err != nil {
			dep.log.Error("Failed to connect to database", zap.Error(err))
			return nil, err
		}
		dep.db = db
	}

	dep.engine = newEngine(dep.log)
	return dep, nil
}

func newEngine(log *logger.Logger) *backtest.Engine {
	annotator := indicator.NewAnnotator(pattern.NewCandlestick(), pattern.NewHarmonic(), pattern.NewPriceAction())
	generator := signal.NewGenerator(signal.NewBuilder())
	return backtest.NewEngine(log, annotator, generator, signal.NewConflictFilter())
}

// notifier returns nil unless a telegram sender exists, so the service skips notifying.
func (d *AppDependency) notifier() contract.Notifier {
	if d.telegram == nil {
		return nil
	}
	return d.telegram
}

// Services builds the repository and service layers on top of the dependencies.
func (d *AppDependency) Services() *service.Service {
	var db *gorm.DB
	if d.db != nil {
		db = d.db.DB
	}
	repo := repository.NewRepository(d.cfg, db, d.log, d.cache, d.recorder)
	return service.NewService(d.cfg, d.log, repo, d.engine, d.notifier(), d.recorder)
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	_ = d.log.Sync()
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

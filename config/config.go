package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log          Logger         `mapstructure:"logger"`
	DB           Database       `mapstructure:"database"`
	API          API            `mapstructure:"api"`
	Binance      Exchange       `mapstructure:"binance"`
	YahooFinance Exchange       `mapstructure:"yahoo_finance"`
	Market       Market         `mapstructure:"market"`
	Scheduler    Scheduler      `mapstructure:"scheduler"`
	Cache        Cache          `mapstructure:"cache"`
	Telegram     TelegramConfig `mapstructure:"telegram"`
	Backtest     Backtest       `mapstructure:"backtest"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type Exchange struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	PageLimit           int           `mapstructure:"page_limit"`
}

// Market controls where candles come from and in which order exchanges are tried.
type Market struct {
	DefaultExchange   string   `mapstructure:"default_exchange"`
	FallbackExchanges []string `mapstructure:"fallback_exchanges"`
}

type Scheduler struct {
	Enabled        bool           `mapstructure:"enabled"`
	MaxConcurrency int            `mapstructure:"max_concurrency"`
	Jobs           []ScheduledJob `mapstructure:"jobs"`
}

type ScheduledJob struct {
	Name           string                 `mapstructure:"name"`
	Type           string                 `mapstructure:"type"`
	CronExpression string                 `mapstructure:"cron"`
	Timeout        time.Duration          `mapstructure:"timeout"`
	Payload        map[string]interface{} `mapstructure:"payload"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type TelegramConfig struct {
	Enabled                   bool          `mapstructure:"enabled"`
	BotToken                  string        `mapstructure:"bot_token"`
	ChatID                    int64         `mapstructure:"chat_id"`
	TimeoutDuration           time.Duration `mapstructure:"timeout_duration"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second"`
}

// Backtest holds defaults applied when a request leaves a field empty.
type Backtest struct {
	Exchange       string        `mapstructure:"exchange"`
	Symbols        []string      `mapstructure:"symbols"`
	Timeframe      string        `mapstructure:"timeframe"`
	Days           int           `mapstructure:"days"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded:", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("api.port", 8080)

	v.SetDefault("binance.base_url", "https://api.binance.com")
	v.SetDefault("binance.timeout", 15*time.Second)
	v.SetDefault("binance.max_request_per_minute", 600)
	v.SetDefault("binance.page_limit", 1000)

	v.SetDefault("yahoo_finance.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("yahoo_finance.timeout", 15*time.Second)
	v.SetDefault("yahoo_finance.max_request_per_minute", 60)

	v.SetDefault("market.default_exchange", "BINANCE")
	v.SetDefault("market.fallback_exchanges", []string{"YAHOO"})

	v.SetDefault("cache.default_expiration", 5*time.Minute)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)

	v.SetDefault("scheduler.max_concurrency", 2)

	v.SetDefault("telegram.timeout_duration", 10*time.Second)
	v.SetDefault("telegram.max_global_request_per_second", 30)

	v.SetDefault("backtest.exchange", "BINANCE")
	v.SetDefault("backtest.symbols", []string{"BTC/USDT"})
	v.SetDefault("backtest.timeframe", "1h")
	v.SetDefault("backtest.days", 30)
	v.SetDefault("backtest.max_concurrency", 4)
	v.SetDefault("backtest.timeout", 2*time.Minute)
}

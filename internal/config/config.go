// Package config loads service settings from built-in defaults, config.yaml and
// YNVEST_* environment variables, later sources overriding earlier ones.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Users     UsersConfig     `mapstructure:"users"`
	Auctions  AuctionsConfig  `mapstructure:"auctions"`
	Loyalty   LoyaltyConfig   `mapstructure:"loyalty"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Retry     RetryConfig     `mapstructure:"retry"`
	YouTube   YouTubeConfig   `mapstructure:"youtube"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig selects the store: memory, sqlite or postgres
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type UsersConfig struct {
	InitialCash int64 `mapstructure:"initial_cash"`
}

// IntRange is an inclusive [min, max] interval
type IntRange struct {
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

type AuctionsConfig struct {
	MaxActive     int      `mapstructure:"max_active"`
	StartingPrice IntRange `mapstructure:"starting_price"`
	WindowMinutes IntRange `mapstructure:"window_minutes"`
	RentalDays    IntRange `mapstructure:"rental_days"`
	RentalHours   IntRange `mapstructure:"rental_hours"`
}

type LoyaltyConfig struct {
	MaxLevel     int   `mapstructure:"max_level"`
	CashBase     int64 `mapstructure:"cash_base"`
	IntervalBase int   `mapstructure:"interval_base"`
}

// SchedulerConfig holds task intervals. A zero interval disables the task.
type SchedulerConfig struct {
	CloseAuctions    time.Duration `mapstructure:"close_auctions"`
	GenerateAuction  time.Duration `mapstructure:"generate_auction"`
	SettleRents      time.Duration `mapstructure:"settle_rents"`
	PayoutLoyalty    time.Duration `mapstructure:"payout_loyalty"`
	RefreshStatistic time.Duration `mapstructure:"refresh_statistics"`
}

type RetryConfig struct {
	Attempts  uint64        `mapstructure:"attempts"`
	BaseDelay time.Duration `mapstructure:"base_delay"`
}

type YouTubeConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Endpoint    string        `mapstructure:"endpoint"`
	BatchSize   int           `mapstructure:"batch_size"`
	MinInterval time.Duration `mapstructure:"min_interval"`
}

// SeedConfig lists youtube video ids registered at startup when missing
type SeedConfig struct {
	Videos []string `mapstructure:"videos"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")

	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.dsn", "ynvest.db")

	v.SetDefault("users.initial_cash", 1000)

	v.SetDefault("auctions.max_active", 10)
	v.SetDefault("auctions.starting_price.min", 200)
	v.SetDefault("auctions.starting_price.max", 500)
	v.SetDefault("auctions.window_minutes.min", 5)
	v.SetDefault("auctions.window_minutes.max", 30)
	v.SetDefault("auctions.rental_days.min", 0)
	v.SetDefault("auctions.rental_days.max", 7)
	v.SetDefault("auctions.rental_hours.min", 1)
	v.SetDefault("auctions.rental_hours.max", 24)

	v.SetDefault("loyalty.max_level", 6)
	v.SetDefault("loyalty.cash_base", 500)
	v.SetDefault("loyalty.interval_base", 30)

	v.SetDefault("scheduler.close_auctions", time.Second)
	v.SetDefault("scheduler.generate_auction", 30*time.Second)
	v.SetDefault("scheduler.settle_rents", time.Second)
	v.SetDefault("scheduler.payout_loyalty", 7*24*time.Hour)
	v.SetDefault("scheduler.refresh_statistics", 24*time.Hour)

	v.SetDefault("retry.attempts", 5)
	v.SetDefault("retry.base_delay", 20*time.Millisecond)

	v.SetDefault("youtube.api_key", "")
	v.SetDefault("youtube.endpoint", "")
	v.SetDefault("youtube.batch_size", 50)
	v.SetDefault("youtube.min_interval", 9*time.Second)

	v.SetDefault("seed.videos", []string{})
}

// Load reads configuration. An empty path searches config.yaml in . and ./config;
// a missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("YNVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	// PORT wins, as on most PaaS runtimes
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if !strings.HasPrefix(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engines cannot run with
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown database.driver %q", c.Database.Driver)
	}
	if c.Users.InitialCash < 0 {
		return fmt.Errorf("config: users.initial_cash must not be negative")
	}
	if c.Auctions.MaxActive < 0 {
		return fmt.Errorf("config: auctions.max_active must not be negative")
	}
	for name, r := range map[string]IntRange{
		"auctions.starting_price": c.Auctions.StartingPrice,
		"auctions.window_minutes": c.Auctions.WindowMinutes,
		"auctions.rental_days":    c.Auctions.RentalDays,
		"auctions.rental_hours":   c.Auctions.RentalHours,
	} {
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("config: %s must satisfy 0 <= min <= max, got [%d, %d]", name, r.Min, r.Max)
		}
	}
	if c.Auctions.StartingPrice.Min < 1 {
		return fmt.Errorf("config: auctions.starting_price.min must be positive")
	}
	if c.Loyalty.MaxLevel < 1 || c.Loyalty.IntervalBase < 1 {
		return fmt.Errorf("config: loyalty.max_level and loyalty.interval_base must be positive")
	}
	return nil
}

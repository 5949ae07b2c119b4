package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultAdminID is the hard-coded privileged user id. It may mint funds with
// `give` and zero other users' balances/holdings. Override via config or env.
const DefaultAdminID int64 = 753409302680699021

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		AdminID  int64  `yaml:"admin_id"`
	} `yaml:"telegram"`
	Market struct {
		Symbol        string `yaml:"symbol"`
		SeedPrice     string `yaml:"seed_price"`
		TickCron      string `yaml:"tick_cron"`
		Lookback      int    `yaml:"lookback"`
		HistoryPoints int    `yaml:"history_points"`
	} `yaml:"market"`
	Economy struct {
		WorkMin       int    `yaml:"work_min"`
		WorkMax       int    `yaml:"work_max"`
		CommandPrefix string `yaml:"command_prefix"`
	} `yaml:"economy"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	API struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"api"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("ADMIN_USER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.AdminID = id
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TICK_CRON"); v != "" {
		cfg.Market.TickCron = v
	}
	if v := os.Getenv("API_LISTEN_ADDR"); v != "" {
		cfg.API.ListenAddr = v
	}

	// Defaults
	if cfg.Telegram.AdminID == 0 {
		cfg.Telegram.AdminID = DefaultAdminID
	}
	if cfg.Market.Symbol == "" {
		cfg.Market.Symbol = "dogcoin"
	}
	if cfg.Market.SeedPrice == "" {
		cfg.Market.SeedPrice = "500.00"
	}
	if cfg.Market.TickCron == "" {
		cfg.Market.TickCron = "@every 1m"
	}
	if cfg.Market.Lookback == 0 {
		cfg.Market.Lookback = 40
	}
	if cfg.Market.HistoryPoints == 0 {
		cfg.Market.HistoryPoints = 30
	}
	if cfg.Economy.WorkMin == 0 {
		cfg.Economy.WorkMin = 1
	}
	if cfg.Economy.WorkMax == 0 {
		cfg.Economy.WorkMax = 10
	}
	if cfg.Economy.CommandPrefix == "" {
		cfg.Economy.CommandPrefix = "/"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/dogcoin.db"
	}
	if cfg.API.ListenAddr == "" {
		cfg.API.ListenAddr = ":8080"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Economy.WorkMin > c.Economy.WorkMax {
		return fmt.Errorf("economy.work_min must not exceed economy.work_max")
	}
	if c.Market.Lookback < 2 {
		return fmt.Errorf("market.lookback must be at least 2")
	}
	return nil
}

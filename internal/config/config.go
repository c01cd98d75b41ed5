// Package config provides configuration management for the trading console.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "trading-console/internal/errors"
	"trading-console/internal/market"
)

// Config holds all application configuration.
type Config struct {
	Market    MarketConfig    `mapstructure:"market"`
	Portfolio PortfolioConfig `mapstructure:"portfolio"`
	UI        UIConfig        `mapstructure:"ui"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Journal   JournalConfig   `mapstructure:"journal"`
}

// MarketConfig holds the instruments listed in the catalog.
type MarketConfig struct {
	Instruments []InstrumentConfig `mapstructure:"instruments"`
}

// InstrumentConfig is one catalog listing. Price is kept as text so it
// parses exactly into a decimal.
type InstrumentConfig struct {
	Symbol string `mapstructure:"symbol"`
	Name   string `mapstructure:"name"`
	Price  string `mapstructure:"price"`
}

// PortfolioConfig holds accounting policy.
type PortfolioConfig struct {
	RetainClosedPositions bool `mapstructure:"retain_closed_positions"`
	StrictValuation       bool `mapstructure:"strict_valuation"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`    // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// JournalConfig holds the optional SQLite trade journal configuration.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trading-console"
	}
	return filepath.Join(home, ".config", "trading-console")
}

// Default returns the configuration used when no config file exists.
func Default(configDir string) *Config {
	cfg := &Config{}
	v := viper.New()
	setDefaults(v, configDir)
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// A missing .env is fine.
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	cfg := &Config{}
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Config file not found, create template and run on defaults
		if err := createTemplateConfig(configDir, name); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper, configDir string) {
	listings := market.DefaultListings()
	instruments := make([]map[string]interface{}, 0, len(listings))
	for _, l := range listings {
		instruments = append(instruments, map[string]interface{}{
			"symbol": l.Symbol,
			"name":   l.Name,
			"price":  l.Price,
		})
	}
	v.SetDefault("market.instruments", instruments)

	v.SetDefault("portfolio.retain_closed_positions", true)
	v.SetDefault("portfolio.strict_valuation", false)

	v.SetDefault("ui.color_enabled", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "trader.log"))
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", filepath.Join(configDir, "journal.db"))
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRADER_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
		cfg.Journal.Enabled = true
	}
	if v := os.Getenv("TRADER_STRICT_VALUATION"); v != "" {
		if strict, err := strconv.ParseBool(v); err == nil {
			cfg.Portfolio.StrictValuation = strict
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "invalid log level: %q (must be debug, info, warn or error)", c.Logging.Level)
	}

	if len(c.Market.Instruments) == 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "market must list at least one instrument")
	}
	if _, err := market.NewCatalogFromListings(c.Listings()); err != nil {
		return fmt.Errorf("%w: market instruments: %v", apperrors.ErrConfigInvalid, err)
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "journal.path is required when the journal is enabled")
	}

	return nil
}

// Listings converts the configured instruments into catalog listings.
func (c *Config) Listings() []market.Listing {
	listings := make([]market.Listing, 0, len(c.Market.Instruments))
	for _, inst := range c.Market.Instruments {
		listings = append(listings, market.Listing{
			Symbol: inst.Symbol,
			Name:   inst.Name,
			Price:  inst.Price,
		})
	}
	return listings
}

// Catalog builds the market catalog from the configured instruments.
func (c *Config) Catalog() (*market.Catalog, error) {
	return market.NewCatalogFromListings(c.Listings())
}

// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Oracle   OracleConfig   `mapstructure:"oracle"`
	Casino   CasinoConfig   `mapstructure:"casino"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds the HTTP boundary configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// OracleConfig holds price oracle configuration.
type OracleConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	APIKey         string        `mapstructure:"api_key"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	EnableFallback bool          `mapstructure:"enable_fallback"`
}

// CasinoConfig holds platform-wide wagering limits and house edge.
// The house edge is a deployment parameter, never a hardcoded constant.
type CasinoConfig struct {
	MinBet      float64       `mapstructure:"min_bet"`
	MaxBet      float64       `mapstructure:"max_bet"`
	HouseEdge   float64       `mapstructure:"house_edge"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// LoggingConfig holds zerolog configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// MinBetDecimal returns the minimum bet as a decimal.
func (c *CasinoConfig) MinBetDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinBet)
}

// MaxBetDecimal returns the maximum bet as a decimal.
func (c *CasinoConfig) MaxBetDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxBet)
}

// HouseEdgeDecimal returns the house edge as a decimal fraction.
func (c *CasinoConfig) HouseEdgeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.HouseEdge)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. DATABASE_HOST, ORACLE_API_KEY, CASINO_HOUSE_EDGE.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Casino.HouseEdge < 0 || cfg.Casino.HouseEdge >= 1 {
		return nil, fmt.Errorf("house edge must be in [0, 1), got %v", cfg.Casino.HouseEdge)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "casino")
	v.SetDefault("database.name", "casino")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("oracle.api_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("oracle.cache_ttl", "60s")
	v.SetDefault("oracle.request_timeout", "10s")
	v.SetDefault("oracle.enable_fallback", true)

	v.SetDefault("casino.min_bet", 1.0)
	v.SetDefault("casino.max_bet", 10000.0)
	v.SetDefault("casino.house_edge", 0.02)
	v.SetDefault("casino.lock_timeout", "10s")

	v.SetDefault("logging.level", "info")
}

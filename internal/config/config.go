package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Backend identifiers accepted for storage.backend.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendTable  = "table"
)

// Config maps the whole application configuration.
type Config struct {
	Server struct {
		Port int `mapstructure:"port"`
		// BaseURL is used to build short URLs. When empty, the base is
		// derived from the Host of each incoming request.
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"server"`

	Storage struct {
		// Backend selects the storage variant: sqlite, file or table.
		Backend    string `mapstructure:"backend"`
		SQLiteName string `mapstructure:"sqlite_name"`
		FilePath   string `mapstructure:"file_path"`
		Table      struct {
			Endpoint string `mapstructure:"endpoint"`
			APIKey   string `mapstructure:"api_key"`
		} `mapstructure:"table"`
	} `mapstructure:"storage"`

	Analytics struct {
		BufferSize  int `mapstructure:"buffer_size"`
		WorkerCount int `mapstructure:"worker_count"`
	} `mapstructure:"analytics"`

	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"`
	} `mapstructure:"monitor"`

	Auth struct {
		// JWTSecret verifies bearer tokens issued by the external auth
		// service. Empty means every caller is anonymous.
		JWTSecret string `mapstructure:"jwt_secret"`
	} `mapstructure:"auth"`
}

// LoadConfig loads the application configuration using Viper.
// Values come from ./configs/config.yaml, overridable through environment
// variables (server.base_url -> SERVER_BASE_URL), with defaults as fallback.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "")
	viper.SetDefault("storage.backend", BackendSQLite)
	viper.SetDefault("storage.sqlite_name", "shorty.db")
	viper.SetDefault("storage.file_path", "shorty_links.json")
	viper.SetDefault("storage.table.endpoint", "")
	viper.SetDefault("storage.table.api_key", "")
	viper.SetDefault("analytics.buffer_size", 1000)
	viper.SetDefault("analytics.worker_count", 5)
	viper.SetDefault("monitor.interval_minutes", 5)
	viper.SetDefault("auth.jwt_secret", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using default values")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	switch cfg.Storage.Backend {
	case BackendSQLite, BackendFile, BackendTable:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	log.Printf("Configuration loaded: Port=%d, Backend=%s, Analytics Buffer=%d, Monitor Interval=%dmin",
		cfg.Server.Port, cfg.Storage.Backend, cfg.Analytics.BufferSize, cfg.Monitor.IntervalMinutes)

	return &cfg, nil
}

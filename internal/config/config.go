package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type ControllerConfig struct {
	ServerAddr     string
	DatabasePath   string
	AdminUsername  string
	AdminPassword  string
	ReaderUsername string
	ReaderPassword string
	// InitialTelegrafSystemInterval and InitialHostPageDisabled seed an empty database.
	InitialTelegrafSystemInterval string
	InitialHostPageDisabled       bool
	HistoryLimit                  int
	Redis                         *RedisConfig
}

type AgentConfig struct {
	ControllerURL  string
	AgentAddr      string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	Username       string
	Password       string
	// Initial fetch retry configuration
	FetchMaxRetries        int
	FetchInitialBackoff    time.Duration
	FetchMaxBackoff        time.Duration
	FetchBackoffMultiplier float64
	Redis                  *RedisConfig
}

// newViper reads environment variables and, when CONFIG_FILE is set, a
// config file whose keys use the same names. Environment wins over the file.
func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	return v, nil
}

// LoadControllerConfig reads controller config from environment or returns defaults
func LoadControllerConfig() (*ControllerConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	v.SetDefault("CONTROLLER_ADDR", ":8080")
	v.SetDefault("DATABASE_PATH", "./data/env.db")
	v.SetDefault("ADMIN_USER", "admin")
	v.SetDefault("ADMIN_PASSWORD", "password")
	v.SetDefault("READER_USER", "reader")
	v.SetDefault("READER_PASSWORD", "readerpass")
	v.SetDefault("INITIAL_TELEGRAF_SYSTEM_INTERVAL", "1m")
	v.SetDefault("INITIAL_HOST_PAGE_DISABLED", false)
	v.SetDefault("HISTORY_LIMIT", 20)

	historyLimit := v.GetInt("HISTORY_LIMIT")
	if historyLimit <= 0 {
		return nil, fmt.Errorf("HISTORY_LIMIT must be positive, got %d", historyLimit)
	}

	return &ControllerConfig{
		ServerAddr:                    v.GetString("CONTROLLER_ADDR"),
		DatabasePath:                  v.GetString("DATABASE_PATH"),
		AdminUsername:                 v.GetString("ADMIN_USER"),
		AdminPassword:                 v.GetString("ADMIN_PASSWORD"),
		ReaderUsername:                v.GetString("READER_USER"),
		ReaderPassword:                v.GetString("READER_PASSWORD"),
		InitialTelegrafSystemInterval: v.GetString("INITIAL_TELEGRAF_SYSTEM_INTERVAL"),
		InitialHostPageDisabled:       v.GetBool("INITIAL_HOST_PAGE_DISABLED"),
		HistoryLimit:                  historyLimit,
		Redis:                         loadRedis(v),
	}, nil
}

// LoadAgentConfig reads agent config from environment or returns defaults
func LoadAgentConfig() (*AgentConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	v.SetDefault("CONTROLLER_URL", "http://localhost:8080")
	v.SetDefault("AGENT_ADDR", ":8081")
	v.SetDefault("POLL_INTERVAL", "1m")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("READER_USER", "reader")
	v.SetDefault("READER_PASSWORD", "readerpass")
	v.SetDefault("FETCH_MAX_RETRIES", 5)
	v.SetDefault("FETCH_INITIAL_BACKOFF", "1s")
	v.SetDefault("FETCH_MAX_BACKOFF", "30s")
	v.SetDefault("FETCH_BACKOFF_MULTIPLIER", 2.0)

	poll := v.GetDuration("POLL_INTERVAL")
	if poll <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive, got %q", v.GetString("POLL_INTERVAL"))
	}

	return &AgentConfig{
		ControllerURL:          strings.TrimRight(v.GetString("CONTROLLER_URL"), "/"),
		AgentAddr:              v.GetString("AGENT_ADDR"),
		PollInterval:           poll,
		RequestTimeout:         v.GetDuration("REQUEST_TIMEOUT"),
		Username:               v.GetString("READER_USER"),
		Password:               v.GetString("READER_PASSWORD"),
		FetchMaxRetries:        v.GetInt("FETCH_MAX_RETRIES"),
		FetchInitialBackoff:    v.GetDuration("FETCH_INITIAL_BACKOFF"),
		FetchMaxBackoff:        v.GetDuration("FETCH_MAX_BACKOFF"),
		FetchBackoffMultiplier: v.GetFloat64("FETCH_BACKOFF_MULTIPLIER"),
		Redis:                  loadRedis(v),
	}, nil
}

// loadRedis returns nil unless REDIS_HOST is set; services then run poll-only.
func loadRedis(v *viper.Viper) *RedisConfig {
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	host := v.GetString("REDIS_HOST")
	if host == "" {
		return nil
	}
	return &RedisConfig{
		Host:     host,
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}
}

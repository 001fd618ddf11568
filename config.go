package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries the listen address and ambient tuning knobs. Persistence,
// auth, and max-memory fields from the teacher's Config are dropped here:
// durability and cross-node concerns are explicit non-goals of this store,
// so there is nothing left for those fields to configure.
type Config struct {
	Host string
	Port int

	MaxClients int
	Timeout    time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TCPKeepAlive time.Duration

	LogLevel  string
	LogFormat string

	MetricsAddr string
}

func DefaultConfig() *Config {
	return &Config{
		Host:         "127.0.0.1",
		Port:         6379,
		MaxClients:   10000,
		Timeout:      30 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		TCPKeepAlive: 5 * time.Minute,
		LogLevel:     "info",
		LogFormat:    "text",
		MetricsAddr:  "",
	}
}

// LoadConfig layers defaults, an optional config file, and KEYVAULTD_*
// environment variables through viper, mirroring the teacher's
// defaults-then-file-then-env precedence.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	cfg := DefaultConfig()

	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("max_clients", cfg.MaxClients)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("read_timeout", cfg.ReadTimeout)
	v.SetDefault("write_timeout", cfg.WriteTimeout)
	v.SetDefault("tcp_keep_alive", cfg.TCPKeepAlive)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("metrics_addr", cfg.MetricsAddr)

	v.SetEnvPrefix("KEYVAULTD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.MaxClients = v.GetInt("max_clients")
	cfg.Timeout = v.GetDuration("timeout")
	cfg.ReadTimeout = v.GetDuration("read_timeout")
	cfg.WriteTimeout = v.GetDuration("write_timeout")
	cfg.TCPKeepAlive = v.GetDuration("tcp_keep_alive")
	cfg.LogLevel = v.GetString("log_level")
	cfg.LogFormat = v.GetString("log_format")
	cfg.MetricsAddr = v.GetString("metrics_addr")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MaxClients < 1 {
		return fmt.Errorf("max_clients must be positive")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Addr:%s MaxClients:%d LogLevel:%s LogFormat:%s MetricsAddr:%q}",
		c.Addr(), c.MaxClients, c.LogLevel, c.LogFormat, c.MetricsAddr)
}

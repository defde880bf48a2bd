package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log           LogConfig           `mapstructure:"log"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Mail          MailConfig          `mapstructure:"mail"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	// Addr serves /metrics when non-empty.
	Addr string `mapstructure:"addr"`
}

type NotificationsConfig struct {
	Email  bool         `mapstructure:"email"`
	SMS    bool         `mapstructure:"sms"`
	Events EventsConfig `mapstructure:"events"`
}

type EventsConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Broker  string      `mapstructure:"broker"`
	Topic   string      `mapstructure:"topic"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

// MailConfig enables the mail spool. Spool is "stdout", "stderr" or a file path; empty disables it.
type MailConfig struct {
	Spool string `mapstructure:"spool"`
	From  string `mapstructure:"from"`
	To    string `mapstructure:"to"`
}

const (
	BrokerMemory = "memory"
	BrokerRedis  = "redis"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("metrics.namespace", "dental_clinic")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("notifications.email", true)
	v.SetDefault("notifications.sms", true)
	v.SetDefault("notifications.events.enabled", false)
	v.SetDefault("notifications.events.broker", BrokerMemory)
	v.SetDefault("notifications.events.topic", "appointments")
	v.SetDefault("notifications.events.redis.url", "redis://localhost:6379/0")
	v.SetDefault("notifications.events.redis.max_retries", 3)
	v.SetDefault("notifications.events.redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("notifications.events.redis.pool_size", 10)
	v.SetDefault("notifications.events.redis.min_idle_conns", 0)
	v.SetDefault("mail.spool", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.to", "")
}

// LoadConfig reads configuration from path, or from config.yml in . or ./config when path
// is empty. A missing default file is not an error. DENTAL_* environment variables override
// file values, e.g. DENTAL_LOG_LEVEL.
func LoadConfig(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("dental")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch c.Notifications.Events.Broker {
	case BrokerMemory, BrokerRedis:
	default:
		return fmt.Errorf("unknown event broker %q", c.Notifications.Events.Broker)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

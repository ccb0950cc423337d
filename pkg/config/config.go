// Package config loads geofencer settings from defaults, an optional
// config.yaml and GEOFENCER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "GEOFENCER"

// Config holds all application configuration.
type Config struct {
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Decode  DecodeConfig  `mapstructure:"decode" yaml:"decode"`
	Events  EventsConfig  `mapstructure:"events" yaml:"events"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type StoreConfig struct {
	Driver   string         `mapstructure:"driver" yaml:"driver"`
	Path     string         `mapstructure:"path" yaml:"path"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	Valkey   ValkeyConfig   `mapstructure:"valkey" yaml:"valkey"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	DBName   string `mapstructure:"dbname" yaml:"dbname"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
}

// ConnString returns a postgres:// URL accepted by lib/pq. User info and
// query values are escaped, so passwords may hold any character.
func (p PostgresConfig) ConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.DBName,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	if p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	} else {
		u.User = url.User(p.User)
	}
	return u.String()
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	Key  string `mapstructure:"key" yaml:"key"`
}

type DecodeConfig struct {
	Strict bool `mapstructure:"strict" yaml:"strict"`
}

type EventsConfig struct {
	NATSURL string `mapstructure:"nats_url" yaml:"nats_url"`
	Subject string `mapstructure:"subject" yaml:"subject"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", "data/regions.gob")
	v.SetDefault("store.postgres.host", "localhost")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.user", "geofencer")
	v.SetDefault("store.postgres.password", "")
	v.SetDefault("store.postgres.dbname", "geofencer")
	v.SetDefault("store.postgres.sslmode", "disable")
	v.SetDefault("store.valkey.addr", "localhost:6379")
	v.SetDefault("store.valkey.key", "geofencer:regions")
	v.SetDefault("decode.strict", true)
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject", "geofencer.regions.changed")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Default returns the configuration with nothing but defaults applied
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always fit the struct
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration from file and environment variables. An empty
// path searches for config.yaml in . and ./configs, then falls back to
// config.yaml.example; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
			if _, statErr := os.Stat("config.yaml.example"); statErr == nil {
				v.SetConfigFile("config.yaml.example")
				if err := v.ReadInConfig(); err != nil {
					return nil, fmt.Errorf("read config.yaml.example: %w", err)
				}
			}
		}
	}

	// Environment variables: GEOFENCER_STORE_DRIVER → store.driver
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	switch c.Store.Driver {
	case "file":
		if c.Store.Path == "" {
			errs = append(errs, "store.path is required for the file driver")
		}
	case "postgres":
		if c.Store.Postgres.Host == "" {
			errs = append(errs, "store.postgres.host is required")
		}
		if c.Store.Postgres.Port <= 0 || c.Store.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("store.postgres.port must be 1-65535, got %d", c.Store.Postgres.Port))
		}
		if c.Store.Postgres.DBName == "" {
			errs = append(errs, "store.postgres.dbname is required")
		}
	case "valkey":
		if c.Store.Valkey.Addr == "" {
			errs = append(errs, "store.valkey.addr is required")
		}
		if c.Store.Valkey.Key == "" {
			errs = append(errs, "store.valkey.key is required")
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be file, postgres, valkey or memory, got %q", c.Store.Driver))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}

	if c.Events.NATSURL != "" && c.Events.Subject == "" {
		errs = append(errs, "events.subject is required when events.nats_url is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// YAML renders the configuration as YAML
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// WriteExample writes the default configuration to path
func WriteExample(path string) error {
	data, err := Default().YAML()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

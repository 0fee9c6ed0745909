// Package config loads process configuration from NCMR_* environment
// variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	dErrors "ncmr/pkg/domain-errors"
)

const envPrefix = "NCMR"

type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

// Config is the full process configuration.
type Config struct {
	Addr           string `mapstructure:"addr"`
	Mode           Mode   `mapstructure:"mode"`
	NumberRule     string `mapstructure:"number_rule"`
	AccessPassword string `mapstructure:"access_password"`
	Remote         Remote `mapstructure:"remote"`
	Store          Store  `mapstructure:"store"`
	Log            Log    `mapstructure:"log"`
}

// Remote configures the hosted record service.
type Remote struct {
	URL      string        `mapstructure:"url"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Store selects and configures the key-value store used in local mode.
type Store struct {
	Driver      string      `mapstructure:"driver"`
	SQLitePath  string      `mapstructure:"sqlite_path"`
	BadgerPath  string      `mapstructure:"badger_path"`
	PostgresDSN string      `mapstructure:"postgres_dsn"`
	Redis       RedisConfig `mapstructure:"redis"`
	S3          S3          `mapstructure:"s3"`
}

// RedisConfig holds connection settings for the Redis store.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type S3 struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	Prefix    string `mapstructure:"prefix"`
	PathStyle bool   `mapstructure:"path_style"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"addr":                       ":8080",
	"mode":                       string(ModeRemote),
	"number_rule":                "sequence",
	"access_password":            "",
	"remote.url":                 "",
	"remote.user":                "",
	"remote.password":            "",
	"remote.timeout":             "15s",
	"store.driver":               "sqlite",
	"store.sqlite_path":          "data/ncmr.db",
	"store.badger_path":          "data/badger",
	"store.postgres_dsn":         "",
	"store.redis.url":            "",
	"store.redis.key_prefix":     "ncmr:",
	"store.redis.pool_size":      10,
	"store.redis.min_idle_conns": 2,
	"store.redis.dial_timeout":   "5s",
	"store.redis.read_timeout":   "3s",
	"store.redis.write_timeout":  "3s",
	"store.s3.bucket":            "",
	"store.s3.region":            "us-east-1",
	"store.s3.endpoint":          "",
	"store.s3.prefix":            "",
	"store.s3.path_style":        false,
	"log.level":                  "info",
	"log.format":                 "text",
}

// Load reads configuration. Environment variables override the file; a
// nested key such as remote.url is read from NCMR_REMOTE_URL.
func Load(file string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeConfig, "read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfig, "decode config")
	}
	cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the process cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Mode {
	case ModeRemote:
		if c.Remote.URL == "" {
			errs = append(errs, errors.New("remote.url is required in remote mode"))
		} else if u, err := url.Parse(c.Remote.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("remote.url %q is not an absolute URL", c.Remote.URL))
		}
		if c.Remote.User == "" || c.Remote.Password == "" {
			errs = append(errs, errors.New("remote.user and remote.password are required in remote mode"))
		}
	case ModeLocal:
		if c.Store.Driver == "" {
			errs = append(errs, errors.New("store.driver is required in local mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	if len(errs) > 0 {
		return dErrors.Wrap(errors.Join(errs...), dErrors.CodeConfig, "invalid configuration")
	}
	return nil
}

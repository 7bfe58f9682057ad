// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads geoform settings from defaults, an optional YAML
// file, a .env file, the environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/geoform/geocode"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable: GEOFORM_SERVER_ADDR maps
// to server.addr.
const EnvPrefix = "GEOFORM"

// Config holds all geoform configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Geocoder GeocoderConfig `mapstructure:"geocoder"`
	History  HistoryConfig  `mapstructure:"history"`
	Trace    TraceConfig    `mapstructure:"trace"`
}

// ServerConfig configures the web server.
type ServerConfig struct {
	Addr        string        `mapstructure:"addr"`
	Mode        string        `mapstructure:"mode"` // debug, release, test
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	CORSOrigins []string      `mapstructure:"cors_origins"`
}

// GeocoderConfig configures the upstream geocoding client.
type GeocoderConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	Burst     int           `mapstructure:"burst"`
}

// HistoryConfig enables search recording when DBPath is set.
type HistoryConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// TraceConfig toggles outbound HTTP dumps.
type TraceConfig struct {
	HTTP     bool `mapstructure:"http"`
	HTTPBody bool `mapstructure:"http_body"`
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"addr":            "server.addr",
	"endpoint":        "geocoder.endpoint",
	"timeout":         "geocoder.timeout",
	"db":              "history.db_path",
	"trace-http":      "trace.http",
	"trace-http-body": "trace.http_body",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "localhost:8080")
	v.SetDefault("server.mode", gin.ReleaseMode)
	v.SetDefault("server.session_ttl", 30*time.Minute)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("geocoder.endpoint", geocode.DefaultEndpoint)
	v.SetDefault("geocoder.user_agent", "")
	v.SetDefault("geocoder.timeout", 30*time.Second)
	v.SetDefault("geocoder.rate_limit", 5)
	v.SetDefault("geocoder.burst", 5)
	v.SetDefault("history.db_path", "")
	v.SetDefault("trace.http", false)
	v.SetDefault("trace.http_body", false)
}

// Load reads the configuration. path names a YAML file; when empty,
// geoform.yaml is looked up in the working directory and its absence is
// not an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	// .env only seeds variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("geoform")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that every field is sane and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}

	switch c.Server.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		errs = append(errs, fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode))
	}

	if c.Server.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("server.session_ttl must be positive, got %s", c.Server.SessionTTL))
	}

	if u, err := url.Parse(c.Geocoder.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("geocoder.endpoint must be an http(s) URL, got %q", c.Geocoder.Endpoint))
	}

	if c.Geocoder.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("geocoder.timeout must be positive, got %s", c.Geocoder.Timeout))
	}

	if c.Geocoder.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("geocoder.rate_limit can't be negative, got %v", c.Geocoder.RateLimit))
	}

	if c.Geocoder.Burst < 0 {
		errs = append(errs, fmt.Errorf("geocoder.burst can't be negative, got %d", c.Geocoder.Burst))
	}

	return errors.Join(errs...)
}

// GeocoderOptions converts the configuration into client options.
func (c *Config) GeocoderOptions() *geocode.Options {
	return &geocode.Options{
		Endpoint:            c.Geocoder.Endpoint,
		UserAgent:           c.Geocoder.UserAgent,
		Timeout:             c.Geocoder.Timeout,
		RateLimit:           c.Geocoder.RateLimit,
		Burst:               c.Geocoder.Burst,
		EnableHTTPTrace:     c.Trace.HTTP,
		EnableHTTPBodyTrace: c.Trace.HTTPBody,
	}
}

// Copyright 2026 The sofcheck Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the settings of a run from flags, environment
// variables and an optional config file. Flags win over environment variables
// which win over the config file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sofcheck/sofcheck/smart"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of all environment variables, e.g. SOFCHECK_SERVER.
const EnvPrefix = "SOFCHECK"

// Defaults of the settings without flag default.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 4
	DefaultLogLevel    = "warn"
)

type Config struct {
	Server               string        `mapstructure:"server"`
	Insecure             bool          `mapstructure:"insecure"`
	CertificateAuthority string        `mapstructure:"certificate-authority"`
	User                 string        `mapstructure:"user"`
	Password             string        `mapstructure:"password"`
	Token                string        `mapstructure:"token"`
	IdToken              string        `mapstructure:"id-token"`
	ClientID             string        `mapstructure:"client-id"`
	Patient              string        `mapstructure:"patient"`
	Encounter            string        `mapstructure:"encounter"`
	Condition            string        `mapstructure:"condition"`
	LogLevel             string        `mapstructure:"log-level"`
	NoProgress           bool          `mapstructure:"no-progress"`
	Timeout              time.Duration `mapstructure:"timeout"`
	Concurrency          int           `mapstructure:"concurrency"`
}

// Load reads the config. flags are bound by their names, environment
// variables use EnvPrefix and underscores instead of dashes. configFile may be
// empty.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("log-level", DefaultLogLevel)

	// Keys without flag are only seen by Unmarshal if bound to the environment.
	for _, key := range []string{"server", "insecure", "certificate-authority", "user", "password", "token",
		"id-token", "client-id", "patient", "encounter", "condition", "log-level", "no-progress", "timeout",
		"concurrency"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings needed to talk to a server.
func (c *Config) Validate() error {
	if c.Server == "" {
		return errors.New("missing server URL, set it with --server or " + EnvPrefix + "_SERVER")
	}
	if _, err := c.ServerURL(); err != nil {
		return err
	}
	if c.Token != "" && c.User != "" {
		return errors.New("only one of --token and --user can be used")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// ServerURL parses the server base URL.
func (c *Config) ServerURL() (*url.URL, error) {
	serverURL, err := url.ParseRequestURI(c.Server)
	if err != nil {
		return nil, fmt.Errorf("could not parse server's base URL: %w", err)
	}
	if serverURL.Scheme != "http" && serverURL.Scheme != "https" {
		return nil, fmt.Errorf("server's base URL must use http or https, got %s", c.Server)
	}
	return serverURL, nil
}

// Level parses the log level.
func (c *Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Launch returns the SMART launch described by the config.
func (c *Config) Launch() smart.Launch {
	return smart.Launch{
		ServerURL: c.Server,
		ClientID:  c.ClientID,
		IdToken:   c.IdToken,
		Patient:   c.Patient,
		Encounter: c.Encounter,
		Condition: c.Condition,
	}
}

// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/mia-platform/hooklog/internal/logger"
	"github.com/mia-platform/hooklog/internal/notifier"
)

const (
	textFormat = "text"
	jsonFormat = "json"
)

var (
	// ErrParsing reports failures that occur while decoding the configuration file or the environment.
	ErrParsing = errors.New("error parsing")
	// ErrInvalid reports values that can be decoded but are not acceptable.
	ErrInvalid = errors.New("invalid configuration")
)

// Config is the hooklog configuration, read from a YAML file and overridden by environment variables.
type Config struct {
	Logger  LoggerConfig  `yaml:"logger"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// LoggerConfig configures the logger core.
type LoggerConfig struct {
	Prefix string   `yaml:"prefix" env:"HOOKLOG_PREFIX"`
	Format string   `yaml:"format" env:"HOOKLOG_LOG_FORMAT"`
	Levels []string `yaml:"levels" env:"HOOKLOG_LOG_LEVELS"`
	File   string   `yaml:"file" env:"HOOKLOG_LOG_FILE"`
}

// WebhookConfig configures the webhook notifier.
type WebhookConfig struct {
	URL             string                    `yaml:"url" env:"HOOKLOG_WEBHOOK_URL"`
	Username        string                    `yaml:"username" env:"HOOKLOG_WEBHOOK_USERNAME"`
	AvatarURLs      []string                  `yaml:"avatarUrls" env:"HOOKLOG_WEBHOOK_AVATAR_URLS"`
	Levels          []string                  `yaml:"levels" env:"HOOKLOG_WEBHOOK_LEVELS"`
	Labels          map[string]string         `yaml:"labels"`
	Colors          map[string]notifier.Color `yaml:"colors"`
	ShowLoadMessage bool                      `yaml:"showLoadMessage" env:"HOOKLOG_WEBHOOK_SHOW_LOAD_MESSAGE"`
	Interval        time.Duration             `yaml:"interval" env:"HOOKLOG_WEBHOOK_INTERVAL"`
}

// Load reads the configuration file at path, if any, and applies the environment overrides.
func Load(path string) (*Config, error) {
	config := new(Config)
	if path != "" {
		if err := config.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(config); err != nil {
		var parseErr env.AggregateError
		if errors.As(err, &parseErr) {
			err = parseErr.Errors[0]
		}
		return nil, fmt.Errorf("%w environment: %w", ErrParsing, err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) readFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config file %q: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	// an empty file is a valid configuration
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w %q: %w", ErrParsing, path, err)
	}

	return nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Logger.Format) {
	case "", textFormat, jsonFormat:
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Logger.Format)
	}

	if c.Webhook.Interval < 0 {
		return fmt.Errorf("%w: negative webhook interval %s", ErrInvalid, c.Webhook.Interval)
	}

	return nil
}

// LoggerOptions returns the options of the logger core.
func (c *Config) LoggerOptions() (logger.Options, error) {
	levels, err := parseLevels(c.Logger.Levels)
	if err != nil {
		return logger.Options{}, err
	}

	return logger.Options{
		Prefix:     c.Logger.Prefix,
		Levels:     levels,
		Level:      logger.INFO,
		TextFormat: strings.EqualFold(c.Logger.Format, textFormat),
	}, nil
}

// OpenLogFile opens the configured log file for appending, creating it and its directory when
// missing. It returns a nil file when no log file is configured.
func (c *Config) OpenLogFile() (*os.File, error) {
	if c.Logger.File == "" {
		return nil, nil
	}

	path := filepath.Clean(c.Logger.File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("log file %q: %w", path, err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("log file %q: %w", path, err)
	}
	return file, nil
}

// NotifierOptions returns the notifier options, starting from the defaults.
// An explicitly empty list of levels is kept, it disables the notifier.
func (c *Config) NotifierOptions() (notifier.Options, error) {
	opts := notifier.DefaultOptions()
	webhook := c.Webhook

	opts.Username = webhook.Username
	opts.ShowLoadMessage = webhook.ShowLoadMessage
	if webhook.AvatarURLs != nil {
		opts.AvatarURLs = webhook.AvatarURLs
	}
	if webhook.Interval > 0 {
		opts.Period = webhook.Interval
	}

	if webhook.Levels != nil {
		levels, err := parseLevels(webhook.Levels)
		if err != nil {
			return notifier.Options{}, err
		}
		opts.Levels = levels
	}

	for key, label := range webhook.Labels {
		level, err := logger.ParseLevel(key)
		if err != nil {
			return notifier.Options{}, fmt.Errorf("%w: label %w", ErrInvalid, err)
		}
		opts.Labels[level] = label
	}

	for key, color := range webhook.Colors {
		level, err := logger.ParseLevel(key)
		if err != nil {
			return notifier.Options{}, fmt.Errorf("%w: color %w", ErrInvalid, err)
		}
		opts.Colors[level] = color
	}

	return opts, nil
}

func parseLevels(values []string) ([]logger.Level, error) {
	if values == nil {
		return nil, nil
	}

	levels := make([]logger.Level, 0, len(values))
	for _, value := range values {
		level, err := logger.ParseLevel(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		levels = append(levels, level)
	}
	return levels, nil
}

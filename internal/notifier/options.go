// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package notifier

import (
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mia-platform/hooklog/internal/batch"
	"github.com/mia-platform/hooklog/internal/logger"
)

const (
	// MaxColor is the highest color a unit can carry.
	MaxColor = 0xFFFFFF

	defaultWarnLabel  = ":warning: Warning"
	defaultErrorLabel = ":x: Error"
	defaultWarnColor  = Color(16705372)
	defaultErrorColor = Color(15548997)
)

// DefaultAvatarURLs is the list avatars are picked from when none is configured.
var DefaultAvatarURLs = []string{
	"https://i.imgur.com/ukfOGMB.jpeg",
	"https://i.imgur.com/gXVlBbC.jpeg",
	"https://i.imgur.com/ZQERluU.jpeg",
	"https://i.imgur.com/BP0lfa3.jpeg",
}

// Options configures a Notifier.
type Options struct {
	// Username is the display name of the messages, derived from the logger prefix if empty.
	Username string
	// AvatarURLs is the list of avatars, one is picked at random for every request.
	AvatarURLs []string
	// Levels are the subscribed levels, only WARN and ERROR are accepted.
	Levels []logger.Level
	// Labels are the unit titles for each level.
	Labels map[logger.Level]string
	// Colors are the unit colors for each level.
	Colors map[logger.Level]Color
	// ShowLoadMessage logs a notice once the notifier is active.
	ShowLoadMessage bool
	// Period is the interval between two batch flushes.
	Period time.Duration
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		AvatarURLs: DefaultAvatarURLs,
		Levels:     []logger.Level{logger.ERROR},
		Labels: map[logger.Level]string{
			logger.WARN:  defaultWarnLabel,
			logger.ERROR: defaultErrorLabel,
		},
		Colors: map[logger.Level]Color{
			logger.WARN:  defaultWarnColor,
			logger.ERROR: defaultErrorColor,
		},
		Period: batch.DefaultPeriod,
	}
}

// models returns the batch models of the subscribable levels, missing labels use the defaults.
func (o Options) models() map[logger.Level]batch.Model {
	defaults := DefaultOptions()
	models := make(map[logger.Level]batch.Model, 2)
	for _, level := range []logger.Level{logger.WARN, logger.ERROR} {
		label := o.Labels[level]
		if label == "" {
			label = defaults.Labels[level]
		}

		color, ok := o.Colors[level]
		if !ok {
			color = defaults.Colors[level]
		}

		models[level] = batch.Model{Title: label, Color: int(color)}
	}
	return models
}

// subscribableLevels returns the configured WARN and ERROR levels without duplicates.
func (o Options) subscribableLevels() []logger.Level {
	levels := make([]logger.Level, 0, 2)
	for _, level := range []logger.Level{logger.WARN, logger.ERROR} {
		for _, configured := range o.Levels {
			if configured == level {
				levels = append(levels, level)
				break
			}
		}
	}
	return levels
}

// Color is a 24 bit RGB color, it can be decoded from a decimal or an hexadecimal string.
type Color int

// NewColor returns value as a Color, values out of range become black.
func NewColor(value int64) Color {
	if value < 0 || value > MaxColor {
		return 0
	}
	return Color(value)
}

// ParseColor parses a decimal number or an hexadecimal one written as #RRGGBB, 0xRRGGBB or RRGGBB.
// A string made only of decimal digits is read as a decimal number. Anything invalid is black.
func ParseColor(value string) Color {
	value = strings.TrimSpace(value)

	digits, base := value, 16
	switch {
	case strings.HasPrefix(value, "#"):
		digits = value[1:]
	case strings.HasPrefix(strings.ToLower(value), "0x"):
		digits = value[2:]
	case isDecimal(value):
		base = 10
	}

	parsed, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return 0
	}
	return NewColor(parsed)
}

func isDecimal(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c *Color) UnmarshalText(text []byte) error {
	*c = ParseColor(string(text))
	return nil
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	*c = ParseColor(node.Value)
	return nil
}

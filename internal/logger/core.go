// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

const (
	markerSeparator = "::"
)

// Observer receives the raw message parts of a log call: the message followed by its arguments.
type Observer func(parts []any)

// Host is the surface a logger core exposes to its plugins.
type Host interface {
	Logger

	// Subscribe registers observer for every log call emitted at level.
	Subscribe(level Level, observer Observer)

	// Emit invokes the observers subscribed to level with parts.
	Emit(level Level, parts []any)

	// RegisterMarker registers token and returns the marker string unique to this logger instance.
	// Log calls carrying the marker between their arguments are recognizable by HasMarker and the
	// marker itself never reaches the output.
	RegisterMarker(token string) string

	// HasMarker reports whether parts carry the marker built from token.
	HasMarker(token string, parts []any) bool

	// StripMarkers returns parts without any registered marker.
	StripMarkers(parts []any) []any

	// DisplayPrefix returns the configured display prefix.
	DisplayPrefix() string
}

// Plugin extends a logger core.
type Plugin interface {
	// Name returns the plugin name.
	Name() string

	// Apply attaches the plugin to host.
	Apply(ctx context.Context, host Host) error
}

// Make sure that Core is a Host.
var _ Host = &Core{}

// Core is the logger implementation: it writes through hclog and dispatches warn and error calls
// to the registered observers.
type Core struct {
	log hclog.Logger
	hub *hub
}

// hub holds the state shared by a core and all its named children.
type hub struct {
	instanceID string
	prefix     string
	levels     map[Level]struct{}

	lock      sync.RWMutex
	observers map[Level][]Observer
	markers   []string
	plugins   []Plugin
}

func newHub(opts Options) *hub {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	var levels map[Level]struct{}
	if len(opts.Levels) > 0 {
		levels = make(map[Level]struct{}, len(opts.Levels))
		for _, level := range opts.Levels {
			levels[level] = struct{}{}
		}
	}

	return &hub{
		instanceID: uuid.NewString(),
		prefix:     prefix,
		levels:     levels,
		observers:  make(map[Level][]Observer),
	}
}

func (h *hub) enabled(level Level) bool {
	if h.levels == nil {
		return true
	}
	_, ok := h.levels[level]
	return ok
}

func (h *hub) marker(token string) string {
	return h.instanceID + markerSeparator + token
}

// Use attaches plugin to the core.
func (c *Core) Use(ctx context.Context, plugin Plugin) error {
	c.hub.lock.Lock()
	c.hub.plugins = append(c.hub.plugins, plugin)
	c.hub.lock.Unlock()

	return plugin.Apply(ctx, c)
}

// Plugins returns the names of the attached plugins.
func (c *Core) Plugins() []string {
	c.hub.lock.RLock()
	defer c.hub.lock.RUnlock()

	names := make([]string, 0, len(c.hub.plugins))
	for _, plugin := range c.hub.plugins {
		names = append(names, plugin.Name())
	}
	return names
}

func (c *Core) WithName(name string) Logger {
	return &Core{
		log: c.log.ResetNamed(name),
		hub: c.hub,
	}
}

func (c *Core) SetLevel(level Level) {
	c.log.SetLevel(level.convertedLevel())
}

func (c *Core) Trace(msg string, args ...interface{}) {
	c.write(TRACE, msg, args)
}

func (c *Core) Debug(msg string, args ...interface{}) {
	c.write(DEBUG, msg, args)
}

func (c *Core) Info(msg string, args ...interface{}) {
	c.write(INFO, msg, args)
}

func (c *Core) Warn(msg string, args ...interface{}) {
	c.write(WARN, msg, args)
}

func (c *Core) Error(msg string, args ...interface{}) {
	c.write(ERROR, msg, args)
}

// write sends the call to the output and, for warn and error, to the observers.
// Observers are notified regardless of the output level: the output level only controls verbosity.
func (c *Core) write(level Level, msg string, args []any) {
	if !c.hub.enabled(level) {
		return
	}

	cleaned := c.StripMarkers(args)
	switch level {
	case TRACE:
		c.log.Trace(msg, cleaned...)
	case DEBUG:
		c.log.Debug(msg, cleaned...)
	case INFO:
		c.log.Info(msg, cleaned...)
	case WARN:
		c.log.Warn(msg, cleaned...)
	case ERROR:
		c.log.Error(msg, cleaned...)
	}

	if level == WARN || level == ERROR {
		parts := make([]any, 0, len(args)+1)
		parts = append(parts, msg)
		parts = append(parts, args...)
		c.Emit(level, parts)
	}
}

func (c *Core) Subscribe(level Level, observer Observer) {
	c.hub.lock.Lock()
	defer c.hub.lock.Unlock()
	c.hub.observers[level] = append(c.hub.observers[level], observer)
}

func (c *Core) Emit(level Level, parts []any) {
	c.hub.lock.RLock()
	observers := slices.Clone(c.hub.observers[level])
	c.hub.lock.RUnlock()

	for _, observer := range observers {
		observer(parts)
	}
}

func (c *Core) RegisterMarker(token string) string {
	c.hub.lock.Lock()
	defer c.hub.lock.Unlock()

	marker := c.hub.marker(token)
	if !slices.Contains(c.hub.markers, marker) {
		c.hub.markers = append(c.hub.markers, marker)
	}
	return marker
}

func (c *Core) HasMarker(token string, parts []any) bool {
	marker := c.hub.marker(token)
	for _, part := range parts {
		if value, ok := part.(string); ok && value == marker {
			return true
		}
	}
	return false
}

func (c *Core) StripMarkers(parts []any) []any {
	c.hub.lock.RLock()
	defer c.hub.lock.RUnlock()

	if len(c.hub.markers) == 0 {
		return parts
	}

	cleaned := make([]any, 0, len(parts))
	for _, part := range parts {
		if value, ok := part.(string); ok && slices.Contains(c.hub.markers, value) {
			continue
		}
		cleaned = append(cleaned, part)
	}
	return cleaned
}

func (c *Core) DisplayPrefix() string {
	return c.hub.prefix
}

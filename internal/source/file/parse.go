// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package file

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/mia-platform/hooklog/internal/logger"
	"github.com/mia-platform/hooklog/internal/source"
)

var (
	levelKeys   = []string{"@level", "level", "severity"}
	messageKeys = []string{"@message", "message", "msg"}
	timeKeys    = []string{"@timestamp", "timestamp", "time"}

	levelKeyword = regexp.MustCompile(`(?i)\b(trace|debug|info|warn|warning|error|fatal|panic)\b`)
)

// parseLine turns a single line into a record. Blank lines are skipped, the record time is
// only set when a JSON line carries it.
func parseLine(text string) (source.Data, bool) {
	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return source.Data{}, false
	}

	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		if data, ok := parseJSONLine(text); ok {
			return data, true
		}
	}

	return source.Data{
		Level:   keywordLevel(text),
		Message: text,
	}, true
}

// parseJSONLine decodes a structured line, moving its well known keys out of the fields.
func parseJSONLine(text string) (source.Data, bool) {
	fields := make(map[string]any)
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return source.Data{}, false
	}

	data := source.Data{
		Level:   logger.INFO,
		Message: text,
	}

	if key, value, ok := lookupString(fields, levelKeys); ok {
		data.Level = severityLevel(value)
		delete(fields, key)
	}
	if key, value, ok := lookupString(fields, messageKeys); ok {
		data.Message = value
		delete(fields, key)
	}
	if key, value, ok := lookupString(fields, timeKeys); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
			data.Time = parsed
			delete(fields, key)
		}
	}

	if len(fields) > 0 {
		data.Fields = fields
	}
	return data, true
}

// lookupString returns the first string value found under one of keys, together with its key.
func lookupString(fields map[string]any, keys []string) (string, string, bool) {
	for _, key := range keys {
		if value, ok := fields[key].(string); ok {
			return key, value, true
		}
	}
	return "", "", false
}

// keywordLevel returns the level named by the first severity keyword of text, INFO when none is found.
func keywordLevel(text string) logger.Level {
	return severityLevel(levelKeyword.FindString(text))
}

// severityLevel maps a severity name to a level: the names above ERROR collapse into it and
// unknown names default to INFO.
func severityLevel(name string) logger.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fatal", "panic", "critical", "crit", "alert", "emergency":
		return logger.ERROR
	default:
		return logger.LevelFromString(name)
	}
}

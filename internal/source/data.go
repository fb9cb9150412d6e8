// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package source

import (
	"maps"
	"slices"
	"time"

	"github.com/mia-platform/hooklog/internal/logger"
)

// Data is a single log record read by a source.
type Data struct {
	// Level is the severity of the record.
	Level logger.Level
	// Message is the human readable text of the record.
	Message string
	// Fields holds the structured attributes attached to the record.
	Fields map[string]any
	// Time is when the record was produced, zero when the source does not know it.
	Time time.Time
}

// Args returns the fields as key/value pairs sorted by key, ready to be passed to a Logger.
// The record time, when known, is appended as the "time" key unless a field already uses it.
func (d Data) Args() []any {
	args := make([]any, 0, len(d.Fields)*2+2)
	for _, key := range slices.Sorted(maps.Keys(d.Fields)) {
		args = append(args, key, d.Fields[key])
	}

	if _, found := d.Fields["time"]; !found && !d.Time.IsZero() {
		args = append(args, "time", d.Time.Format(time.RFC3339Nano))
	}
	return args
}

// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package batch

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Render turns the message parts of a log call into the text of its units.
//
// A message followed by string keyed pairs renders as "msg key=value ...", any other sequence of
// parts is joined with spaces. Maps, structs and slices are rendered as fenced JSON blocks.
func Render(parts []any) string {
	var text string
	if isKeyValue(parts) {
		text = renderKeyValue(parts)
	} else {
		rendered := make([]string, 0, len(parts))
		for _, part := range parts {
			rendered = append(rendered, renderPart(part))
		}
		text = strings.Join(rendered, " ")
	}

	return strings.TrimSpace(strings.ReplaceAll(text, "\n ", "\n"))
}

// Split cuts text into consecutive slices of at most size runes.
func Split(text string, size int) []string {
	runes := []rune(text)
	slices := make([]string, 0, (len(runes)+size-1)/size)
	for len(runes) > 0 {
		end := min(size, len(runes))
		slices = append(slices, string(runes[:end]))
		runes = runes[end:]
	}
	return slices
}

func isKeyValue(parts []any) bool {
	if len(parts) < 3 || len(parts)%2 == 0 {
		return false
	}
	if _, ok := parts[0].(string); !ok {
		return false
	}

	for i := 1; i < len(parts); i += 2 {
		if _, ok := parts[i].(string); !ok {
			return false
		}
	}
	return true
}

func renderKeyValue(parts []any) string {
	builder := new(strings.Builder)
	builder.WriteString(parts[0].(string))
	for i := 1; i < len(parts); i += 2 {
		builder.WriteString(" " + parts[i].(string) + "=" + renderPart(parts[i+1]))
	}
	return builder.String()
}

// renderPart never panics: a part whose String, Error or MarshalJSON method panics falls back to
// its Go syntax representation.
func renderPart(part any) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = fmt.Sprintf("%#v", part)
		}
	}()

	switch value := part.(type) {
	case nil:
		return "<nil>"
	case string:
		return value
	case error:
		return value.Error()
	case fmt.Stringer:
		return value.String()
	}

	kind := reflect.TypeOf(part).Kind()
	if kind == reflect.Pointer {
		kind = reflect.TypeOf(part).Elem().Kind()
	}

	switch kind {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		data, err := json.MarshalIndent(part, "", "\t")
		if err != nil {
			return fmt.Sprintf("%+v", part)
		}
		return "```json\n" + string(data) + "\n```"
	default:
		return fmt.Sprint(part)
	}
}
